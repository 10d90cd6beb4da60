package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShutdownRunsAllHooks(t *testing.T) {
	var ran atomic.Int32

	s := NewShutdown(testLogger())
	for i := 0; i < 3; i++ {
		s.Register("hook", func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	if err := s.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ran.Load() != 3 {
		t.Fatalf("expected 3 hooks to run, got %d", ran.Load())
	}
}

func TestShutdownCollectsFailures(t *testing.T) {
	var ran atomic.Int32
	failure := errors.New("close failed")

	s := NewShutdown(testLogger())
	s.Register("bad", func(context.Context) error { return failure })
	s.Register("good", func(context.Context) error {
		ran.Add(1)
		return nil
	})

	err := s.Execute(context.Background())
	if !errors.Is(err, failure) {
		t.Fatalf("expected joined failure, got %v", err)
	}
	if ran.Load() != 1 {
		t.Fatal("a failing hook must not stop the others")
	}
}

func TestShutdownIgnoresNilHooks(t *testing.T) {
	s := NewShutdown(testLogger())
	s.Register("nil", nil)

	if err := s.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}
