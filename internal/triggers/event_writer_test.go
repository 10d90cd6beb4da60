package triggers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/djangocameroon/website-api/internal/domain"
	"github.com/djangocameroon/website-api/internal/jobs"
)

type mockEventRepo struct {
	mock.Mock
}

func (m *mockEventRepo) FindByID(ctx context.Context, id int64) (*domain.Event, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*domain.Event)
	return event, args.Error(1)
}

func (m *mockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) Update(ctx context.Context, event *domain.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) ListPublishedBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	args := m.Called(ctx, from, to)
	events, _ := args.Get(0).([]domain.Event)
	return events, args.Error(1)
}

func TestEventWriterCreate(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		published  bool
		expectTask bool
	}{
		{name: "published event announces", published: true, expectTask: true},
		{name: "draft stays silent", published: false, expectTask: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			event := &domain.Event{ID: 1, Title: "Django Meetup", Published: tc.published}

			events := &mockEventRepo{}
			events.On("Create", mock.Anything, event).Return(nil).Once()

			queue := &queueRecorder{}
			writer := NewEventWriter(events, queue, testLogger())

			if err := writer.Create(ctx, event); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			types := queue.types()
			if tc.expectTask {
				if len(types) != 1 || types[0] != jobs.TaskTypeNewEvent {
					t.Fatalf("expected a new-event task, got %v", types)
				}
			} else if len(types) != 0 {
				t.Fatalf("expected no tasks, got %v", types)
			}
		})
	}
}

func TestEventWriterUpdateDetectsUnpublish(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name          string
		prevPublished bool
		newPublished  bool
		expectTask    bool
	}{
		{name: "published to unpublished cancels", prevPublished: true, newPublished: false, expectTask: true},
		{name: "still published", prevPublished: true, newPublished: true, expectTask: false},
		{name: "draft edited", prevPublished: false, newPublished: false, expectTask: false},
		{name: "draft goes live", prevPublished: false, newPublished: true, expectTask: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			stored := &domain.Event{ID: 1, Title: "Django Meetup", Published: tc.prevPublished}
			incoming := &domain.Event{ID: 1, Title: "Django Meetup", Published: tc.newPublished}

			events := &mockEventRepo{}
			events.On("FindByID", mock.Anything, int64(1)).Return(stored, nil).Once()
			events.On("Update", mock.Anything, incoming).Return(nil).Once()

			queue := &queueRecorder{}
			writer := NewEventWriter(events, queue, testLogger())

			if err := writer.Update(ctx, incoming, "venue unavailable", ""); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			types := queue.types()
			if tc.expectTask {
				if len(types) != 1 || types[0] != jobs.TaskTypeEventCancelled {
					t.Fatalf("expected a cancellation task, got %v", types)
				}

				var payload jobs.EventCancelledPayload
				if err := json.Unmarshal(queue.tasks[0].Payload(), &payload); err != nil {
					t.Fatalf("decode payload: %v", err)
				}
				if payload.EventID != 1 || payload.CancellationReason != "venue unavailable" {
					t.Errorf("unexpected payload: %+v", payload)
				}
			} else if len(types) != 0 {
				t.Fatalf("expected no tasks, got %v", types)
			}
		})
	}
}
