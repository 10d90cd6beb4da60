package logger

import (
	"context"
	"log/slog"
	"strings"
)

var maskedKeys = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"authorization",
	"otp",
	"otp_code",
}

// Keys carrying a recipient address keep the last characters so delivery
// problems stay debuggable.
var phoneKeys = []string{
	"to",
	"phone_number",
	"to_number",
	"mobile",
}

// MaskingHandler wraps a slog.Handler and redacts credentials and recipient
// identifiers before delegating.
type MaskingHandler struct {
	next slog.Handler
}

// NewMaskingHandler creates a handler that masks sensitive fields before passing records downstream.
func NewMaskingHandler(next slog.Handler) *MaskingHandler {
	return &MaskingHandler{next: next}
}

// Enabled reports whether the handler handles records at the given level.
func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// WithAttrs returns a new handler with additional attributes.
func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MaskingHandler{next: h.next.WithAttrs(maskAttrs(attrs))}
}

// WithGroup returns a new handler with an appended group name.
func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name)}
}

// Handle redacts sensitive attributes and delegates to the wrapped handler.
func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(maskAttr(attr))
		return true
	})

	return h.next.Handle(ctx, masked)
}

func maskAttrs(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		out[i] = maskAttr(attr)
	}
	return out
}

func maskAttr(attr slog.Attr) slog.Attr {
	switch {
	case matchesKey(attr.Key, maskedKeys):
		attr.Value = slog.StringValue("***")
	case matchesKey(attr.Key, phoneKeys):
		attr.Value = slog.StringValue(maskRecipient(attr.Value.String()))
	}
	return attr
}

func matchesKey(key string, keys []string) bool {
	for _, k := range keys {
		if strings.EqualFold(key, k) {
			return true
		}
	}
	return false
}

// maskRecipient hides all but the last three characters of an address or
// phone number.
func maskRecipient(value string) string {
	const visible = 3
	if len(value) <= visible {
		return "***"
	}
	return "***" + value[len(value)-visible:]
}
