package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/djangocameroon/website-api/internal/domain"
	"github.com/djangocameroon/website-api/internal/repository"
)

func TestRegistrationConfirmationSendsOnce(t *testing.T) {
	ctx := context.Background()

	reg := &domain.EventRegistration{ID: 100, EventID: 1, UserID: 10, RegistrationCode: "REG-ABCD1234", Status: domain.StatusRegistered}
	user := &domain.User{ID: 10, Email: "a@example.com", Username: "amina", PhoneNumber: "+237600000001"}
	event := &domain.Event{ID: 1, Title: "Django Meetup", Slug: "django-meetup", StartsAt: time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC)}

	users := &mockUserRepo{}
	events := &mockEventRepo{}
	regs := &mockRegistrationRepo{}

	regs.On("FindByID", mock.Anything, int64(100)).Return(reg, nil).Once()
	users.On("FindByID", mock.Anything, int64(10)).Return(user, nil).Once()
	events.On("FindByID", mock.Anything, int64(1)).Return(event, nil).Once()
	regs.On("MarkConfirmationSent", mock.Anything, int64(100)).Return(true, nil).Once()

	mail := newFakeMailer()
	smsSender := newFakeSMS()

	h := NewRegistrationConfirmationHandler(users, events, regs, resolverWith(domain.DefaultSettings()), testNotifier(mail, smsSender), testLogger())

	requireNoError(t, h.Run(ctx, 100))

	regs.AssertExpectations(t)
	if mail.total() != 1 {
		t.Errorf("expected 1 confirmation email, got %d", mail.total())
	}
	if smsSender.total() != 1 {
		t.Errorf("expected 1 confirmation SMS, got %d", smsSender.total())
	}
}

func TestRegistrationConfirmationAlreadySent(t *testing.T) {
	ctx := context.Background()

	reg := &domain.EventRegistration{ID: 100, EventID: 1, UserID: 10, ConfirmationSent: true}

	users := &mockUserRepo{}
	events := &mockEventRepo{}
	regs := &mockRegistrationRepo{}

	regs.On("FindByID", mock.Anything, int64(100)).Return(reg, nil).Once()

	mail := newFakeMailer()
	smsSender := newFakeSMS()

	h := NewRegistrationConfirmationHandler(users, events, regs, resolverWith(domain.DefaultSettings()), testNotifier(mail, smsSender), testLogger())

	requireNoError(t, h.Run(ctx, 100))

	regs.AssertNotCalled(t, "MarkConfirmationSent", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	if mail.total() != 0 || smsSender.total() != 0 {
		t.Error("a flagged registration must not be confirmed again")
	}
}

func TestRegistrationConfirmationMissingRecord(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{}
	events := &mockEventRepo{}
	regs := &mockRegistrationRepo{}

	regs.On("FindByID", mock.Anything, int64(404)).
		Return((*domain.EventRegistration)(nil), repository.ErrNotFound).Once()

	h := NewRegistrationConfirmationHandler(users, events, regs, resolverWith(domain.DefaultSettings()), testNotifier(newFakeMailer(), newFakeSMS()), testLogger())

	// a deleted row between enqueue and execution is a silent no-op
	requireNoError(t, h.Run(ctx, 404))
}
