package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/djangocameroon/website-api/internal/domain"
)

func TestEventRemindersWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	users := &mockUserRepo{}
	events := &mockEventRepo{}
	regs := &mockRegistrationRepo{}

	events.On("ListPublishedBetween", mock.Anything, now.Add(23*time.Hour), now.Add(25*time.Hour)).
		Return([]domain.Event(nil), nil).Once()

	h := NewEventRemindersHandler(users, events, regs, resolverWith(domain.DefaultSettings()), testNotifier(newFakeMailer(), newFakeSMS()), testLogger())
	h.now = func() time.Time { return now }

	requireNoError(t, h.Run(ctx, 24, false))

	events.AssertExpectations(t)
	regs.AssertNotCalled(t, "ListPendingReminder", mock.Anything, mock.Anything)
}

func TestEventRemindersSendsAndFlagsPending(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	inWindow := domain.Event{ID: 1, Title: "Django Meetup", Slug: "django-meetup", StartsAt: now.Add(24 * time.Hour), Published: true}
	noPending := domain.Event{ID: 2, Title: "PyLadies Workshop", Slug: "pyladies", StartsAt: now.Add(24*time.Hour + 30*time.Minute), Published: true}

	recipients := []domain.User{
		{ID: 10, Email: "a@example.com", Username: "amina", PhoneNumber: "+237600000001"},
		{ID: 11, Email: "b@example.com", Username: "bob"},
	}

	users := &mockUserRepo{}
	events := &mockEventRepo{}
	regs := &mockRegistrationRepo{}

	events.On("ListPublishedBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event{inWindow, noPending}, nil).Once()

	regs.On("ListPendingReminder", mock.Anything, int64(1)).
		Return([]domain.EventRegistration{
			{ID: 100, EventID: 1, UserID: 10},
			{ID: 101, EventID: 1, UserID: 11},
		}, nil).Once()
	regs.On("ListPendingReminder", mock.Anything, int64(2)).
		Return([]domain.EventRegistration(nil), nil).Once()

	users.On("ListByIDs", mock.Anything, []int64{10, 11}).Return(recipients, nil).Once()

	// every pending registration is flagged in one statement, even when an
	// individual delivery inside the batch failed
	regs.On("MarkReminderSent", mock.Anything, []int64{100, 101}).Return(nil).Once()

	mail := newFakeMailer()
	smsSender := newFakeSMS()

	h := NewEventRemindersHandler(users, events, regs, resolverWith(domain.DefaultSettings()), testNotifier(mail, smsSender), testLogger())
	h.now = func() time.Time { return now }

	requireNoError(t, h.Run(ctx, 24, false))

	users.AssertExpectations(t)
	events.AssertExpectations(t)
	regs.AssertExpectations(t)

	if mail.total() != 2 {
		t.Errorf("expected 2 reminder emails, got %d", mail.total())
	}
	// only the user with a phone number gets the SMS
	if smsSender.total() != 1 {
		t.Errorf("expected 1 reminder SMS, got %d", smsSender.total())
	}
}

func TestEventRemindersSkipsWhenChannelsDisabled(t *testing.T) {
	ctx := context.Background()

	settings := domain.DefaultSettings()
	settings.SendEventReminderEmail = false
	settings.SendEventReminderSMS = false

	users := &mockUserRepo{}
	events := &mockEventRepo{}
	regs := &mockRegistrationRepo{}

	h := NewEventRemindersHandler(users, events, regs, resolverWith(settings), testNotifier(newFakeMailer(), newFakeSMS()), testLogger())

	requireNoError(t, h.Run(ctx, 24, false))

	events.AssertNotCalled(t, "ListPublishedBetween", mock.Anything, mock.Anything, mock.Anything)
}

func TestEventRemindersContinuesPastFailingEvent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	broken := domain.Event{ID: 1, Title: "Django Meetup", Slug: "django-meetup", StartsAt: now.Add(24 * time.Hour), Published: true}
	healthy := domain.Event{ID: 2, Title: "PyLadies Workshop", Slug: "pyladies", StartsAt: now.Add(24*time.Hour + 30*time.Minute), Published: true}
	recipient := domain.User{ID: 10, Email: "a@example.com", Username: "amina"}

	users := &mockUserRepo{}
	events := &mockEventRepo{}
	regs := &mockRegistrationRepo{}

	events.On("ListPublishedBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event{broken, healthy}, nil).Once()

	regs.On("ListPendingReminder", mock.Anything, int64(1)).
		Return([]domain.EventRegistration(nil), errors.New("connection reset")).Once()
	regs.On("ListPendingReminder", mock.Anything, int64(2)).
		Return([]domain.EventRegistration{{ID: 200, EventID: 2, UserID: 10}}, nil).Once()

	users.On("ListByIDs", mock.Anything, []int64{10}).Return([]domain.User{recipient}, nil).Once()
	regs.On("MarkReminderSent", mock.Anything, []int64{200}).Return(nil).Once()

	mail := newFakeMailer()

	h := NewEventRemindersHandler(users, events, regs, resolverWith(domain.DefaultSettings()), testNotifier(mail, newFakeSMS()), testLogger())
	h.now = func() time.Time { return now }

	requireNoError(t, h.Run(ctx, 24, false))

	regs.AssertExpectations(t)
	if mail.total() != 1 {
		t.Errorf("second event must still be reminded after the first fails, got %d emails", mail.total())
	}
}

func TestEventRemindersForceSMSOverridesPreference(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	settings := domain.DefaultSettings()
	settings.SendEventReminderEmail = false
	settings.SendEventReminderSMS = false

	event := domain.Event{ID: 1, Title: "Django Meetup", Slug: "django-meetup", StartsAt: now.Add(24 * time.Hour), Published: true}
	recipient := domain.User{ID: 10, Email: "a@example.com", Username: "amina", PhoneNumber: "+237600000001"}

	users := &mockUserRepo{}
	events := &mockEventRepo{}
	regs := &mockRegistrationRepo{}

	events.On("ListPublishedBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event{event}, nil).Once()
	regs.On("ListPendingReminder", mock.Anything, int64(1)).
		Return([]domain.EventRegistration{{ID: 100, EventID: 1, UserID: 10}}, nil).Once()
	users.On("ListByIDs", mock.Anything, []int64{10}).Return([]domain.User{recipient}, nil).Once()
	regs.On("MarkReminderSent", mock.Anything, []int64{100}).Return(nil).Once()

	mail := newFakeMailer()
	smsSender := newFakeSMS()

	h := NewEventRemindersHandler(users, events, regs, resolverWith(settings), testNotifier(mail, smsSender), testLogger())
	h.now = func() time.Time { return now }

	requireNoError(t, h.Run(ctx, 24, true))

	if mail.total() != 0 {
		t.Errorf("email disabled, expected 0 emails, got %d", mail.total())
	}
	if smsSender.total() != 1 {
		t.Errorf("force_sms should deliver SMS, got %d", smsSender.total())
	}
}
