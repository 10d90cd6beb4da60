package handlers

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/djangocameroon/website-api/internal/domain"
	"github.com/djangocameroon/website-api/internal/notify"
	"github.com/djangocameroon/website-api/internal/preferences"
	"github.com/djangocameroon/website-api/internal/sms"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSettingsStore struct {
	settings domain.NotificationSettings
}

func (s *stubSettingsStore) Get(ctx context.Context) (*domain.NotificationSettings, error) {
	copy := s.settings
	return &copy, nil
}

func resolverWith(settings domain.NotificationSettings) *preferences.Resolver {
	return preferences.NewResolver(&stubSettingsStore{settings: settings}, testLogger())
}

// fakeMailer counts email deliveries per recipient; it never fails.
type fakeMailer struct {
	mu    sync.Mutex
	sends map[string]int
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sends: make(map[string]int)}
}

func (f *fakeMailer) record(email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends[email]++
	return nil
}

func (f *fakeMailer) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.sends {
		n += c
	}
	return n
}

func (f *fakeMailer) SendWelcome(ctx context.Context, user *domain.User) error {
	return f.record(user.Email)
}

func (f *fakeMailer) SendSignupConfirmation(ctx context.Context, user *domain.User) error {
	return f.record(user.Email)
}

func (f *fakeMailer) SendEventNotification(ctx context.Context, user *domain.User, event *domain.Event) error {
	return f.record(user.Email)
}

func (f *fakeMailer) SendEventCancelled(ctx context.Context, user *domain.User, event *domain.Event, reason, rescheduleInfo string) error {
	return f.record(user.Email)
}

func (f *fakeMailer) SendEventReminder(ctx context.Context, user *domain.User, event *domain.Event) error {
	return f.record(user.Email)
}

func (f *fakeMailer) SendUpcomingEvents(ctx context.Context, user *domain.User, events []domain.Event) error {
	return f.record(user.Email)
}

func (f *fakeMailer) SendRegistrationConfirmation(ctx context.Context, user *domain.User, event *domain.Event, reg *domain.EventRegistration) error {
	return f.record(user.Email)
}

func (f *fakeMailer) SendNewLocationLoginAlert(ctx context.Context, user *domain.User, info domain.LoginInfo) error {
	return f.record(user.Email)
}

// fakeSMS counts SMS deliveries per number; every send succeeds.
type fakeSMS struct {
	mu    sync.Mutex
	sends map[string]int
}

func newFakeSMS() *fakeSMS {
	return &fakeSMS{sends: make(map[string]int)}
}

func (f *fakeSMS) record(toNumber string) sms.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends[toNumber]++
	return sms.Result{Success: true}
}

func (f *fakeSMS) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.sends {
		n += c
	}
	return n
}

func (f *fakeSMS) SendWelcome(ctx context.Context, toNumber, userName string) sms.Result {
	return f.record(toNumber)
}

func (f *fakeSMS) SendSignupConfirmation(ctx context.Context, toNumber, userName string) sms.Result {
	return f.record(toNumber)
}

func (f *fakeSMS) SendEventNotification(ctx context.Context, toNumber, title, date, location, eventURL string) sms.Result {
	return f.record(toNumber)
}

func (f *fakeSMS) SendEventCancelled(ctx context.Context, toNumber, title, date, eventURL string) sms.Result {
	return f.record(toNumber)
}

func (f *fakeSMS) SendEventReminder(ctx context.Context, toNumber, title, date string, hoursUntil int, eventURL string) sms.Result {
	return f.record(toNumber)
}

func (f *fakeSMS) SendRegistrationConfirmation(ctx context.Context, toNumber, title, code, eventURL string) sms.Result {
	return f.record(toNumber)
}

func (f *fakeSMS) SendNewLocationLogin(ctx context.Context, toNumber, location, loginTime string) sms.Result {
	return f.record(toNumber)
}

func (f *fakeSMS) SendUpcomingDigest(ctx context.Context, toNumber string, items []sms.DigestItem, siteURL string) sms.Result {
	return f.record(toNumber)
}

func testNotifier(mail *fakeMailer, smsSender *fakeSMS) *notify.Service {
	return notify.NewService(mail, smsSender, "https://djangocameroon.site", testLogger())
}

// mockUserRepo implements repository.UserRepository.
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) ListActive(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) ListRegisteredForEvent(ctx context.Context, eventID int64) ([]domain.User, error) {
	args := m.Called(ctx, eventID)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

// mockEventRepo implements repository.EventRepository.
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

// mockRegistrationRepo implements repository.RegistrationRepository.
type mockRegistrationRepo struct {
	mock.Mock
}

func (m *mockRegistrationRepo) Create(ctx context.Context, reg *domain.EventRegistration) error {
	return m.Called(ctx, reg).Error(0)
}

func (m *mockRegistrationRepo) FindByID(ctx context.Context, id int64) (*domain.EventRegistration, error) {
	args := m.Called(ctx, id)
	reg, _ := args.Get(0).(*domain.EventRegistration)
	return reg, args.Error(1)
}

func (m *mockRegistrationRepo) ListPendingReminder(ctx context.Context, eventID int64) ([]domain.EventRegistration, error) {
	args := m.Called(ctx, eventID)
	regs, _ := args.Get(0).([]domain.EventRegistration)
	return regs, args.Error(1)
}

func (m *mockRegistrationRepo) MarkReminderSent(ctx context.Context, ids []int64) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *mockRegistrationRepo) MarkConfirmationSent(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRegistrationRepo) MarkAttended(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockRegistrationRepo) Cancel(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRegistrationRepo) RefreshStats(ctx context.Context, eventID int64) (*domain.AttendanceStats, error) {
	args := m.Called(ctx, eventID)
	stats, _ := args.Get(0).(*domain.AttendanceStats)
	return stats, args.Error(1)
}

// mockLoginRepo implements repository.LoginRepository.
type mockLoginRepo struct {
	mock.Mock
}

func (m *mockLoginRepo) Create(ctx context.Context, record *domain.LoginRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockLoginRepo) FindByID(ctx context.Context, id int64) (*domain.LoginRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*domain.LoginRecord)
	return record, args.Error(1)
}

func (m *mockLoginRepo) HasSuccessfulLoginFromIP(ctx context.Context, userID int64, ip string) (bool, error) {
	args := m.Called(ctx, userID, ip)
	return args.Bool(0), args.Error(1)
}

func (m *mockLoginRepo) HasSuccessfulLoginFromPlace(ctx context.Context, userID int64, country, city string) (bool, error) {
	args := m.Called(ctx, userID, country, city)
	return args.Bool(0), args.Error(1)
}

func (m *mockLoginRepo) MarkNotificationSent(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
