package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/djangocameroon/website-api/pkg/config"
)

type Scheduler interface {
	RegisterTasks() error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	cfg            config.NotifierConfig
	log            *slog.Logger
}

func NewScheduler(redisOpt asynq.RedisConnOpt, cfg config.NotifierConfig, log *slog.Logger) Scheduler {
	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		cfg:            cfg,
		log:            log,
	}
}

// RegisterTasks wires the periodic reminder and digest entries. ForceSMS is
// left false for scheduled runs; the preference record decides the channel.
func (s *scheduler) RegisterTasks() error {
	reminders, err := NewEventRemindersTask(s.cfg.ReminderHours, false)
	if err != nil {
		return err
	}

	if _, err := s.asynqScheduler.Register(s.cfg.ReminderCron, reminders); err != nil {
		return err
	}

	digest, err := NewUpcomingDigestTask(s.cfg.DigestDays, false)
	if err != nil {
		return err
	}

	if _, err := s.asynqScheduler.Register(s.cfg.DigestCron, digest); err != nil {
		return err
	}

	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: registered notification tasks",
			slog.String("reminder_cron", s.cfg.ReminderCron),
			slog.String("digest_cron", s.cfg.DigestCron),
		)
	}

	return nil
}

func (s *scheduler) Run() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: starting")
	}

	go func() {
		if err := s.asynqScheduler.Run(); err != nil && s.log != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", slog.Any("error", err))
		}
	}()
}

func (s *scheduler) Shutdown() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: shutting down")
	}

	s.asynqScheduler.Shutdown()
}
