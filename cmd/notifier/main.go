package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/djangocameroon/website-api/internal/database"
	apperrors "github.com/djangocameroon/website-api/internal/errors"
	"github.com/djangocameroon/website-api/internal/health"
	"github.com/djangocameroon/website-api/internal/jobs"
	"github.com/djangocameroon/website-api/internal/jobs/handlers"
	"github.com/djangocameroon/website-api/internal/lifecycle"
	"github.com/djangocameroon/website-api/internal/mailer"
	"github.com/djangocameroon/website-api/internal/notify"
	"github.com/djangocameroon/website-api/internal/preferences"
	"github.com/djangocameroon/website-api/internal/repository"
	"github.com/djangocameroon/website-api/internal/sms"
	"github.com/djangocameroon/website-api/internal/templates"
	"github.com/djangocameroon/website-api/pkg/config"
	"github.com/djangocameroon/website-api/pkg/graceful"
	"github.com/djangocameroon/website-api/pkg/logger"
	appredis "github.com/djangocameroon/website-api/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(*cfg)
	log.Info("starting notification service",
		slog.String("env", cfg.AppEnv),
		slog.String("ops_addr", cfg.Ops.Addr),
	)

	if cfg.Sentry.Enabled {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.SampleRate,
		})
		if err != nil {
			log.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", slog.Any("error", cerr))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping database", slog.Any("error", err))
		os.Exit(1)
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, cfg.Notifier.MigrationsDir); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := appredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}

	users := repository.NewUserRepository(db, log)
	events := repository.NewEventRepository(db, log)
	regs := repository.NewRegistrationRepository(db, log)
	logins := repository.NewLoginRepository(db, log)
	settings := repository.NewSettingsRepository(db, log)
	otps := repository.NewOTPRepository(db, log)

	if err := settings.EnsureDefault(ctx); err != nil {
		log.Error("failed to seed notification settings", slog.Any("error", err))
		os.Exit(1)
	}

	renderer, err := templates.NewRenderer(cfg.Notifier.TemplateDir)
	if err != nil {
		log.Error("failed to parse notification templates", slog.Any("error", err))
		os.Exit(1)
	}
	go func() {
		if err := renderer.Watch(ctx, log); err != nil {
			log.Warn("template hot reload disabled", slog.Any("error", err))
		}
	}()

	mail := mailer.NewMailer(mailer.NewSMTPTransport(cfg.SMTP), renderer, otps, cfg.Notifier.SiteURL, log)
	smsSender := sms.NewSender(cfg.SMS, renderer, log)
	notifier := notify.NewService(mail, smsSender, cfg.Notifier.SiteURL, log)
	prefs := preferences.NewResolver(settings, log)

	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	worker := jobs.NewWorker(redisOpt, cfg.Notifier.Concurrency, errHandler, log)
	worker.RegisterHandler(jobs.TaskTypeWelcome, handlers.NewWelcomeHandler(users, prefs, notifier, log))
	worker.RegisterHandler(jobs.TaskTypeNewEvent, handlers.NewNewEventHandler(users, events, prefs, notifier, log))
	worker.RegisterHandler(jobs.TaskTypeEventCancelled, handlers.NewEventCancelledHandler(users, events, prefs, notifier, log))
	worker.RegisterHandler(jobs.TaskTypeRegistrationConfirmation, handlers.NewRegistrationConfirmationHandler(users, events, regs, prefs, notifier, log))
	worker.RegisterHandler(jobs.TaskTypeLoginAlert, handlers.NewLoginAlertHandler(users, logins, prefs, notifier, log))
	worker.RegisterHandler(jobs.TaskTypeOTPEmail, handlers.NewOTPEmailHandler(users, mail, log))
	worker.RegisterHandler(jobs.TaskTypeEventReminders, handlers.NewEventRemindersHandler(users, events, regs, prefs, notifier, log))
	worker.RegisterHandler(jobs.TaskTypeUpcomingDigest, handlers.NewUpcomingDigestHandler(users, events, prefs, notifier, log))

	scheduler := jobs.NewScheduler(redisOpt, cfg.Notifier, log)
	if err := scheduler.RegisterTasks(); err != nil {
		log.Error("failed to register scheduled tasks", slog.Any("error", err))
		os.Exit(1)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(redisClient))

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})
	shutdown.Register("scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})
	shutdown.Register("redis", func(context.Context) error {
		return redisClient.Close()
	})

	opsServer := graceful.NewServer(log, &http.Server{
		Addr:    cfg.Ops.Addr,
		Handler: logger.Middleware(opsMux(checker)),
	}, cfg.Ops.ShutdownTimeout)

	go func() {
		if err := worker.Run(); err != nil {
			log.Error("worker stopped", slog.Any("error", err))
			stop()
		}
	}()
	scheduler.Run()

	if err := opsServer.ListenAndServe(ctx); err != nil {
		log.Error("ops server failed", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Ops.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("notification service stopped")
}

func opsMux(checker *health.Checker) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, v := range results {
			if v != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
