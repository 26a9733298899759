package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planwise/planner-bot/internal/bot"
	"github.com/planwise/planner-bot/internal/digest"
	"github.com/planwise/planner-bot/internal/domain"
	apperrors "github.com/planwise/planner-bot/internal/errors"
	"github.com/planwise/planner-bot/internal/gate"
	"github.com/planwise/planner-bot/internal/health"
	"github.com/planwise/planner-bot/internal/i18n"
	"github.com/planwise/planner-bot/internal/idempotency"
	"github.com/planwise/planner-bot/internal/jobs"
	jobhandlers "github.com/planwise/planner-bot/internal/jobs/handlers"
	"github.com/planwise/planner-bot/internal/lifecycle"
	"github.com/planwise/planner-bot/internal/middleware"
	"github.com/planwise/planner-bot/internal/notify"
	"github.com/planwise/planner-bot/internal/ratelimit"
	"github.com/planwise/planner-bot/internal/reminder"
	"github.com/planwise/planner-bot/internal/store"
	"github.com/planwise/planner-bot/internal/webhook"
	"github.com/planwise/planner-bot/pkg/config"
	"github.com/planwise/planner-bot/pkg/graceful"
	"github.com/planwise/planner-bot/pkg/logger"
	"github.com/planwise/planner-bot/pkg/metrics"
	appredis "github.com/planwise/planner-bot/pkg/redis"

	_ "github.com/lib/pq"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		// logger is not configured yet
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.FilePath, cfg.Sentry.Enabled)
	config.Watch(v, log)

	log.Info("starting planner bot",
		"env", cfg.AppEnv,
		"storage", cfg.Storage.Driver,
		"port", cfg.Server.Port,
	)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			log.Error("failed to initialize sentry", "error", err)
			return
		}
		defer sentry.Flush(2 * time.Second)
	}

	var snapshot store.Snapshot
	var snapshotCheck health.Checkable

	switch cfg.Storage.Driver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Storage.DB.DSN())
		if err != nil {
			log.Error("failed to open database", "error", err)
			return
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping database", "error", err)
			return
		}

		pg := store.NewPostgresSnapshot(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("failed to ensure database schema", "error", err)
			return
		}
		snapshot = pg
		snapshotCheck = pg
	default:
		fs := store.NewFileSnapshot(cfg.Storage.File.Path)
		snapshot = fs
		snapshotCheck = fs
	}

	users := store.New(ctx, snapshot, log)
	metrics.SetKnownUsers(users.Len())

	translations, err := i18n.Load(domain.DefaultLocale)
	if err != nil {
		log.Error("failed to load translations", "error", err)
		return
	}

	notificationGate := gate.New(log, cfg.IsDevelopment())

	var redisClient *appredis.Client
	var idemManager idempotency.Manager
	var limiter ratelimit.Limiter

	if cfg.Redis.Enabled {
		redisClient, err = appredis.New(ctx, appredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			return
		}
		defer redisClient.Close()

		idemManager = idempotency.NewManager(idempotency.NewRedisStore(redisClient.Client, log), log)
		limiter = ratelimit.NewRedisLimiter(redisClient.Client, log)
	} else {
		limiter = ratelimit.NewMemoryLimiter(log)
	}

	rules := ratelimit.NewRules(cfg.RateLimit)
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, rules, log)

	// Reminders and digests run through the task queue and need Redis even
	// when the optional extras above are disabled.
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	jobsManager := jobs.NewManager(redisOpt, log)
	reminderScheduler := reminder.NewScheduler(jobsManager, notificationGate, log)

	b, err := bot.New(*cfg, log, users, translations, idemManager, rateLimitMw)
	if err != nil {
		log.Error("failed to initialize telegram bot", "error", err)
		return
	}

	sender := notify.NewTelebotSender(b.Telebot(), log)
	firer := reminder.NewFirer(users, notificationGate, translations, sender, log)
	digestService := digest.NewService(users, notificationGate, digest.NewComposer(translations), sender, log)

	worker := jobs.NewWorker(redisOpt, cfg.Jobs, log)
	worker.RegisterHandler(jobs.TaskTypeEventReminder, jobhandlers.NewReminderHandler(firer, log))
	digestHandler := jobhandlers.NewDigestHandler(digestService, log)
	worker.RegisterHandler(jobs.TaskTypeMorningDigest, digestHandler)
	worker.RegisterHandler(jobs.TaskTypeEveningDigest, digestHandler)

	go func() {
		if err := worker.Run(); err != nil {
			log.Error("jobs worker stopped", "error", err)
			stop()
		}
	}()

	cronScheduler := jobs.NewScheduler(redisOpt, log)
	if err := cronScheduler.RegisterTasks(cfg.Digest.MorningCron, cfg.Digest.EveningCron); err != nil {
		log.Error("failed to register digest schedules", "error", err)
		return
	}
	cronScheduler.Run()

	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	var webhookHandler http.Handler = webhook.NewHandler(users, reminderScheduler, sender, translations, errHandler, log)
	if idemManager != nil {
		webhookHandler = webhook.WithDeduplication(webhookHandler, idemManager, log)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	if redisClient != nil {
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	}
	checker.AddCheck("snapshot", snapshotCheck)
	probes := lifecycle.NewProbes(log, checker.Check)

	mux := http.NewServeMux()
	mux.Handle("/webhook", webhookHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", healthzHandler(checker))
	mux.HandleFunc("/livez", probeHandler(probes.Liveness))
	mux.HandleFunc("/readyz", probeHandler(probes.Readiness))

	httpServer := graceful.NewServer(
		log,
		listenAddr(cfg.Server.Port),
		logger.Middleware(middleware.HTTPLogging(log)(mux)),
		shutdownTimeout,
	)

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram-bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	shutdown.Register("jobs-worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})
	shutdown.Register("cron-scheduler", func(context.Context) error {
		cronScheduler.Shutdown()
		return nil
	})
	shutdown.Register("jobs-manager", func(context.Context) error {
		return jobsManager.Close()
	})

	go b.Start()
	log.Info("planner bot is running")

	if err := httpServer.ListenAndServe(ctx); err != nil {
		log.Error("http server terminated", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", "error", err)
	}

	log.Info("planner bot stopped")
}

func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func healthzHandler(checker *health.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		if !health.Healthy(results) {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	}
}

func probeHandler(probe func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := probe(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
