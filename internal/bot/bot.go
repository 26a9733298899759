// Package bot wires the Telegram transport: router, middlewares, and the
// command and callback handlers.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/planwise/planner-bot/internal/bot/handlers"
	errors "github.com/planwise/planner-bot/internal/errors"
	"github.com/planwise/planner-bot/internal/i18n"
	"github.com/planwise/planner-bot/internal/idempotency"
	"github.com/planwise/planner-bot/internal/middleware"
	"github.com/planwise/planner-bot/internal/store"
	"github.com/planwise/planner-bot/pkg/config"
)

const defaultPollTimeout = 10 * time.Second

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot            *telebot.Bot
	log                *slog.Logger
	cfg                config.Config
	rateLimitMw        *middleware.RateLimitMiddleware
	router             *Router
	errHandler         *errors.Handler
	idempotencyManager idempotency.Manager
	deps               handlers.Deps
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	users store.UserStore,
	translations *i18n.Manager,
	idempotencyManager idempotency.Manager,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
		Poller: &telebot.LongPoller{
			Timeout: pollTimeout(cfg.Bot.PollTimeout),
		},
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{
		telebot:            tb,
		log:                log,
		cfg:                cfg,
		rateLimitMw:        rateLimitMw,
		router:             NewRouter(log),
		errHandler:         errors.NewHandler(log, cfg.Sentry.Enabled),
		idempotencyManager: idempotencyManager,
		deps: handlers.Deps{
			Store: users,
			I18n:  translations,
			Log:   log,
		},
	}

	b.setupRouter()

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter() {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(middleware.Idempotency(b.idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Metrics)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(b.deps, b.cfg.Bot.MiniAppURL))
	b.router.RegisterCommand(CommandTasks, handlers.NewTasksHandler(b.deps))
	b.router.RegisterCommand(CommandEvents, handlers.NewEventsHandler(b.deps))
	b.router.RegisterCommand(CommandHabits, handlers.NewHabitsHandler(b.deps))
	b.router.RegisterCommand(CommandStats, handlers.NewStatsHandler(b.deps))
	b.router.RegisterCommand(CommandSettings, handlers.NewSettingsHandler(b.deps))
	b.router.RegisterCommand(CommandHelp, handlers.NewHelpHandler(b.deps))

	b.router.RegisterCallback(handlers.CallbackCompleteTask, handlers.HandleCompleteTask(b.deps))
	b.router.RegisterCallback(handlers.CallbackIncompleteTask, handlers.HandleIncompleteTask(b.deps))
	b.router.RegisterCallback(handlers.CallbackToggleMorning, handlers.HandleToggleMorning(b.deps))
	b.router.RegisterCallback(handlers.CallbackToggleEvening, handlers.HandleToggleEvening(b.deps))
	b.router.RegisterCallback(handlers.CallbackToggleReminder, handlers.HandleToggleReminder(b.deps))
	b.router.RegisterCallback(handlers.CallbackChangeLanguage, handlers.HandleChangeLanguage(b.deps))
	b.router.RegisterCallback(handlers.CallbackSetLanguage, handlers.HandleSetLanguage(b.deps))
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}

func pollTimeout(raw string) time.Duration {
	if raw == "" {
		return defaultPollTimeout
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultPollTimeout
	}

	return d
}
