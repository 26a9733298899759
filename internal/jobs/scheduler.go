package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/planwise/planner-bot/internal/digest"
)

type Scheduler interface {
	RegisterTasks(morningSpec, eveningSpec string) error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	log            *slog.Logger
}

func NewScheduler(redisOpt asynq.RedisConnOpt, log *slog.Logger) Scheduler {
	// Digest crons are written in server-local time, not UTC.
	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
			Location: time.Local,
		}),
		log: log,
	}
}

// RegisterTasks registers the two digest cron entries. The specs come from
// configuration and are validated at load time.
func (s *scheduler) RegisterTasks(morningSpec, eveningSpec string) error {
	morning, err := NewDigestTask(digest.KindMorning)
	if err != nil {
		return err
	}
	if _, err := s.asynqScheduler.Register(morningSpec, morning); err != nil {
		return err
	}

	evening, err := NewDigestTask(digest.KindEvening)
	if err != nil {
		return err
	}
	if _, err := s.asynqScheduler.Register(eveningSpec, evening); err != nil {
		return err
	}

	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: registered digest tasks",
			slog.String("morning", morningSpec),
			slog.String("evening", eveningSpec),
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
			s.log.ErrorContext(context.Background(), "scheduler: run failed", "error", err)
		}
	}()
}

func (s *scheduler) Shutdown() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: shutting down")
	}

	s.asynqScheduler.Shutdown()
}
