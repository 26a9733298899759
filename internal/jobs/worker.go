package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/planwise/planner-bot/pkg/config"
)

const defaultConcurrency = 10

// Reminders must beat digests out of the queue, digests beat housekeeping.
var defaultQueueWeights = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

// Worker provides APIs to register task handlers and control the background
// delivery loop.
type Worker interface {
	RegisterHandler(taskType string, handler asynq.Handler)
	Run() error
	Shutdown()
}

type worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *slog.Logger
}

var _ Worker = (*worker)(nil)

// NewWorker constructs a Worker backed by an asynq.Server. Concurrency and
// queue weights come from configuration, falling back to the built-in weights
// when the config leaves them unset.
func NewWorker(redisOpt asynq.RedisConnOpt, cfg config.JobsConfig, log *slog.Logger) Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	queues := cfg.Queues
	if len(queues) == 0 {
		queues = defaultQueueWeights
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Queues:         queues,
		Concurrency:    concurrency,
		RetryDelayFunc: asynq.DefaultRetryDelayFunc,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			if log != nil {
				log.ErrorContext(ctx, "task failed",
					slog.String("task_type", task.Type()),
					slog.Any("error", err),
				)
			}
		}),
	})

	return &worker{
		server: server,
		mux:    asynq.NewServeMux(),
		log:    log,
	}
}

// RegisterHandler wires a task type to the provided handler.
func (w *worker) RegisterHandler(taskType string, handler asynq.Handler) {
	w.mux.Handle(taskType, handler)
}

// Run starts processing queued reminder and digest tasks. Blocks until
// Shutdown is called.
func (w *worker) Run() error {
	if w.log != nil {
		w.log.InfoContext(context.Background(), "jobs worker: starting delivery loop")
	}

	return w.server.Run(w.mux)
}

// Shutdown gracefully stops the worker, waiting for in-flight deliveries.
func (w *worker) Shutdown() {
	if w.log != nil {
		w.log.InfoContext(context.Background(), "jobs worker: shutting down")
	}

	w.server.Shutdown()
}
