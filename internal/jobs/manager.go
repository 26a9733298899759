package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/planwise/planner-bot/internal/reminder"
)

// Manager describes the queue operations needed by the application. It also
// satisfies reminder.Executor: RunAt registers a delayed task under the given
// id and Cancel withdraws it before it runs.
type Manager interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	RunAt(ctx context.Context, id string, fireAt time.Time, payload reminder.Payload) error
	Cancel(ctx context.Context, id string) error
	Close() error
}

type manager struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	log       *slog.Logger
}

var _ reminder.Executor = (Manager)(nil)

// NewManager builds a Manager backed by an asynq client.
func NewManager(redisOpt asynq.RedisConnOpt, log *slog.Logger) Manager {
	return &manager{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		log:       log,
	}
}

func (m *manager) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return m.client.EnqueueContext(ctx, task, opts...)
}

// RunAt schedules an event reminder for execution at fireAt. The task id makes
// the registration addressable for Cancel and deduplicates double scheduling.
func (m *manager) RunAt(ctx context.Context, id string, fireAt time.Time, payload reminder.Payload) error {
	task, err := NewEventReminderTask(payload)
	if err != nil {
		return err
	}

	_, err = m.client.EnqueueContext(ctx, task, asynq.TaskID(id), asynq.ProcessAt(fireAt))
	return err
}

// Cancel removes a not-yet-processed reminder task. A task that already ran
// or was never registered is not an error.
func (m *manager) Cancel(_ context.Context, id string) error {
	err := m.inspector.DeleteTask(QueueCritical, id)
	if err == nil || errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}

func (m *manager) Close() error {
	if err := m.inspector.Close(); err != nil && m.log != nil {
		m.log.Error("jobs manager: inspector close failed", slog.Any("error", err))
	}
	return m.client.Close()
}
