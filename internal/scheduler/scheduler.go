// Package scheduler persists deferred jobs and runs them when due. Jobs
// survive restarts; execution is at-least-once, so handlers must tolerate
// replays.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
	"github.com/churchcomm/admin-api/pkg/logger"
	"github.com/churchcomm/admin-api/pkg/metrics"
)

// Handler executes one claimed job.
type Handler func(ctx context.Context, job *model.ScheduledJob) error

// Scheduler enqueues durable jobs.
type Scheduler struct {
	jobs   repository.JobRepository
	logger *logger.Logger
}

func New(jobs repository.JobRepository, logger *logger.Logger) *Scheduler {
	return &Scheduler{jobs: jobs, logger: logger}
}

// ScheduleMessage enqueues a deferred message send at runAt.
func (s *Scheduler) ScheduleMessage(ctx context.Context, messageID uuid.UUID, runAt time.Time) error {
	payload, err := json.Marshal(model.SendMessagePayload{MessageID: messageID})
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}
	job := &model.ScheduledJob{
		JobType: model.JobTypeSendMessage,
		Payload: string(payload),
		RunAt:   runAt,
		Status:  string(model.JobStatusPending),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return err
	}
	s.logger.Info("scheduled message send",
		"message_id", messageID, "run_at", runAt, "job_id", job.ID)
	return nil
}

// Worker polls for due jobs and dispatches them to registered handlers.
type Worker struct {
	jobs     repository.JobRepository
	handlers map[string]Handler
	interval time.Duration
	batch    int
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

func NewWorker(jobs repository.JobRepository, cfg WorkerConfig, m *metrics.Metrics, logger *logger.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	return &Worker{
		jobs:     jobs,
		handlers: make(map[string]Handler),
		interval: cfg.PollInterval,
		batch:    cfg.BatchSize,
		metrics:  m,
		logger:   logger,
	}
}

// Register binds a handler to a job type. Not safe to call after Run
// has started.
func (w *Worker) Register(jobType string, h Handler) {
	w.handlers[jobType] = h
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("scheduler worker started", "poll_interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("scheduler worker stopped")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick claims and processes one batch of due jobs.
func (w *Worker) Tick(ctx context.Context) {
	jobs, err := w.jobs.ClaimDue(ctx, time.Now(), w.batch)
	if err != nil {
		w.logger.Error(err, "failed to claim due jobs")
		return
	}

	for _, job := range jobs {
		w.process(ctx, job)
	}

	if w.metrics != nil {
		if pending, err := w.jobs.CountPending(ctx); err == nil {
			w.metrics.JobQueueSize.Set(float64(pending))
		}
	}
}

func (w *Worker) process(ctx context.Context, job *model.ScheduledJob) {
	handler, ok := w.handlers[job.JobType]
	if !ok {
		w.fail(ctx, job, fmt.Sprintf("no handler for job type %q", job.JobType))
		return
	}

	if w.metrics != nil {
		w.metrics.JobLatency.Observe(time.Since(job.RunAt).Seconds())
	}

	if err := handler(ctx, job); err != nil {
		w.fail(ctx, job, err.Error())
		return
	}

	if err := w.jobs.MarkDone(ctx, job.ID); err != nil {
		w.logger.Error(err, "failed to mark job done", "job_id", job.ID)
		return
	}
	if w.metrics != nil {
		w.metrics.JobsProcessed.Inc()
	}
	w.logger.Info("job completed", "job_id", job.ID, "job_type", job.JobType)
}

func (w *Worker) fail(ctx context.Context, job *model.ScheduledJob, reason string) {
	if err := w.jobs.MarkFailed(ctx, job.ID, reason); err != nil {
		w.logger.Error(err, "failed to mark job failed", "job_id", job.ID)
	}
	if w.metrics != nil {
		w.metrics.JobsFailed.Inc()
	}
	w.logger.Error(nil, "job failed",
		"job_id", job.ID, "job_type", job.JobType, "reason", reason)
}

// SendMessageHandler adapts the message service into a job handler.
func SendMessageHandler(send func(ctx context.Context, messageID uuid.UUID) error) Handler {
	return func(ctx context.Context, job *model.ScheduledJob) error {
		var payload model.SendMessagePayload
		if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
			return fmt.Errorf("invalid job payload: %w", err)
		}
		return send(ctx, payload.MessageID)
	}
}
