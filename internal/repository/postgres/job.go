package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
)

type jobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) repository.JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.ScheduledJob) error {
	query := `
		INSERT INTO scheduled_jobs (id, job_type, payload, run_at, status, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	job.ID = uuid.New()
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.JobType, job.Payload, job.RunAt, job.Status, job.Attempts,
		job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scheduled job: %w", err)
	}
	return nil
}

// ClaimDue marks due pending jobs as running and returns them in one
// statement. SKIP LOCKED keeps concurrent workers from double-claiming.
func (r *jobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledJob, error) {
	query := `
		UPDATE scheduled_jobs
		SET status = 'running', attempts = attempts + 1, updated_at = $1
		WHERE id IN (
			SELECT id FROM scheduled_jobs
			WHERE status = 'pending' AND run_at <= $2
			ORDER BY run_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *
	`
	var jobs []*model.ScheduledJob
	err := r.db.SelectContext(ctx, &jobs, query, time.Now(), now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due jobs: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE scheduled_jobs SET status = 'done', updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (r *jobRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `UPDATE scheduled_jobs SET status = 'failed', last_error = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, lastError, time.Now(), id)
	return err
}

func (r *jobRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM scheduled_jobs WHERE status = 'pending'`)
	return count, err
}
