package model

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// JobTypeSendMessage fires a deferred message send.
const JobTypeSendMessage = "send_scheduled_message"

// ScheduledJob is a durably persisted deferred job. The worker claims due
// pending rows and invokes the handler registered for JobType.
type ScheduledJob struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	JobType   string     `db:"job_type" json:"job_type"`
	Payload   string     `db:"payload" json:"payload"`
	RunAt     time.Time  `db:"run_at" json:"run_at"`
	Status    string     `db:"status" json:"status"`
	Attempts  int        `db:"attempts" json:"attempts"`
	LastError *string    `db:"last_error" json:"last_error,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// SendMessagePayload is the JSON payload of a JobTypeSendMessage job.
type SendMessagePayload struct {
	MessageID uuid.UUID `json:"message_id"`
}
