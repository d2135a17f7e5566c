package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/pkg/logger"
)

type fakeJobs struct {
	jobs map[uuid.UUID]*model.ScheduledJob
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: map[uuid.UUID]*model.ScheduledJob{}}
}

// Create mirrors the postgres repository: it assigns the id and stores
// the job exactly as given, status included.
func (f *fakeJobs) Create(_ context.Context, job *model.ScheduledJob) error {
	job.ID = uuid.New()
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobs) ClaimDue(_ context.Context, now time.Time, limit int) ([]*model.ScheduledJob, error) {
	var due []*model.ScheduledJob
	for _, j := range f.jobs {
		if j.Status == string(model.JobStatusPending) && !j.RunAt.After(now) && len(due) < limit {
			j.Status = string(model.JobStatusRunning)
			j.Attempts++
			due = append(due, j)
		}
	}
	return due, nil
}

func (f *fakeJobs) MarkDone(_ context.Context, id uuid.UUID) error {
	f.jobs[id].Status = string(model.JobStatusDone)
	return nil
}

func (f *fakeJobs) MarkFailed(_ context.Context, id uuid.UUID, lastError string) error {
	j := f.jobs[id]
	j.Status = string(model.JobStatusFailed)
	j.LastError = &lastError
	return nil
}

func (f *fakeJobs) CountPending(_ context.Context) (int64, error) {
	var n int64
	for _, j := range f.jobs {
		if j.Status == string(model.JobStatusPending) {
			n++
		}
	}
	return n, nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: os.Stderr})
}

func TestScheduleMessage_PersistsJob(t *testing.T) {
	jobs := newFakeJobs()
	s := New(jobs, testLogger())

	messageID := uuid.New()
	runAt := time.Now().Add(time.Hour)
	require.NoError(t, s.ScheduleMessage(context.Background(), messageID, runAt))

	require.Len(t, jobs.jobs, 1)
	for _, j := range jobs.jobs {
		assert.Equal(t, model.JobTypeSendMessage, j.JobType)
		assert.Equal(t, string(model.JobStatusPending), j.Status)
		assert.WithinDuration(t, runAt, j.RunAt, time.Second)

		var payload model.SendMessagePayload
		require.NoError(t, json.Unmarshal([]byte(j.Payload), &payload))
		assert.Equal(t, messageID, payload.MessageID)
	}
}

func TestWorker_ProcessesDueJobs(t *testing.T) {
	jobs := newFakeJobs()
	s := New(jobs, testLogger())

	dueID := uuid.New()
	futureID := uuid.New()
	require.NoError(t, s.ScheduleMessage(context.Background(), dueID, time.Now().Add(-time.Minute)))
	require.NoError(t, s.ScheduleMessage(context.Background(), futureID, time.Now().Add(time.Hour)))

	var handled []uuid.UUID
	w := NewWorker(jobs, WorkerConfig{}, nil, testLogger())
	w.Register(model.JobTypeSendMessage, SendMessageHandler(func(_ context.Context, id uuid.UUID) error {
		handled = append(handled, id)
		return nil
	}))

	w.Tick(context.Background())

	require.Len(t, handled, 1)
	assert.Equal(t, dueID, handled[0])

	var doneCount, pendingCount int
	for _, j := range jobs.jobs {
		switch j.Status {
		case string(model.JobStatusDone):
			doneCount++
		case string(model.JobStatusPending):
			pendingCount++
		}
	}
	assert.Equal(t, 1, doneCount)
	assert.Equal(t, 1, pendingCount, "future job stays pending")
}

func TestWorker_HandlerFailure(t *testing.T) {
	jobs := newFakeJobs()
	s := New(jobs, testLogger())
	require.NoError(t, s.ScheduleMessage(context.Background(), uuid.New(), time.Now().Add(-time.Minute)))

	w := NewWorker(jobs, WorkerConfig{}, nil, testLogger())
	w.Register(model.JobTypeSendMessage, SendMessageHandler(func(_ context.Context, _ uuid.UUID) error {
		return errors.New("gateway unavailable")
	}))

	w.Tick(context.Background())

	for _, j := range jobs.jobs {
		assert.Equal(t, string(model.JobStatusFailed), j.Status)
		require.NotNil(t, j.LastError)
		assert.Contains(t, *j.LastError, "gateway unavailable")
	}
}

func TestWorker_UnknownJobType(t *testing.T) {
	jobs := newFakeJobs()
	job := &model.ScheduledJob{
		JobType: "mystery",
		RunAt:   time.Now().Add(-time.Minute),
		Status:  string(model.JobStatusPending),
	}
	require.NoError(t, jobs.Create(context.Background(), job))

	w := NewWorker(jobs, WorkerConfig{}, nil, testLogger())
	w.Tick(context.Background())

	assert.Equal(t, string(model.JobStatusFailed), jobs.jobs[job.ID].Status)
}
