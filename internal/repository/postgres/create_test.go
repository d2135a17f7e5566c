package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchcomm/admin-api/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestChurchCreate_AssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChurchRepository(db)

	mock.ExpectExec("INSERT INTO churches").WillReturnResult(sqlmock.NewResult(0, 1))

	church := &model.Church{Name: "Grace Chapel", Email: "info@gracechapel.org"}
	require.NoError(t, repo.Create(context.Background(), church))

	assert.NotEqual(t, uuid.Nil, church.ID)
	assert.False(t, church.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageCreate_AssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectExec("INSERT INTO messages").WillReturnResult(sqlmock.NewResult(0, 1))

	message := &model.Message{
		ChurchID: uuid.New(),
		Body:     "Service starts at 9am",
		Channel:  string(model.ChannelSMS),
		Status:   string(model.MessageStatusDraft),
	}
	require.NoError(t, repo.Create(context.Background(), message))

	assert.NotEqual(t, uuid.Nil, message.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactCreate_AssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContactRepository(db)

	mock.ExpectExec("INSERT INTO contacts").WillReturnResult(sqlmock.NewResult(0, 1))

	contact := &model.Contact{
		ChurchID: uuid.New(),
		FullName: "Ada Obi",
		Phone:    "2348011111111",
		Status:   string(model.ContactStatusActive),
	}
	require.NoError(t, repo.Create(context.Background(), contact))

	assert.NotEqual(t, uuid.Nil, contact.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The worker claims rows by status, so Create must persist the status the
// caller set rather than leave the column empty.
func TestJobCreate_AssignsIDAndPersistsStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec("INSERT INTO scheduled_jobs").
		WithArgs(
			sqlmock.AnyArg(),
			model.JobTypeSendMessage,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			string(model.JobStatusPending),
			0,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := &model.ScheduledJob{
		JobType: model.JobTypeSendMessage,
		Payload: `{"message_id":"` + uuid.New().String() + `"}`,
		RunAt:   time.Now().Add(time.Hour),
		Status:  string(model.JobStatusPending),
	}
	require.NoError(t, repo.Create(context.Background(), job))

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
