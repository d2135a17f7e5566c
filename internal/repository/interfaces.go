package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/churchcomm/admin-api/internal/model"
)

// All repository interfaces in one file. Tenant-scoped methods take the
// owning church id as a mandatory parameter; there are no unscoped
// overloads.
type (
	ChurchRepository interface {
		Create(ctx context.Context, church *model.Church) error
		Get(ctx context.Context, id uuid.UUID) (*model.Church, error)
		GetByEmail(ctx context.Context, email string) (*model.Church, error)
		Update(ctx context.Context, church *model.Church) error
	}

	ContactRepository interface {
		Create(ctx context.Context, contact *model.Contact) error
		CreateBatch(ctx context.Context, contacts []*model.Contact) (inserted []*model.Contact, failed []int, err error)
		Get(ctx context.Context, churchID, id uuid.UUID) (*model.Contact, error)
		Update(ctx context.Context, contact *model.Contact) error
		Delete(ctx context.Context, churchID, id uuid.UUID) error
		DeleteBatch(ctx context.Context, churchID uuid.UUID, ids []uuid.UUID) (int64, error)
		List(ctx context.Context, churchID uuid.UUID) ([]*model.Contact, error)
		ListActiveByGroups(ctx context.Context, churchID uuid.UUID, groupIDs []uuid.UUID) ([]*model.Contact, error)
		ListActiveByBirthday(ctx context.Context, churchID uuid.UUID, day, month string) ([]*model.Contact, error)
		ListActiveByBirthMonth(ctx context.Context, churchID uuid.UUID, month string) ([]*model.Contact, error)
		// ListByBirthdayAllChurches feeds the daily birthday job; it is the
		// single deliberately cross-tenant query in the repository.
		ListByBirthdayAllChurches(ctx context.Context, day, month string) ([]*model.Contact, error)
	}

	GroupRepository interface {
		Create(ctx context.Context, group *model.Group) error
		Get(ctx context.Context, churchID, id uuid.UUID) (*model.Group, error)
		Update(ctx context.Context, group *model.Group) error
		Delete(ctx context.Context, churchID, id uuid.UUID) error
		List(ctx context.Context, churchID uuid.UUID) ([]*model.Group, error)
	}

	TemplateRepository interface {
		Create(ctx context.Context, template *model.Template) error
		Get(ctx context.Context, churchID, id uuid.UUID) (*model.Template, error)
		Update(ctx context.Context, template *model.Template) error
		Delete(ctx context.Context, churchID, id uuid.UUID) error
		List(ctx context.Context, churchID uuid.UUID) ([]*model.Template, error)
	}

	MessageRepository interface {
		Create(ctx context.Context, message *model.Message) error
		Get(ctx context.Context, churchID, id uuid.UUID) (*model.Message, error)
		// GetAny loads a message without tenant scoping; only the scheduler
		// worker uses it, because a job payload carries no church id.
		GetAny(ctx context.Context, id uuid.UUID) (*model.Message, error)
		Update(ctx context.Context, message *model.Message) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.MessageStatus, sentAt *time.Time) error
		Delete(ctx context.Context, churchID, id uuid.UUID) error
		List(ctx context.Context, churchID uuid.UUID, filter *model.MessageFilter) ([]*model.Message, error)
	}

	BirthdayConfigRepository interface {
		Upsert(ctx context.Context, config *model.BirthdayConfig) error
		Get(ctx context.Context, churchID uuid.UUID) (*model.BirthdayConfig, error)
		Delete(ctx context.Context, churchID uuid.UUID) error
	}

	JobRepository interface {
		Create(ctx context.Context, job *model.ScheduledJob) error
		// ClaimDue atomically marks up to limit due pending jobs as running
		// and returns them; concurrent workers never claim the same row.
		ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledJob, error)
		MarkDone(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
		CountPending(ctx context.Context) (int64, error)
	}
)
