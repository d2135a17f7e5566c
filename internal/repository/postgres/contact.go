package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
	apperrors "github.com/churchcomm/admin-api/pkg/errors"
)

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

const insertContact = `
	INSERT INTO contacts (id, church_id, full_name, phone, email, group_id, status, birth_day, birth_month, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	contact.ID = uuid.New()
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, insertContact,
		contact.ID,
		contact.ChurchID,
		contact.FullName,
		contact.Phone,
		contact.Email,
		contact.GroupID,
		contact.Status,
		contact.BirthDay,
		contact.BirthMonth,
		contact.Role,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// CreateBatch inserts rows one by one so a bad row does not abort the rest.
// It returns the inserted contacts and the indexes of rows that failed.
func (r *contactRepository) CreateBatch(ctx context.Context, contacts []*model.Contact) ([]*model.Contact, []int, error) {
	inserted := make([]*model.Contact, 0, len(contacts))
	var failed []int

	for i, contact := range contacts {
		if err := r.Create(ctx, contact); err != nil {
			failed = append(failed, i)
			continue
		}
		inserted = append(inserted, contact)
	}
	return inserted, failed, nil
}

func (r *contactRepository) Get(ctx context.Context, churchID, id uuid.UUID) (*model.Contact, error) {
	query := `SELECT * FROM contacts WHERE id = $1 AND church_id = $2`
	var contact model.Contact
	err := r.db.GetContext(ctx, &contact, query, id, churchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("contact", err)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *model.Contact) error {
	query := `
		UPDATE contacts
		SET full_name = $1, phone = $2, email = $3, group_id = $4, status = $5,
		    birth_day = $6, birth_month = $7, role = $8, updated_at = $9
		WHERE id = $10 AND church_id = $11
	`
	_, err := r.db.ExecContext(ctx, query,
		contact.FullName, contact.Phone, contact.Email, contact.GroupID, contact.Status,
		contact.BirthDay, contact.BirthMonth, contact.Role, time.Now(),
		contact.ID, contact.ChurchID)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	query := `DELETE FROM contacts WHERE id = $1 AND church_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, churchID)
	return err
}

func (r *contactRepository) DeleteBatch(ctx context.Context, churchID uuid.UUID, ids []uuid.UUID) (int64, error) {
	query := `DELETE FROM contacts WHERE church_id = $1 AND id = ANY($2)`
	res, err := r.db.ExecContext(ctx, query, churchID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete contacts: %w", err)
	}
	return res.RowsAffected()
}

func (r *contactRepository) List(ctx context.Context, churchID uuid.UUID) ([]*model.Contact, error) {
	query := `SELECT * FROM contacts WHERE church_id = $1 ORDER BY full_name`
	var contacts []*model.Contact
	err := r.db.SelectContext(ctx, &contacts, query, churchID)
	return contacts, err
}

func (r *contactRepository) ListActiveByGroups(ctx context.Context, churchID uuid.UUID, groupIDs []uuid.UUID) ([]*model.Contact, error) {
	query := `
		SELECT * FROM contacts
		WHERE church_id = $1 AND status = 'active' AND group_id = ANY($2)
	`
	var contacts []*model.Contact
	err := r.db.SelectContext(ctx, &contacts, query, churchID, pq.Array(groupIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts by groups: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) ListActiveByBirthday(ctx context.Context, churchID uuid.UUID, day, month string) ([]*model.Contact, error) {
	query := `
		SELECT * FROM contacts
		WHERE church_id = $1 AND status = 'active' AND birth_day = $2 AND birth_month = $3
		ORDER BY full_name
	`
	var contacts []*model.Contact
	err := r.db.SelectContext(ctx, &contacts, query, churchID, day, month)
	return contacts, err
}

func (r *contactRepository) ListActiveByBirthMonth(ctx context.Context, churchID uuid.UUID, month string) ([]*model.Contact, error) {
	query := `
		SELECT * FROM contacts
		WHERE church_id = $1 AND status = 'active' AND birth_month = $2
		ORDER BY birth_day, full_name
	`
	var contacts []*model.Contact
	err := r.db.SelectContext(ctx, &contacts, query, churchID, month)
	return contacts, err
}

// ListByBirthdayAllChurches matches day/month across every tenant for the
// daily birthday job. Only active contacts are considered.
func (r *contactRepository) ListByBirthdayAllChurches(ctx context.Context, day, month string) ([]*model.Contact, error) {
	query := `
		SELECT * FROM contacts
		WHERE status = 'active' AND birth_day = $1 AND birth_month = $2
	`
	var contacts []*model.Contact
	err := r.db.SelectContext(ctx, &contacts, query, day, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list birthday contacts: %w", err)
	}
	return contacts, nil
}
