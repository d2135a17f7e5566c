package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
	apperrors "github.com/churchcomm/admin-api/pkg/errors"
)

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) repository.GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	query := `
		INSERT INTO groups (id, church_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	group.ID = uuid.New()
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		group.ID, group.ChurchID, group.Name, group.Description, group.CreatedAt, group.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("group with this name already exists", err)
		}
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (r *groupRepository) Get(ctx context.Context, churchID, id uuid.UUID) (*model.Group, error) {
	query := `SELECT * FROM groups WHERE id = $1 AND church_id = $2`
	var group model.Group
	err := r.db.GetContext(ctx, &group, query, id, churchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("group", err)
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *model.Group) error {
	query := `UPDATE groups SET name = $1, description = $2, updated_at = $3 WHERE id = $4 AND church_id = $5`
	_, err := r.db.ExecContext(ctx, query, group.Name, group.Description, time.Now(), group.ID, group.ChurchID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("group with this name already exists", err)
		}
		return fmt.Errorf("failed to update group: %w", err)
	}
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	query := `DELETE FROM groups WHERE id = $1 AND church_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, churchID)
	return err
}

func (r *groupRepository) List(ctx context.Context, churchID uuid.UUID) ([]*model.Group, error) {
	query := `SELECT * FROM groups WHERE church_id = $1 ORDER BY name`
	var groups []*model.Group
	err := r.db.SelectContext(ctx, &groups, query, churchID)
	return groups, err
}
