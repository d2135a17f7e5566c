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

type birthdayConfigRepository struct {
	db *sqlx.DB
}

func NewBirthdayConfigRepository(db *sqlx.DB) repository.BirthdayConfigRepository {
	return &birthdayConfigRepository{db: db}
}

// Upsert keeps at most one config per church via the unique constraint on
// church_id.
func (r *birthdayConfigRepository) Upsert(ctx context.Context, config *model.BirthdayConfig) error {
	query := `
		INSERT INTO birthday_configs (id, church_id, enabled, template_id, selected_channels, send_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (church_id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
		    template_id = EXCLUDED.template_id,
		    selected_channels = EXCLUDED.selected_channels,
		    send_time = EXCLUDED.send_time,
		    updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	if config.ID == uuid.Nil {
		config.ID = uuid.New()
	}
	if config.CreatedAt.IsZero() {
		config.CreatedAt = now
	}
	config.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		config.ID, config.ChurchID, config.Enabled, config.TemplateID,
		config.SelectedChannels, config.SendTime, config.CreatedAt, config.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert birthday config: %w", err)
	}
	return nil
}

func (r *birthdayConfigRepository) Get(ctx context.Context, churchID uuid.UUID) (*model.BirthdayConfig, error) {
	query := `SELECT * FROM birthday_configs WHERE church_id = $1`
	var config model.BirthdayConfig
	err := r.db.GetContext(ctx, &config, query, churchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("birthday config", err)
		}
		return nil, fmt.Errorf("failed to get birthday config: %w", err)
	}
	return &config, nil
}

func (r *birthdayConfigRepository) Delete(ctx context.Context, churchID uuid.UUID) error {
	query := `DELETE FROM birthday_configs WHERE church_id = $1`
	_, err := r.db.ExecContext(ctx, query, churchID)
	return err
}
