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

type templateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) repository.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *model.Template) error {
	query := `
		INSERT INTO templates (id, church_id, name, category, content, channels, variables, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	template.ID = uuid.New()
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		template.ID, template.ChurchID, template.Name, template.Category,
		template.Content, template.Channels, template.Variables,
		template.CreatedAt, template.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *templateRepository) Get(ctx context.Context, churchID, id uuid.UUID) (*model.Template, error) {
	query := `SELECT * FROM templates WHERE id = $1 AND church_id = $2`
	var template model.Template
	err := r.db.GetContext(ctx, &template, query, id, churchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("template", err)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &template, nil
}

func (r *templateRepository) Update(ctx context.Context, template *model.Template) error {
	query := `
		UPDATE templates
		SET name = $1, category = $2, content = $3, channels = $4, variables = $5, updated_at = $6
		WHERE id = $7 AND church_id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		template.Name, template.Category, template.Content, template.Channels,
		template.Variables, time.Now(), template.ID, template.ChurchID)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return nil
}

func (r *templateRepository) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	query := `DELETE FROM templates WHERE id = $1 AND church_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, churchID)
	return err
}

func (r *templateRepository) List(ctx context.Context, churchID uuid.UUID) ([]*model.Template, error) {
	query := `SELECT * FROM templates WHERE church_id = $1 ORDER BY name`
	var templates []*model.Template
	err := r.db.SelectContext(ctx, &templates, query, churchID)
	return templates, err
}
