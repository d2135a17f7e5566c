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

type churchRepository struct {
	db *sqlx.DB
}

func NewChurchRepository(db *sqlx.DB) repository.ChurchRepository {
	return &churchRepository{db: db}
}

func (r *churchRepository) Create(ctx context.Context, church *model.Church) error {
	query := `
		INSERT INTO churches (id, name, pastor_name, email, password_hash, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	church.ID = uuid.New()
	church.CreatedAt = time.Now()
	church.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		church.ID,
		church.Name,
		church.PastorName,
		church.Email,
		church.PasswordHash,
		church.Phone,
		church.CreatedAt,
		church.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("church with this email already exists", err)
		}
		return fmt.Errorf("failed to create church: %w", err)
	}
	return nil
}

func (r *churchRepository) Get(ctx context.Context, id uuid.UUID) (*model.Church, error) {
	query := `SELECT * FROM churches WHERE id = $1`
	var church model.Church
	err := r.db.GetContext(ctx, &church, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("church", err)
		}
		return nil, fmt.Errorf("failed to get church: %w", err)
	}
	return &church, nil
}

func (r *churchRepository) GetByEmail(ctx context.Context, email string) (*model.Church, error) {
	query := `SELECT * FROM churches WHERE email = $1`
	var church model.Church
	err := r.db.GetContext(ctx, &church, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("church", err)
		}
		return nil, fmt.Errorf("failed to get church by email: %w", err)
	}
	return &church, nil
}

func (r *churchRepository) Update(ctx context.Context, church *model.Church) error {
	query := `
		UPDATE churches
		SET name = $1, pastor_name = $2, phone = $3, password_hash = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		church.Name, church.PastorName, church.Phone, church.PasswordHash, time.Now(), church.ID)
	if err != nil {
		return fmt.Errorf("failed to update church: %w", err)
	}
	return nil
}
