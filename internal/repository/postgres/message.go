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

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	query := `
		INSERT INTO messages (id, church_id, body, channel, recipients, status, schedule_at, sent_at,
		                      description, total_recipients, total_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	message.ID = uuid.New()
	message.CreatedAt = time.Now()
	message.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		message.ID, message.ChurchID, message.Body, message.Channel, message.Recipients,
		message.Status, message.ScheduleAt, message.SentAt, message.Description,
		message.TotalRecipients, message.TotalCost, message.CreatedAt, message.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) Get(ctx context.Context, churchID, id uuid.UUID) (*model.Message, error) {
	query := `SELECT * FROM messages WHERE id = $1 AND church_id = $2`
	var message model.Message
	err := r.db.GetContext(ctx, &message, query, id, churchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("message", err)
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &message, nil
}

func (r *messageRepository) GetAny(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	query := `SELECT * FROM messages WHERE id = $1`
	var message model.Message
	err := r.db.GetContext(ctx, &message, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("message", err)
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &message, nil
}

func (r *messageRepository) Update(ctx context.Context, message *model.Message) error {
	query := `
		UPDATE messages
		SET body = $1, channel = $2, recipients = $3, status = $4, schedule_at = $5,
		    sent_at = $6, description = $7, total_recipients = $8, total_cost = $9, updated_at = $10
		WHERE id = $11 AND church_id = $12
	`
	_, err := r.db.ExecContext(ctx, query,
		message.Body, message.Channel, message.Recipients, message.Status,
		message.ScheduleAt, message.SentAt, message.Description,
		message.TotalRecipients, message.TotalCost, time.Now(),
		message.ID, message.ChurchID)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}

func (r *messageRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MessageStatus, sentAt *time.Time) error {
	query := `UPDATE messages SET status = $1, sent_at = COALESCE($2, sent_at), updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, status, sentAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	query := `DELETE FROM messages WHERE id = $1 AND church_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, churchID)
	return err
}

func (r *messageRepository) List(ctx context.Context, churchID uuid.UUID, filter *model.MessageFilter) ([]*model.Message, error) {
	query := `SELECT * FROM messages WHERE church_id = $1`
	args := []interface{}{churchID}

	if filter != nil {
		if filter.Status != "" {
			args = append(args, filter.Status)
			query += fmt.Sprintf(" AND status = $%d", len(args))
		}
		if filter.Channel != "" {
			args = append(args, filter.Channel)
			query += fmt.Sprintf(" AND channel = $%d", len(args))
		}
	}
	query += " ORDER BY created_at DESC"

	var messages []*model.Message
	err := r.db.SelectContext(ctx, &messages, query, args...)
	return messages, err
}
