package message

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/churchcomm/admin-api/internal/email"
	"github.com/churchcomm/admin-api/internal/gateway/termii"
	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
	apperrors "github.com/churchcomm/admin-api/pkg/errors"
	"github.com/churchcomm/admin-api/pkg/htmltext"
	"github.com/churchcomm/admin-api/pkg/logger"
	"github.com/churchcomm/admin-api/pkg/messaging"
	"github.com/churchcomm/admin-api/pkg/metrics"
)

const eventChannel = "messages"

// Gateway sends SMS and WhatsApp traffic through the provider.
type Gateway interface {
	SendBulkSMS(ctx context.Context, recipients []string, body string, startFromChunk int) (*termii.BulkResult, error)
	SendBulkWhatsApp(ctx context.Context, recipients []string, body string) (*termii.BulkResult, error)
}

// EmailSender delivers bulk email campaigns.
type EmailSender interface {
	SendBulk(ctx context.Context, recipients []string, subject, text, html string) (*email.BulkEmailResult, error)
}

// JobScheduler registers a durable deferred send.
type JobScheduler interface {
	ScheduleMessage(ctx context.Context, messageID uuid.UUID, runAt time.Time) error
}

// CostConfig holds per-channel unit costs in credits.
type CostConfig struct {
	SMS      int
	WhatsApp int
	Email    int
}

// DefaultCosts mirrors the provider's credit pricing.
var DefaultCosts = CostConfig{SMS: 3, WhatsApp: 3, Email: 2}

func (c CostConfig) unit(channel string) int {
	switch model.Channel(channel) {
	case model.ChannelSMS:
		return c.SMS
	case model.ChannelWhatsApp:
		return c.WhatsApp
	case model.ChannelEmail:
		return c.Email
	}
	return 0
}

// DispatchResult carries the adapter outcome of an immediate send back to
// the caller.
type DispatchResult struct {
	Channel string                 `json:"channel"`
	Gateway *termii.BulkResult     `json:"gateway,omitempty"`
	Email   *email.BulkEmailResult `json:"email,omitempty"`
}

// Service manages the message lifecycle.
type Service interface {
	Create(ctx context.Context, churchID uuid.UUID, req *model.CreateMessageRequest) (*model.Message, *DispatchResult, error)
	Get(ctx context.Context, churchID, id uuid.UUID) (*model.Message, error)
	List(ctx context.Context, churchID uuid.UUID, filter *model.MessageFilter) ([]*model.Message, error)
	Update(ctx context.Context, churchID, id uuid.UUID, req *model.UpdateMessageRequest) (*model.Message, error)
	Delete(ctx context.Context, churchID, id uuid.UUID) error
	SendScheduled(ctx context.Context, messageID uuid.UUID) error
}

type service struct {
	messages  repository.MessageRepository
	contacts  repository.ContactRepository
	scheduler JobScheduler
	gateway   Gateway
	email     EmailSender
	broker    messaging.Broker
	costs     CostConfig
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(
	messages repository.MessageRepository,
	contacts repository.ContactRepository,
	scheduler JobScheduler,
	gateway Gateway,
	emailSender EmailSender,
	broker messaging.Broker,
	costs CostConfig,
	m *metrics.Metrics,
	logger *logger.Logger,
) Service {
	if costs == (CostConfig{}) {
		costs = DefaultCosts
	}
	return &service{
		messages:  messages,
		contacts:  contacts,
		scheduler: scheduler,
		gateway:   gateway,
		email:     emailSender,
		broker:    broker,
		costs:     costs,
		metrics:   m,
		logger:    logger,
	}
}

// resolveRecipients expands group ids into that church's active contacts,
// deduplicated. The dedup key prefers phone, then email, then the contact
// id, so the same person reached through two groups is counted once.
func (s *service) resolveRecipients(ctx context.Context, churchID uuid.UUID, groupIDs []uuid.UUID) ([]*model.Contact, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	contacts, err := s.contacts.ListActiveByGroups(ctx, churchID, groupIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(contacts))
	deduped := make([]*model.Contact, 0, len(contacts))
	for _, c := range contacts {
		key := c.Phone
		if key == "" && c.Email != nil {
			key = *c.Email
		}
		if key == "" {
			key = c.ID.String()
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, c)
	}
	return deduped, nil
}

func (s *service) Create(ctx context.Context, churchID uuid.UUID, req *model.CreateMessageRequest) (*model.Message, *DispatchResult, error) {
	switch model.MessageStatus(req.Status) {
	case model.MessageStatusScheduled:
		if req.ScheduleAt == nil {
			return nil, nil, apperrors.Validation("schedule_at is required for scheduled messages", "schedule_at")
		}
		if !req.ScheduleAt.After(time.Now()) {
			return nil, nil, apperrors.Validation("schedule_at must be in the future", "schedule_at")
		}
	case model.MessageStatusSent:
		if req.ScheduleAt != nil {
			return nil, nil, apperrors.Validation("schedule_at must not be set when sending immediately", "schedule_at")
		}
	}

	groupIDs, err := parseGroupIDs(req.Recipients)
	if err != nil {
		return nil, nil, err
	}
	contacts, err := s.resolveRecipients(ctx, churchID, groupIDs)
	if err != nil {
		return nil, nil, err
	}

	msg := &model.Message{
		ChurchID:        churchID,
		Body:            req.Body,
		Channel:         req.Channel,
		Recipients:      req.Recipients,
		Status:          req.Status,
		ScheduleAt:      req.ScheduleAt,
		Description:     req.Description,
		TotalRecipients: len(contacts),
		TotalCost:       len(contacts) * s.costs.unit(req.Channel),
	}

	switch model.MessageStatus(req.Status) {
	case model.MessageStatusDraft:
		if err := s.messages.Create(ctx, msg); err != nil {
			return nil, nil, err
		}
		return msg, nil, nil

	case model.MessageStatusScheduled:
		if err := s.messages.Create(ctx, msg); err != nil {
			return nil, nil, err
		}
		if err := s.scheduler.ScheduleMessage(ctx, msg.ID, *msg.ScheduleAt); err != nil {
			return nil, nil, err
		}
		s.publish(ctx, "message.scheduled", msg)
		return msg, nil, nil

	case model.MessageStatusSent:
		now := time.Now()
		msg.SentAt = &now
		if err := s.messages.Create(ctx, msg); err != nil {
			return nil, nil, err
		}
		result, err := s.dispatch(ctx, msg, contacts)
		if err != nil {
			if updErr := s.messages.UpdateStatus(ctx, msg.ID, model.MessageStatusFailed, nil); updErr != nil {
				s.logger.Error(updErr, "failed to mark message failed", "message_id", msg.ID)
			}
			msg.Status = string(model.MessageStatusFailed)
			msg.SentAt = nil
			s.publish(ctx, "message.failed", msg)
			return msg, nil, err
		}
		s.publish(ctx, "message.sent", msg)
		return msg, result, nil
	}

	return nil, nil, apperrors.Validation("invalid message status", "status")
}

func (s *service) Get(ctx context.Context, churchID, id uuid.UUID) (*model.Message, error) {
	return s.messages.Get(ctx, churchID, id)
}

func (s *service) List(ctx context.Context, churchID uuid.UUID, filter *model.MessageFilter) ([]*model.Message, error) {
	return s.messages.List(ctx, churchID, filter)
}

func (s *service) Update(ctx context.Context, churchID, id uuid.UUID, req *model.UpdateMessageRequest) (*model.Message, error) {
	msg, err := s.messages.Get(ctx, churchID, id)
	if err != nil {
		return nil, err
	}

	if req.Body != nil {
		msg.Body = *req.Body
	}
	if req.Channel != nil {
		msg.Channel = *req.Channel
	}
	if req.Status != nil {
		msg.Status = *req.Status
	}
	if req.ScheduleAt != nil {
		msg.ScheduleAt = req.ScheduleAt
	}
	if req.Description != nil {
		msg.Description = *req.Description
	}
	if req.Recipients != nil {
		msg.Recipients = req.Recipients
	}

	if req.Recipients != nil || req.Channel != nil {
		contacts, err := s.resolveRecipients(ctx, churchID, msg.RecipientGroupIDs())
		if err != nil {
			return nil, err
		}
		msg.TotalRecipients = len(contacts)
		msg.TotalCost = len(contacts) * s.costs.unit(msg.Channel)
	}

	if err := s.messages.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *service) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	return s.messages.Delete(ctx, churchID, id)
}

// SendScheduled executes a deferred send. It is safe to call more than
// once for the same message: a message already sent or failed is skipped,
// which makes the at-least-once scheduler harmless.
func (s *service) SendScheduled(ctx context.Context, messageID uuid.UUID) error {
	msg, err := s.messages.GetAny(ctx, messageID)
	if err != nil {
		return err
	}

	switch model.MessageStatus(msg.Status) {
	case model.MessageStatusSent, model.MessageStatusFailed:
		s.logger.Info("skipping already finalized message",
			"message_id", messageID, "status", msg.Status)
		return nil
	}

	contacts, err := s.resolveRecipients(ctx, msg.ChurchID, msg.RecipientGroupIDs())
	if err != nil {
		return err
	}

	if _, err := s.dispatch(ctx, msg, contacts); err != nil {
		if updErr := s.messages.UpdateStatus(ctx, msg.ID, model.MessageStatusFailed, nil); updErr != nil {
			s.logger.Error(updErr, "failed to mark message failed", "message_id", msg.ID)
		}
		msg.Status = string(model.MessageStatusFailed)
		s.publish(ctx, "message.failed", msg)
		return err
	}

	now := time.Now()
	if err := s.messages.UpdateStatus(ctx, msg.ID, model.MessageStatusSent, &now); err != nil {
		return err
	}
	msg.Status = string(model.MessageStatusSent)
	msg.SentAt = &now
	s.publish(ctx, "message.sent", msg)
	return nil
}

// dispatch routes the message to the channel adapter.
func (s *service) dispatch(ctx context.Context, msg *model.Message, contacts []*model.Contact) (*DispatchResult, error) {
	result := &DispatchResult{Channel: msg.Channel}

	switch model.Channel(msg.Channel) {
	case model.ChannelSMS:
		res, err := s.gateway.SendBulkSMS(ctx, phones(contacts), htmltext.Strip(msg.Body), 1)
		if err != nil {
			s.countFailure(msg.Channel)
			return nil, err
		}
		s.countSuccess(msg.Channel, len(res.InvalidNumbers))
		result.Gateway = res
		return result, nil

	case model.ChannelWhatsApp:
		res, err := s.gateway.SendBulkWhatsApp(ctx, phones(contacts), htmltext.Strip(msg.Body))
		if err != nil {
			s.countFailure(msg.Channel)
			return nil, err
		}
		s.countSuccess(msg.Channel, len(res.InvalidNumbers))
		result.Gateway = res
		return result, nil

	case model.ChannelEmail:
		subject := msg.Description
		if subject == "" {
			subject = "New message"
		}
		res, err := s.email.SendBulk(ctx, emailAddresses(contacts), subject, htmltext.Strip(msg.Body), msg.Body)
		if err != nil {
			s.countFailure(msg.Channel)
			return nil, err
		}
		if !res.Success {
			s.countFailure(msg.Channel)
			return nil, apperrors.Gateway("smtp", 0, "one or more email batches failed")
		}
		s.countSuccess(msg.Channel, 0)
		result.Email = res
		return result, nil
	}

	return nil, apperrors.Validation("unsupported channel", "channel")
}

func (s *service) countSuccess(channel string, invalid int) {
	if s.metrics == nil {
		return
	}
	s.metrics.MessagesDispatched.WithLabelValues(channel).Inc()
	if invalid > 0 {
		s.metrics.InvalidRecipients.Add(float64(invalid))
	}
}

func (s *service) countFailure(channel string) {
	if s.metrics == nil {
		return
	}
	s.metrics.MessagesFailed.WithLabelValues(channel).Inc()
}

func (s *service) publish(ctx context.Context, eventType string, msg *model.Message) {
	if s.broker == nil {
		return
	}
	event := messaging.Event{Type: eventType, Payload: msg}
	if err := s.broker.Publish(ctx, eventChannel, event); err != nil {
		s.logger.Error(err, "failed to publish message event",
			"event", eventType, "message_id", msg.ID)
	}
}

func parseGroupIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, apperrors.Validation("invalid group id", "recipients")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func phones(contacts []*model.Contact) []string {
	out := make([]string, 0, len(contacts))
	for _, c := range contacts {
		if c.Phone != "" {
			out = append(out, c.Phone)
		}
	}
	return out
}

func emailAddresses(contacts []*model.Contact) []string {
	out := make([]string, 0, len(contacts))
	for _, c := range contacts {
		if c.Email != nil && *c.Email != "" {
			out = append(out, *c.Email)
		}
	}
	return out
}
