package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MessageStatus string

const (
	MessageStatusDraft     MessageStatus = "draft"
	MessageStatusScheduled MessageStatus = "scheduled"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusFailed    MessageStatus = "failed"
)

type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

// IsValidChannel reports whether ch is one of the supported send channels.
func IsValidChannel(ch string) bool {
	switch Channel(ch) {
	case ChannelSMS, ChannelWhatsApp, ChannelEmail:
		return true
	}
	return false
}

// Message is one campaign send. Recipients holds group ids; the recipient
// count and cost are computed at creation time from the resolved contacts.
type Message struct {
	Base
	ChurchID        uuid.UUID      `db:"church_id" json:"church_id"`
	Body            string         `db:"body" json:"body"`
	Channel         string         `db:"channel" json:"channel"`
	Recipients      pq.StringArray `db:"recipients" json:"recipients"`
	Status          string         `db:"status" json:"status"`
	ScheduleAt      *time.Time     `db:"schedule_at" json:"schedule_at,omitempty"`
	SentAt          *time.Time     `db:"sent_at" json:"sent_at,omitempty"`
	Description     string         `db:"description" json:"description,omitempty"`
	TotalRecipients int            `db:"total_recipients" json:"total_recipients"`
	TotalCost       int            `db:"total_cost" json:"total_cost"`
}

// RecipientGroupIDs parses the stored group id strings.
func (m *Message) RecipientGroupIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m.Recipients))
	for _, s := range m.Recipients {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

type CreateMessageRequest struct {
	Body        string     `json:"message" binding:"required"`
	Channel     string     `json:"channel" binding:"required,oneof=sms whatsapp email"`
	Recipients  []string   `json:"recipients" binding:"required,min=1,dive,uuid"`
	Status      string     `json:"status" binding:"required,oneof=draft scheduled sent"`
	ScheduleAt  *time.Time `json:"schedule_at"`
	Description string     `json:"description" binding:"max=2000"`
}

type UpdateMessageRequest struct {
	Body        *string    `json:"message"`
	Channel     *string    `json:"channel" binding:"omitempty,oneof=sms whatsapp email"`
	Recipients  []string   `json:"recipients" binding:"omitempty,min=1,dive,uuid"`
	Status      *string    `json:"status" binding:"omitempty,oneof=draft scheduled sent failed"`
	ScheduleAt  *time.Time `json:"schedule_at"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
}

// MessageFilter narrows message listings.
type MessageFilter struct {
	Status  string `form:"status" binding:"omitempty,oneof=draft scheduled sent failed"`
	Channel string `form:"channel" binding:"omitempty,oneof=sms whatsapp email"`
}
