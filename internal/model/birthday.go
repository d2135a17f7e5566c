package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BirthdayConfig holds a church's automatic birthday messaging settings.
// At most one row per church; SelectedChannels must be a subset of the
// referenced template's channels, enforced at write time.
type BirthdayConfig struct {
	Base
	ChurchID         uuid.UUID      `db:"church_id" json:"church_id"`
	Enabled          bool           `db:"enabled" json:"enabled"`
	TemplateID       *uuid.UUID     `db:"template_id" json:"template_id,omitempty"`
	SelectedChannels pq.StringArray `db:"selected_channels" json:"selected_channels"`
	SendTime         string         `db:"send_time" json:"send_time"`
}

type UpsertBirthdayConfigRequest struct {
	Enabled          bool     `json:"enabled"`
	TemplateID       string   `json:"template_id" binding:"required,uuid"`
	SelectedChannels []string `json:"selected_channels" binding:"required,min=1,dive,oneof=sms whatsapp email"`
	SendTime         string   `json:"send_time" binding:"omitempty,datetime=15:04"`
}

type BirthdayTestSendRequest struct {
	ContactID string `json:"contact_id" binding:"required,uuid"`
	Channel   string `json:"channel" binding:"required,oneof=sms email"`
}

// BirthdayDispatchResult summarizes one (church, template) group's outcome
// in a birthday job run.
type BirthdayDispatchResult struct {
	ChurchID   uuid.UUID              `json:"church_id"`
	TemplateID uuid.UUID              `json:"template_id"`
	SMS        *ChannelDispatchResult `json:"sms,omitempty"`
	Email      *ChannelDispatchResult `json:"email,omitempty"`
}

type ChannelDispatchResult struct {
	Success bool   `json:"success"`
	Sent    int    `json:"sent"`
	Error   string `json:"error,omitempty"`
}
