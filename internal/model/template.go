package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Template is reusable message content. Content may contain HTML; SMS
// renderings strip the markup, email renderings keep it.
type Template struct {
	Base
	ChurchID  uuid.UUID      `db:"church_id" json:"church_id"`
	Name      string         `db:"name" json:"name"`
	Category  string         `db:"category" json:"category"`
	Content   string         `db:"content" json:"content"`
	Channels  pq.StringArray `db:"channels" json:"channels"`
	Variables pq.StringArray `db:"variables" json:"variables,omitempty"`
}

// SupportsChannel reports whether the template can be sent over ch.
func (t *Template) SupportsChannel(ch string) bool {
	for _, c := range t.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

type CreateTemplateRequest struct {
	Name      string   `json:"name" binding:"required"`
	Category  string   `json:"category" binding:"required"`
	Content   string   `json:"content" binding:"required"`
	Channels  []string `json:"channels" binding:"required,min=1,dive,oneof=sms whatsapp email"`
	Variables []string `json:"variables"`
}

type UpdateTemplateRequest struct {
	Name      *string  `json:"name"`
	Category  *string  `json:"category"`
	Content   *string  `json:"content"`
	Channels  []string `json:"channels" binding:"omitempty,min=1,dive,oneof=sms whatsapp email"`
	Variables []string `json:"variables"`
}
