package model

import (
	"github.com/google/uuid"
)

// Group is a named recipient list within a church. Names are unique per
// church; a duplicate insert surfaces as a conflict.
type Group struct {
	Base
	ChurchID    uuid.UUID `db:"church_id" json:"church_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
