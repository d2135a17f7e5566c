package model

import (
	"github.com/google/uuid"
)

type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "active"
	ContactStatusInactive ContactStatus = "inactive"
	ContactStatusPending  ContactStatus = "pending"
)

type ContactRole string

const (
	ContactRoleMember ContactRole = "Member"
	ContactRoleLeader ContactRole = "Leader"
)

// Contact is a church's directory entry. BirthDay and BirthMonth are stored
// as numeric strings ("7", "12") so partial dates survive round-trips from
// spreadsheet imports.
type Contact struct {
	Base
	ChurchID   uuid.UUID  `db:"church_id" json:"church_id"`
	FullName   string     `db:"full_name" json:"full_name"`
	Phone      string     `db:"phone" json:"phone"`
	Email      *string    `db:"email" json:"email,omitempty"`
	GroupID    *uuid.UUID `db:"group_id" json:"group_id,omitempty"`
	Status     string     `db:"status" json:"status"`
	BirthDay   *string    `db:"birth_day" json:"birth_day,omitempty"`
	BirthMonth *string    `db:"birth_month" json:"birth_month,omitempty"`
	Role       string     `db:"role" json:"role"`
}

type CreateContactRequest struct {
	FullName   string  `json:"full_name" binding:"required"`
	Phone      string  `json:"phone" binding:"required"`
	Email      *string `json:"email" binding:"omitempty,email"`
	GroupID    *string `json:"group_id"`
	Status     string  `json:"status" binding:"omitempty,oneof=active inactive pending"`
	BirthDay   *string `json:"birth_day"`
	BirthMonth *string `json:"birth_month"`
	Role       string  `json:"role" binding:"omitempty,oneof=Member Leader"`
}

type UpdateContactRequest struct {
	FullName   *string `json:"full_name"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email" binding:"omitempty,email"`
	GroupID    *string `json:"group_id"`
	Status     *string `json:"status" binding:"omitempty,oneof=active inactive pending"`
	BirthDay   *string `json:"birth_day"`
	BirthMonth *string `json:"birth_month"`
	Role       *string `json:"role" binding:"omitempty,oneof=Member Leader"`
}

// BulkContactRow is one row of a bulk import. BirthMonth accepts month names
// ("March") as well as numbers; they are normalized before insert.
type BulkContactRow struct {
	FullName   string  `json:"full_name"`
	Phone      string  `json:"phone"`
	Email      *string `json:"email"`
	GroupID    *string `json:"group_id"`
	Status     string  `json:"status"`
	BirthDay   *string `json:"birth_day"`
	BirthMonth *string `json:"birth_month"`
	Role       string  `json:"role"`
}

type BulkImportRequest struct {
	Contacts []BulkContactRow `json:"contacts" binding:"required,min=1"`
}

// BulkImportResult summarizes a partial-failure-tolerant import.
type BulkImportResult struct {
	TotalProcessed int             `json:"total_processed"`
	TotalInserted  int             `json:"total_inserted"`
	TotalFailed    int             `json:"total_failed"`
	Failed         []BulkRowError  `json:"failed_contacts,omitempty"`
	Inserted       []*Contact      `json:"-"`
}

type BulkRowError struct {
	Row    BulkContactRow `json:"data"`
	Reason string         `json:"reason"`
}
