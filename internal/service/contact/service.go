package contact

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
	apperrors "github.com/churchcomm/admin-api/pkg/errors"
	"github.com/churchcomm/admin-api/pkg/logger"
)

// Service manages a church's contact directory.
type Service interface {
	Create(ctx context.Context, churchID uuid.UUID, req *model.CreateContactRequest) (*model.Contact, error)
	Get(ctx context.Context, churchID, id uuid.UUID) (*model.Contact, error)
	List(ctx context.Context, churchID uuid.UUID) ([]*model.Contact, error)
	Update(ctx context.Context, churchID, id uuid.UUID, req *model.UpdateContactRequest) (*model.Contact, error)
	Delete(ctx context.Context, churchID, id uuid.UUID) error
	DeleteBatch(ctx context.Context, churchID uuid.UUID, ids []uuid.UUID) (int64, error)
	BulkImport(ctx context.Context, churchID uuid.UUID, rows []model.BulkContactRow) (*model.BulkImportResult, error)
}

type service struct {
	contacts repository.ContactRepository
	logger   *logger.Logger
}

func NewService(contacts repository.ContactRepository, logger *logger.Logger) Service {
	return &service{contacts: contacts, logger: logger}
}

var nonDigitRe = regexp.MustCompile(`\D`)

// StandardizePhone normalizes imported phone numbers: strips every
// non-digit, then rewrites the local "0xxxxxxxxxx" form to the
// international "234xxxxxxxxxx" form.
func StandardizePhone(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	if strings.HasPrefix(digits, "0") && len(digits) == 11 {
		return "234" + digits[1:]
	}
	return digits
}

var monthNames = map[string]string{
	"january": "1", "february": "2", "march": "3", "april": "4",
	"may": "5", "june": "6", "july": "7", "august": "8",
	"september": "9", "october": "10", "november": "11", "december": "12",
}

// NormalizeMonth accepts a month name ("March") or number ("3", "03") and
// returns the numeric form without a leading zero. Empty input stays empty;
// anything unrecognized is an error.
func NormalizeMonth(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	if m, ok := monthNames[strings.ToLower(trimmed)]; ok {
		return m, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 || n > 12 {
		return "", apperrors.Validation("invalid birth month", "birth_month")
	}
	return strconv.Itoa(n), nil
}

// NormalizeDay strips a leading zero so stored days compare equal to the
// day the birthday job queries with.
func NormalizeDay(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 || n > 31 {
		return "", apperrors.Validation("invalid birth day", "birth_day")
	}
	return strconv.Itoa(n), nil
}

func (s *service) Create(ctx context.Context, churchID uuid.UUID, req *model.CreateContactRequest) (*model.Contact, error) {
	contact, err := buildContact(churchID, model.BulkContactRow{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Email:      req.Email,
		GroupID:    req.GroupID,
		Status:     req.Status,
		BirthDay:   req.BirthDay,
		BirthMonth: req.BirthMonth,
		Role:       req.Role,
	})
	if err != nil {
		return nil, err
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *service) Get(ctx context.Context, churchID, id uuid.UUID) (*model.Contact, error) {
	return s.contacts.Get(ctx, churchID, id)
}

func (s *service) List(ctx context.Context, churchID uuid.UUID) ([]*model.Contact, error) {
	return s.contacts.List(ctx, churchID)
}

func (s *service) Update(ctx context.Context, churchID, id uuid.UUID, req *model.UpdateContactRequest) (*model.Contact, error) {
	contact, err := s.contacts.Get(ctx, churchID, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		contact.FullName = *req.FullName
	}
	if req.Phone != nil {
		contact.Phone = StandardizePhone(*req.Phone)
	}
	if req.Email != nil {
		contact.Email = req.Email
	}
	if req.GroupID != nil {
		if *req.GroupID == "" {
			contact.GroupID = nil
		} else {
			gid, err := uuid.Parse(*req.GroupID)
			if err != nil {
				return nil, apperrors.Validation("invalid group id", "group_id")
			}
			contact.GroupID = &gid
		}
	}
	if req.Status != nil {
		contact.Status = *req.Status
	}
	if req.BirthDay != nil {
		day, err := NormalizeDay(*req.BirthDay)
		if err != nil {
			return nil, err
		}
		contact.BirthDay = &day
	}
	if req.BirthMonth != nil {
		month, err := NormalizeMonth(*req.BirthMonth)
		if err != nil {
			return nil, err
		}
		contact.BirthMonth = &month
	}
	if req.Role != nil {
		contact.Role = *req.Role
	}

	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *service) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	return s.contacts.Delete(ctx, churchID, id)
}

func (s *service) DeleteBatch(ctx context.Context, churchID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.Validation("no contact ids given", "ids")
	}
	return s.contacts.DeleteBatch(ctx, churchID, ids)
}

// BulkImport inserts what it can and reports what it cannot. Rows that
// fail validation are returned with a reason; valid rows are inserted in
// one batch and per-row insert failures are folded into the same report.
func (s *service) BulkImport(ctx context.Context, churchID uuid.UUID, rows []model.BulkContactRow) (*model.BulkImportResult, error) {
	result := &model.BulkImportResult{TotalProcessed: len(rows)}

	valid := make([]*model.Contact, 0, len(rows))
	validRows := make([]model.BulkContactRow, 0, len(rows))
	for _, row := range rows {
		contact, err := buildContact(churchID, row)
		if err != nil {
			result.Failed = append(result.Failed, model.BulkRowError{Row: row, Reason: err.Error()})
			continue
		}
		valid = append(valid, contact)
		validRows = append(validRows, row)
	}

	if len(valid) > 0 {
		inserted, failedIdx, err := s.contacts.CreateBatch(ctx, valid)
		if err != nil {
			return nil, err
		}
		for _, i := range failedIdx {
			result.Failed = append(result.Failed, model.BulkRowError{
				Row:    validRows[i],
				Reason: "insert failed",
			})
		}
		result.Inserted = inserted
		result.TotalInserted = len(inserted)
	}

	result.TotalFailed = len(result.Failed)
	s.logger.Info("bulk contact import finished",
		"church_id", churchID,
		"processed", result.TotalProcessed,
		"inserted", result.TotalInserted,
		"failed", result.TotalFailed)
	return result, nil
}

func buildContact(churchID uuid.UUID, row model.BulkContactRow) (*model.Contact, error) {
	if strings.TrimSpace(row.FullName) == "" {
		return nil, apperrors.Validation("full name is required", "full_name")
	}
	phone := StandardizePhone(row.Phone)
	if phone == "" {
		return nil, apperrors.Validation("phone is required", "phone")
	}

	contact := &model.Contact{
		ChurchID: churchID,
		FullName: strings.TrimSpace(row.FullName),
		Phone:    phone,
		Email:    row.Email,
		Status:   row.Status,
		Role:     row.Role,
	}
	if contact.Status == "" {
		contact.Status = string(model.ContactStatusActive)
	}
	if contact.Role == "" {
		contact.Role = string(model.ContactRoleMember)
	}

	if row.GroupID != nil && *row.GroupID != "" {
		gid, err := uuid.Parse(*row.GroupID)
		if err != nil {
			return nil, apperrors.Validation("invalid group id", "group_id")
		}
		contact.GroupID = &gid
	}

	if row.BirthDay != nil {
		day, err := NormalizeDay(*row.BirthDay)
		if err != nil {
			return nil, err
		}
		if day != "" {
			contact.BirthDay = &day
		}
	}

	if row.BirthMonth != nil {
		month, err := NormalizeMonth(*row.BirthMonth)
		if err != nil {
			return nil, err
		}
		if month != "" {
			contact.BirthMonth = &month
		}
	}

	return contact, nil
}
