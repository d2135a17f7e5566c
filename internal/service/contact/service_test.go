package contact

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
	"github.com/churchcomm/admin-api/pkg/logger"
)

type fakeContacts struct {
	repository.ContactRepository
	created []*model.Contact
	failIdx map[int]bool // indexes CreateBatch should reject
}

func (f *fakeContacts) Create(_ context.Context, c *model.Contact) error {
	c.ID = uuid.New()
	f.created = append(f.created, c)
	return nil
}

func (f *fakeContacts) CreateBatch(_ context.Context, contacts []*model.Contact) ([]*model.Contact, []int, error) {
	var inserted []*model.Contact
	var failed []int
	for i, c := range contacts {
		if f.failIdx[i] {
			failed = append(failed, i)
			continue
		}
		c.ID = uuid.New()
		inserted = append(inserted, c)
	}
	f.created = append(f.created, inserted...)
	return inserted, failed, nil
}

func newTestService(repo *fakeContacts) Service {
	return NewService(repo, logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: os.Stderr}))
}

func TestStandardizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"08012345678", "2348012345678"},
		{"0801-234-5678", "2348012345678"},
		{"+234 801 234 5678", "2348012345678"},
		{"2348012345678", "2348012345678"},
		{"(080) 1234 5678", "2348012345678"},
		{"0801234567", "0801234567"}, // too short for the local rewrite
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StandardizePhone(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeMonth(t *testing.T) {
	for in, want := range map[string]string{
		"March":    "3",
		"december": "12",
		"3":        "3",
		"03":       "3",
		"12":       "12",
		"":         "",
		" May ":    "5",
	} {
		got, err := NormalizeMonth(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	for _, in := range []string{"13", "0", "Smarch", "-1"} {
		_, err := NormalizeMonth(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestNormalizeDay(t *testing.T) {
	for in, want := range map[string]string{
		"7":  "7",
		"07": "7",
		"31": "31",
		"":   "",
	} {
		got, err := NormalizeDay(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	for _, in := range []string{"32", "0", "seven"} {
		_, err := NormalizeDay(in)
		assert.Error(t, err, "input %q", in)
	}
}

func strPtr(s string) *string { return &s }

func TestBulkImport(t *testing.T) {
	repo := &fakeContacts{}
	svc := newTestService(repo)
	churchID := uuid.New()

	rows := []model.BulkContactRow{
		{FullName: "Ada Obi", Phone: "08011111111", BirthMonth: strPtr("March"), BirthDay: strPtr("7")},
		{FullName: "", Phone: "08022222222"},              // missing name
		{FullName: "Ben Eze", Phone: ""},                  // missing phone
		{FullName: "Chi Ndu", Phone: "08033333333", BirthMonth: strPtr("Smarch")}, // bad month
		{FullName: "Dan Uche", Phone: "0804 444 4444"},
	}

	res, err := svc.BulkImport(context.Background(), churchID, rows)
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalProcessed)
	assert.Equal(t, 2, res.TotalInserted)
	assert.Equal(t, 3, res.TotalFailed)
	require.Len(t, res.Failed, 3)

	require.Len(t, repo.created, 2)
	assert.Equal(t, "2348011111111", repo.created[0].Phone)
	require.NotNil(t, repo.created[0].BirthMonth)
	assert.Equal(t, "3", *repo.created[0].BirthMonth)
	assert.Equal(t, "2348044444444", repo.created[1].Phone)
	assert.Equal(t, string(model.ContactStatusActive), repo.created[1].Status)
	assert.Equal(t, string(model.ContactRoleMember), repo.created[1].Role)
}

func TestBulkImport_InsertFailuresReported(t *testing.T) {
	repo := &fakeContacts{failIdx: map[int]bool{1: true}}
	svc := newTestService(repo)

	rows := []model.BulkContactRow{
		{FullName: "Ada Obi", Phone: "08011111111"},
		{FullName: "Ben Eze", Phone: "08022222222"},
	}
	res, err := svc.BulkImport(context.Background(), uuid.New(), rows)
	require.NoError(t, err)

	assert.Equal(t, 1, res.TotalInserted)
	assert.Equal(t, 1, res.TotalFailed)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "Ben Eze", res.Failed[0].Row.FullName)
	assert.Equal(t, "insert failed", res.Failed[0].Reason)
}

func TestCreate_AppliesDefaults(t *testing.T) {
	repo := &fakeContacts{}
	svc := newTestService(repo)

	c, err := svc.Create(context.Background(), uuid.New(), &model.CreateContactRequest{
		FullName: "Ada Obi",
		Phone:    "08011111111",
	})
	require.NoError(t, err)

	assert.Equal(t, "2348011111111", c.Phone)
	assert.Equal(t, string(model.ContactStatusActive), c.Status)
	assert.Equal(t, string(model.ContactRoleMember), c.Role)
}
