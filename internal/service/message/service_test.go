package message

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchcomm/admin-api/internal/email"
	"github.com/churchcomm/admin-api/internal/gateway/termii"
	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
	apperrors "github.com/churchcomm/admin-api/pkg/errors"
	"github.com/churchcomm/admin-api/pkg/logger"
)

type fakeMessages struct {
	repository.MessageRepository
	store map[uuid.UUID]*model.Message
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{store: map[uuid.UUID]*model.Message{}}
}

// Create assigns the id like the postgres repository does.
func (f *fakeMessages) Create(_ context.Context, m *model.Message) error {
	m.ID = uuid.New()
	f.store[m.ID] = m
	return nil
}

func (f *fakeMessages) Get(_ context.Context, churchID, id uuid.UUID) (*model.Message, error) {
	m, ok := f.store[id]
	if !ok || m.ChurchID != churchID {
		return nil, apperrors.NotFound("message", nil)
	}
	return m, nil
}

func (f *fakeMessages) GetAny(_ context.Context, id uuid.UUID) (*model.Message, error) {
	m, ok := f.store[id]
	if !ok {
		return nil, apperrors.NotFound("message", nil)
	}
	return m, nil
}

func (f *fakeMessages) Update(_ context.Context, m *model.Message) error {
	f.store[m.ID] = m
	return nil
}

func (f *fakeMessages) UpdateStatus(_ context.Context, id uuid.UUID, status model.MessageStatus, sentAt *time.Time) error {
	m, ok := f.store[id]
	if !ok {
		return apperrors.NotFound("message", nil)
	}
	m.Status = string(status)
	m.SentAt = sentAt
	return nil
}

type fakeContacts struct {
	repository.ContactRepository
	active []*model.Contact
}

func (f *fakeContacts) ListActiveByGroups(_ context.Context, _ uuid.UUID, _ []uuid.UUID) ([]*model.Contact, error) {
	return f.active, nil
}

type fakeGateway struct {
	smsCalls      int
	whatsappCalls int
	lastTo        []string
	err           error
}

func (f *fakeGateway) SendBulkSMS(_ context.Context, to []string, _ string, _ int) (*termii.BulkResult, error) {
	f.smsCalls++
	f.lastTo = to
	if f.err != nil {
		return nil, f.err
	}
	return &termii.BulkResult{TotalRecipients: len(to), SentChunks: 1, TotalChunks: 1}, nil
}

func (f *fakeGateway) SendBulkWhatsApp(_ context.Context, to []string, _ string) (*termii.BulkResult, error) {
	f.whatsappCalls++
	f.lastTo = to
	if f.err != nil {
		return nil, f.err
	}
	return &termii.BulkResult{TotalRecipients: len(to), SentChunks: 1, TotalChunks: 1}, nil
}

type fakeEmail struct {
	calls  int
	lastTo []string
	result *email.BulkEmailResult
	err    error
}

func (f *fakeEmail) SendBulk(_ context.Context, to []string, _, _, _ string) (*email.BulkEmailResult, error) {
	f.calls++
	f.lastTo = to
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &email.BulkEmailResult{Success: true, TotalRecipients: len(to), SuccessfulBatches: 1}, nil
}

type fakeScheduler struct {
	scheduled []uuid.UUID
	runAt     time.Time
}

func (f *fakeScheduler) ScheduleMessage(_ context.Context, id uuid.UUID, runAt time.Time) error {
	f.scheduled = append(f.scheduled, id)
	f.runAt = runAt
	return nil
}

func strPtr(s string) *string { return &s }

func contact(name, phone string, emailAddr *string) *model.Contact {
	c := &model.Contact{
		FullName: name,
		Phone:    phone,
		Email:    emailAddr,
		Status:   string(model.ContactStatusActive),
	}
	c.ID = uuid.New()
	return c
}

type fixture struct {
	svc       Service
	messages  *fakeMessages
	contacts  *fakeContacts
	gateway   *fakeGateway
	email     *fakeEmail
	scheduler *fakeScheduler
}

func newFixture(active []*model.Contact) *fixture {
	f := &fixture{
		messages:  newFakeMessages(),
		contacts:  &fakeContacts{active: active},
		gateway:   &fakeGateway{},
		email:     &fakeEmail{},
		scheduler: &fakeScheduler{},
	}
	f.svc = NewService(f.messages, f.contacts, f.scheduler, f.gateway, f.email, nil,
		DefaultCosts, nil,
		logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: os.Stderr}))
	return f
}

var churchID = uuid.New()

func createRequest(status string) *model.CreateMessageRequest {
	return &model.CreateMessageRequest{
		Body:       "Service starts at 9am",
		Channel:    "sms",
		Recipients: []string{uuid.NewString()},
		Status:     status,
	}
}

func TestCreate_Draft(t *testing.T) {
	f := newFixture([]*model.Contact{
		contact("Ada", "+2348011111111", nil),
		contact("Ben", "+2348022222222", nil),
	})

	msg, res, err := f.svc.Create(context.Background(), churchID, createRequest("draft"))
	require.NoError(t, err)

	assert.Nil(t, res)
	assert.Equal(t, "draft", msg.Status)
	assert.Equal(t, 2, msg.TotalRecipients)
	assert.Equal(t, 6, msg.TotalCost) // 2 recipients at 3 credits
	assert.Zero(t, f.gateway.smsCalls)
	assert.Empty(t, f.scheduler.scheduled)
}

func TestCreate_Scheduled(t *testing.T) {
	f := newFixture([]*model.Contact{contact("Ada", "+2348011111111", nil)})

	req := createRequest("scheduled")
	at := time.Now().Add(2 * time.Hour)
	req.ScheduleAt = &at

	msg, _, err := f.svc.Create(context.Background(), churchID, req)
	require.NoError(t, err)

	assert.Equal(t, "scheduled", msg.Status)
	require.Len(t, f.scheduler.scheduled, 1)
	assert.Equal(t, msg.ID, f.scheduler.scheduled[0])
	assert.WithinDuration(t, at, f.scheduler.runAt, time.Second)
	assert.Zero(t, f.gateway.smsCalls, "scheduled messages are not dispatched at create")
}

func TestCreate_ScheduledValidation(t *testing.T) {
	f := newFixture(nil)

	req := createRequest("scheduled")
	_, _, err := f.svc.Create(context.Background(), churchID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest), "missing schedule_at")

	past := time.Now().Add(-time.Hour)
	req.ScheduleAt = &past
	_, _, err = f.svc.Create(context.Background(), churchID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest), "past schedule_at")
}

func TestCreate_SentRejectsScheduleAt(t *testing.T) {
	f := newFixture(nil)

	req := createRequest("sent")
	at := time.Now().Add(time.Hour)
	req.ScheduleAt = &at

	_, _, err := f.svc.Create(context.Background(), churchID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestCreate_SentDispatchesImmediately(t *testing.T) {
	f := newFixture([]*model.Contact{
		contact("Ada", "+2348011111111", nil),
		contact("Ben", "+2348022222222", nil),
	})

	msg, res, err := f.svc.Create(context.Background(), churchID, createRequest("sent"))
	require.NoError(t, err)

	assert.Equal(t, "sent", msg.Status)
	require.NotNil(t, msg.SentAt)
	assert.Equal(t, 1, f.gateway.smsCalls)
	require.NotNil(t, res)
	require.NotNil(t, res.Gateway)
	assert.Equal(t, 2, res.Gateway.TotalRecipients)
}

func TestCreate_SentFailureMarksFailed(t *testing.T) {
	f := newFixture([]*model.Contact{contact("Ada", "+2348011111111", nil)})
	f.gateway.err = apperrors.Gateway("termii", 500, "provider down")

	msg, _, err := f.svc.Create(context.Background(), churchID, createRequest("sent"))
	require.Error(t, err)
	assert.Equal(t, "failed", msg.Status)
	assert.Nil(t, msg.SentAt, "failed message must not carry a sent timestamp")
	assert.Equal(t, "failed", f.messages.store[msg.ID].Status)
}

func TestCreate_DeduplicatesRecipients(t *testing.T) {
	shared := "+2348011111111"
	f := newFixture([]*model.Contact{
		contact("Ada", shared, nil),
		contact("Ada Again", shared, nil),
		contact("No Phone A", "", strPtr("x@example.com")),
		contact("No Phone B", "", strPtr("x@example.com")),
		contact("No Contact Info", "", nil),
	})

	msg, _, err := f.svc.Create(context.Background(), churchID, createRequest("draft"))
	require.NoError(t, err)

	// phone dup collapses, email dup collapses, bare contact stays
	assert.Equal(t, 3, msg.TotalRecipients)
}

func TestCreate_EmailChannelCost(t *testing.T) {
	f := newFixture([]*model.Contact{
		contact("Ada", "+2348011111111", strPtr("ada@example.com")),
		contact("Ben", "+2348022222222", strPtr("ben@example.com")),
	})

	req := createRequest("sent")
	req.Channel = "email"

	msg, res, err := f.svc.Create(context.Background(), churchID, req)
	require.NoError(t, err)

	assert.Equal(t, 4, msg.TotalCost) // 2 recipients at 2 credits
	assert.Equal(t, 1, f.email.calls)
	assert.ElementsMatch(t, []string{"ada@example.com", "ben@example.com"}, f.email.lastTo)
	require.NotNil(t, res.Email)
}

func TestSendScheduled(t *testing.T) {
	f := newFixture([]*model.Contact{contact("Ada", "+2348011111111", nil)})

	msg := &model.Message{
		ChurchID:   churchID,
		Body:       "Reminder",
		Channel:    "sms",
		Recipients: []string{uuid.NewString()},
		Status:     "scheduled",
	}
	require.NoError(t, f.messages.Create(context.Background(), msg))

	require.NoError(t, f.svc.SendScheduled(context.Background(), msg.ID))

	stored := f.messages.store[msg.ID]
	assert.Equal(t, "sent", stored.Status)
	require.NotNil(t, stored.SentAt)
	assert.Equal(t, 1, f.gateway.smsCalls)
}

func TestSendScheduled_SkipsFinalized(t *testing.T) {
	f := newFixture([]*model.Contact{contact("Ada", "+2348011111111", nil)})

	for _, status := range []string{"sent", "failed"} {
		msg := &model.Message{ChurchID: churchID, Channel: "sms", Status: status}
		require.NoError(t, f.messages.Create(context.Background(), msg))
		require.NoError(t, f.svc.SendScheduled(context.Background(), msg.ID))
	}
	assert.Zero(t, f.gateway.smsCalls, "finalized messages must not be re-dispatched")
}

func TestSendScheduled_FailureMarksFailed(t *testing.T) {
	f := newFixture([]*model.Contact{contact("Ada", "+2348011111111", nil)})
	f.gateway.err = errors.New("boom")

	msg := &model.Message{
		ChurchID:   churchID,
		Channel:    "sms",
		Recipients: []string{uuid.NewString()},
		Status:     "scheduled",
	}
	require.NoError(t, f.messages.Create(context.Background(), msg))

	require.Error(t, f.svc.SendScheduled(context.Background(), msg.ID))
	assert.Equal(t, "failed", f.messages.store[msg.ID].Status)
}

func TestDispatch_WhatsAppSingleRequest(t *testing.T) {
	f := newFixture([]*model.Contact{
		contact("Ada", "+2348011111111", nil),
		contact("Ben", "+2348022222222", nil),
	})

	req := createRequest("sent")
	req.Channel = "whatsapp"

	msg, res, err := f.svc.Create(context.Background(), churchID, req)
	require.NoError(t, err)

	assert.Equal(t, 1, f.gateway.whatsappCalls)
	assert.Zero(t, f.gateway.smsCalls)
	assert.Equal(t, 6, msg.TotalCost)
	require.NotNil(t, res.Gateway)
}

func TestUpdate_RecomputesCost(t *testing.T) {
	f := newFixture([]*model.Contact{
		contact("Ada", "+2348011111111", nil),
		contact("Ben", "+2348022222222", nil),
	})

	msg, _, err := f.svc.Create(context.Background(), churchID, createRequest("draft"))
	require.NoError(t, err)
	assert.Equal(t, 6, msg.TotalCost)

	ch := "email"
	updated, err := f.svc.Update(context.Background(), churchID, msg.ID, &model.UpdateMessageRequest{Channel: &ch})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.TotalCost)
}
