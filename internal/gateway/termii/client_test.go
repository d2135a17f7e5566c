package termii

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/churchcomm/admin-api/pkg/errors"
	"github.com/churchcomm/admin-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: os.Stderr})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{
		BaseURL:  srv.URL,
		APIKey:   "test-key",
		SenderID: "CHURCHSMS",
	}, testLogger())
	return client, srv
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+2348012345678", true},
		{"2348012345678", true},
		{"08012345678", true},
		{"+234801234567", false},   // too short
		{"+23480123456789", false}, // too long
		{"234801234567", false},
		{"0801234567", false},
		{"+14155552671", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidPhone(tt.phone), "phone %q", tt.phone)
	}
}

func TestSendBulkSMS_ChunksSequentially(t *testing.T) {
	var requests []bulkPayload
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var p bulkPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		requests = append(requests, p)
		json.NewEncoder(w).Encode(map[string]string{"message": "ok", "message_id": fmt.Sprintf("m-%d", len(requests))})
	})
	client.cfg.ChunkSize = 2

	recipients := []string{
		"+2348011111111",
		"+2348022222222",
		"+2348033333333",
		"+2348044444444",
		"+2348055555555",
	}

	res, err := client.SendBulkSMS(context.Background(), recipients, "hello", 1)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalChunks)
	assert.Equal(t, 3, res.SentChunks)
	assert.Equal(t, 5, res.TotalRecipients)
	assert.Empty(t, res.InvalidNumbers)
	assert.Len(t, res.Responses, 3)
	require.Len(t, requests, 3)

	// leading "+" must be stripped before hitting the provider
	first, ok := requests[0].To.([]interface{})
	require.True(t, ok)
	assert.Equal(t, "2348011111111", first[0])
	assert.Equal(t, "test-key", requests[0].APIKey)
	assert.Equal(t, "CHURCHSMS", requests[0].From)
}

func TestSendBulkSMS_FiltersInvalidNumbers(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})

	res, err := client.SendBulkSMS(context.Background(), []string{
		"+2348011111111",
		"not-a-number",
		"12345",
	}, "hello", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, res.TotalRecipients)
	assert.ElementsMatch(t, []string{"not-a-number", "12345"}, res.InvalidNumbers)
}

func TestSendBulkSMS_AllInvalid(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.SendBulkSMS(context.Background(), []string{"bogus", "1"}, "hello", 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	assert.False(t, called, "must not call the provider with no valid recipients")
}

func TestSendBulkSMS_ResumeFromChunk(t *testing.T) {
	var count int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		count++
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	client.cfg.ChunkSize = 1

	recipients := []string{"+2348011111111", "+2348022222222", "+2348033333333"}
	res, err := client.SendBulkSMS(context.Background(), recipients, "hello", 3)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalChunks)
	assert.Equal(t, 1, res.SentChunks)
	assert.Equal(t, 3, res.StartedFromChunk)
	assert.Equal(t, 1, count)
}

func TestSendBulkSMS_ProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Insufficient balance"})
	})

	_, err := client.SendBulkSMS(context.Background(), []string{"+2348011111111"}, "hello", 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrGateway))
	assert.Contains(t, err.Error(), "Insufficient balance")
}

func TestSendBulkSMS_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection refused

	client := NewClient(Config{
		BaseURL:  srv.URL,
		APIKey:   "test-key",
		SenderID: "CHURCHSMS",
	}, testLogger())

	_, err := client.SendBulkSMS(context.Background(), []string{"+2348011111111"}, "hello", 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNetwork))
}

func TestSendBulkWhatsApp_SingleRequest(t *testing.T) {
	var count int
	var payload bulkPayload
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		count++
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	client.cfg.ChunkSize = 2

	recipients := []string{
		"+2348011111111", "+2348022222222", "+2348033333333",
		"+2348044444444", "+2348055555555",
	}
	res, err := client.SendBulkWhatsApp(context.Background(), recipients, "hello")
	require.NoError(t, err)

	assert.Equal(t, 1, count, "whatsapp sends in a single request")
	assert.Equal(t, 1, res.TotalChunks)
	assert.Equal(t, 5, res.TotalRecipients)
	assert.Equal(t, "whatsapp", payload.Channel)
}
