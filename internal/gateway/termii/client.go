package termii

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/churchcomm/admin-api/pkg/circuitbreaker"
	apperrors "github.com/churchcomm/admin-api/pkg/errors"
	"github.com/churchcomm/admin-api/pkg/logger"
)

const (
	bulkSMSPath  = "/api/sms/send/bulk"
	whatsAppPath = "/api/sms/send"

	defaultChunkSize = 100
)

// Config carries the provider credentials and sender identity. It is built
// once at process start; the client never reads credentials from anywhere
// else.
type Config struct {
	BaseURL   string
	APIKey    string
	SenderID  string
	ChunkSize int
	Timeout   time.Duration
}

// Client talks to the Termii bulk messaging API.
type Client struct {
	cfg    Config
	http   *http.Client
	cb     *circuitbreaker.CircuitBreaker
	logger *logger.Logger
}

func NewClient(cfg Config, logger *logger.Logger) *Client {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		cb: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "termii",
			MaxFailures: 5,
			Cooldown:    60 * time.Second,
		}),
		logger: logger,
	}
}

// bulkPayload is the provider's request body shape.
type bulkPayload struct {
	APIKey  string      `json:"api_key"`
	To      interface{} `json:"to"`
	From    string      `json:"from"`
	SMS     string      `json:"sms"`
	Type    string      `json:"type"`
	Channel string      `json:"channel"`
}

// ProviderResponse is the provider's parsed reply for one request.
type ProviderResponse map[string]interface{}

// BulkResult summarizes a chunked bulk send.
type BulkResult struct {
	TotalChunks      int                `json:"total_chunks"`
	TotalRecipients  int                `json:"total_recipients"`
	InvalidNumbers   []string           `json:"invalid_numbers,omitempty"`
	SentChunks       int                `json:"sent_chunks"`
	StartedFromChunk int                `json:"started_from_chunk"`
	Responses        []ProviderResponse `json:"responses"`
}

// IsValidPhone reports whether phone matches one of the accepted Nigerian
// formats: "+234" plus 10 digits, "234" plus 10 digits, or "0" plus 10
// digits.
func IsValidPhone(phone string) bool {
	switch {
	case strings.HasPrefix(phone, "+234") && len(phone) == 14:
		return true
	case strings.HasPrefix(phone, "234") && len(phone) == 13:
		return true
	case strings.HasPrefix(phone, "0") && len(phone) == 11:
		return true
	}
	return false
}

// chunk splits recipients into slices of at most size.
func chunk(recipients []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(recipients); i += size {
		end := i + size
		if end > len(recipients) {
			end = len(recipients)
		}
		chunks = append(chunks, recipients[i:end])
	}
	return chunks
}

// SendBulkSMS filters invalid destinations, splits the remainder into
// chunks, and sends the chunks sequentially. startFromChunk is 1-based and
// lets a caller resume a partially-failed send; pass 1 for a full send.
// Invalid numbers are reported in the result, never silently dropped.
func (c *Client) SendBulkSMS(ctx context.Context, recipients []string, body string, startFromChunk int) (*BulkResult, error) {
	if startFromChunk < 1 {
		startFromChunk = 1
	}

	var invalid []string
	valid := make([]string, 0, len(recipients))
	for _, phone := range recipients {
		if IsValidPhone(phone) {
			valid = append(valid, phone)
		} else {
			invalid = append(invalid, phone)
		}
	}

	if len(invalid) > 0 {
		c.logger.Warn("filtered invalid phone numbers",
			"count", len(invalid))
	}

	if len(valid) == 0 {
		return nil, apperrors.Validation("no valid phone numbers to send to", "to")
	}

	chunks := chunk(valid, c.cfg.ChunkSize)
	result := &BulkResult{
		TotalChunks:      len(chunks),
		TotalRecipients:  len(valid),
		InvalidNumbers:   invalid,
		StartedFromChunk: startFromChunk,
	}

	for i := startFromChunk - 1; i < len(chunks); i++ {
		c.logger.Debug("sending sms chunk",
			"chunk", i+1, "of", len(chunks), "recipients", len(chunks[i]))

		resp, err := c.sendChunk(ctx, chunks[i], body)
		if err != nil {
			return nil, err
		}
		result.Responses = append(result.Responses, resp)
		result.SentChunks++
	}

	return result, nil
}

// SendBulkWhatsApp sends over the provider's whatsapp channel. The provider
// accepts the whole recipient list in one request on this path.
func (c *Client) SendBulkWhatsApp(ctx context.Context, recipients []string, body string) (*BulkResult, error) {
	var invalid []string
	valid := make([]string, 0, len(recipients))
	for _, phone := range recipients {
		if IsValidPhone(phone) {
			valid = append(valid, phone)
		} else {
			invalid = append(invalid, phone)
		}
	}

	if len(valid) == 0 {
		return nil, apperrors.Validation("no valid phone numbers to send to", "to")
	}

	payload := bulkPayload{
		APIKey:  c.cfg.APIKey,
		To:      stripPlus(valid),
		From:    c.cfg.SenderID,
		SMS:     body,
		Type:    "plain",
		Channel: "whatsapp",
	}

	resp, err := c.post(ctx, whatsAppPath, payload)
	if err != nil {
		return nil, err
	}

	return &BulkResult{
		TotalChunks:      1,
		TotalRecipients:  len(valid),
		InvalidNumbers:   invalid,
		SentChunks:       1,
		StartedFromChunk: 1,
		Responses:        []ProviderResponse{resp},
	}, nil
}

func (c *Client) sendChunk(ctx context.Context, to []string, body string) (ProviderResponse, error) {
	payload := bulkPayload{
		APIKey:  c.cfg.APIKey,
		To:      stripPlus(to),
		From:    c.cfg.SenderID,
		SMS:     body,
		Type:    "plain",
		Channel: "generic",
	}
	return c.post(ctx, bulkSMSPath, payload)
}

func (c *Client) post(ctx context.Context, path string, payload bulkPayload) (ProviderResponse, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var parsed ProviderResponse
	err = c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return apperrors.Network("termii", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return apperrors.Network("termii", err)
		}

		if jsonErr := json.Unmarshal(data, &parsed); jsonErr != nil {
			if resp.StatusCode >= 400 {
				return apperrors.Gateway("termii", resp.StatusCode, strings.TrimSpace(string(data)))
			}
			return apperrors.Gateway("termii", resp.StatusCode, "failed to parse provider response")
		}

		if resp.StatusCode >= 400 {
			msg := "bulk send failed"
			if m, ok := parsed["message"].(string); ok && m != "" {
				msg = m
			}
			return apperrors.Gateway("termii", resp.StatusCode, msg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

// stripPlus removes the leading "+" the provider rejects.
func stripPlus(numbers []string) []string {
	out := make([]string, len(numbers))
	for i, n := range numbers {
		out[i] = strings.TrimPrefix(n, "+")
	}
	return out
}
