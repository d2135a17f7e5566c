package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/churchcomm/admin-api/pkg/logger"
)

const (
	defaultBatchSize  = 50
	defaultBatchDelay = time.Second
)

// Config carries the SMTP relay settings and sender identity.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromName   string
	FromEmail  string
	BatchSize  int
	BatchDelay time.Duration
}

// Dialer sends a batch of prepared messages over one SMTP session.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Service sends transactional and bulk email.
type Service struct {
	cfg    Config
	dialer Dialer
	logger *logger.Logger
}

// BatchResult records the outcome of one batch within a bulk send.
type BatchResult struct {
	Batch      int    `json:"batch"`
	Recipients int    `json:"recipients"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// BulkEmailResult summarizes a bulk send. Success is true only when every
// batch went through.
type BulkEmailResult struct {
	Success           bool          `json:"success"`
	TotalRecipients   int           `json:"total_recipients"`
	SuccessfulBatches int           `json:"successful_batches"`
	FailedBatches     int           `json:"failed_batches"`
	Results           []BatchResult `json:"results"`
	Errors            []string      `json:"errors,omitempty"`
}

func NewService(cfg Config, logger *logger.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = defaultBatchDelay
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Service{cfg: cfg, dialer: dialer, logger: logger}
}

// NewServiceWithDialer is used by tests to substitute the SMTP transport.
func NewServiceWithDialer(cfg Config, dialer Dialer, logger *logger.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = defaultBatchDelay
	}
	return &Service{cfg: cfg, dialer: dialer, logger: logger}
}

func (s *Service) message(to, subject, text, html string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromEmail, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	if html != "" {
		m.AddAlternative("text/html", html)
	}
	return m
}

// SendCustom delivers one message to a single recipient.
func (s *Service) SendCustom(ctx context.Context, to, subject, text, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(s.message(to, subject, text, html)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendBulk delivers the same message to every recipient, in batches with a
// pause between them so the relay is not flooded. A failing batch is
// recorded and the remaining batches still go out.
func (s *Service) SendBulk(ctx context.Context, recipients []string, subject, text, html string) (*BulkEmailResult, error) {
	result := &BulkEmailResult{TotalRecipients: len(recipients)}

	for i := 0; i < len(recipients); i += s.cfg.BatchSize {
		end := i + s.cfg.BatchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		batch := recipients[i:end]
		batchNum := i/s.cfg.BatchSize + 1

		if i > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.cfg.BatchDelay):
			}
		}

		msgs := make([]*gomail.Message, len(batch))
		for j, to := range batch {
			msgs[j] = s.message(to, subject, text, html)
		}

		br := BatchResult{Batch: batchNum, Recipients: len(batch)}
		if err := s.dialer.DialAndSend(msgs...); err != nil {
			br.Error = err.Error()
			result.FailedBatches++
			result.Errors = append(result.Errors, fmt.Sprintf("batch %d: %v", batchNum, err))
			s.logger.Error(err, "email batch failed", "batch", batchNum, "recipients", len(batch))
		} else {
			br.Success = true
			result.SuccessfulBatches++
			s.logger.Debug("email batch sent", "batch", batchNum, "recipients", len(batch))
		}
		result.Results = append(result.Results, br)
	}

	result.Success = result.FailedBatches == 0
	return result, nil
}
