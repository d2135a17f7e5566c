package email

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/churchcomm/admin-api/pkg/logger"
)

type fakeDialer struct {
	batches [][]*gomail.Message
	failOn  map[int]error // 1-based batch number
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.batches = append(d.batches, m)
	if err, ok := d.failOn[len(d.batches)]; ok {
		return err
	}
	return nil
}

func testService(dialer Dialer) *Service {
	return NewServiceWithDialer(Config{
		FromName:   "Grace Chapel",
		FromEmail:  "no-reply@gracechapel.test",
		BatchSize:  50,
		BatchDelay: time.Millisecond,
	}, dialer, logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: os.Stderr}))
}

func emails(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("member%d@example.com", i)
	}
	return out
}

func TestSendBulk_BatchesOfFifty(t *testing.T) {
	dialer := &fakeDialer{}
	svc := testService(dialer)

	res, err := svc.SendBulk(context.Background(), emails(120), "Service update", "hi", "<p>hi</p>")
	require.NoError(t, err)

	require.Len(t, dialer.batches, 3)
	assert.Len(t, dialer.batches[0], 50)
	assert.Len(t, dialer.batches[1], 50)
	assert.Len(t, dialer.batches[2], 20)

	assert.True(t, res.Success)
	assert.Equal(t, 120, res.TotalRecipients)
	assert.Equal(t, 3, res.SuccessfulBatches)
	assert.Equal(t, 0, res.FailedBatches)
}

func TestSendBulk_PartialFailure(t *testing.T) {
	dialer := &fakeDialer{failOn: map[int]error{2: errors.New("relay rejected")}}
	svc := testService(dialer)

	res, err := svc.SendBulk(context.Background(), emails(120), "Service update", "hi", "<p>hi</p>")
	require.NoError(t, err)

	// later batches still go out after a failure
	require.Len(t, dialer.batches, 3)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.SuccessfulBatches)
	assert.Equal(t, 1, res.FailedBatches)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "batch 2")
	assert.False(t, res.Results[1].Success)
	assert.Equal(t, "relay rejected", res.Results[1].Error)
}

func TestSendBulk_SingleBatchNoDelay(t *testing.T) {
	dialer := &fakeDialer{}
	svc := testService(dialer)

	start := time.Now()
	res, err := svc.SendBulk(context.Background(), emails(10), "Hello", "hi", "<p>hi</p>")
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	require.Len(t, dialer.batches, 1)
	assert.Len(t, dialer.batches[0], 10)
	assert.True(t, res.Success)
}

func TestSendCustom(t *testing.T) {
	dialer := &fakeDialer{}
	svc := testService(dialer)

	require.NoError(t, svc.SendCustom(context.Background(), "a@example.com", "Welcome", "welcome", "<p>welcome</p>"))
	require.Len(t, dialer.batches, 1)

	msg := dialer.batches[0][0]
	assert.Equal(t, []string{"a@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Welcome"}, msg.GetHeader("Subject"))
}
