package worker

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchcomm/admin-api/pkg/logger"
)

func TestNextRun(t *testing.T) {
	trigger, err := NewBirthdayTrigger(nil, "08:10", time.UTC,
		logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: os.Stderr}))
	require.NoError(t, err)

	// before the window: fires today
	now := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	next := trigger.NextRun(now)
	assert.Equal(t, time.Date(2026, 3, 14, 8, 10, 0, 0, time.UTC), next)

	// at the window: fires tomorrow
	now = time.Date(2026, 3, 14, 8, 10, 0, 0, time.UTC)
	next = trigger.NextRun(now)
	assert.Equal(t, time.Date(2026, 3, 15, 8, 10, 0, 0, time.UTC), next)

	// after the window: fires tomorrow
	now = time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	next = trigger.NextRun(now)
	assert.Equal(t, time.Date(2026, 3, 15, 8, 10, 0, 0, time.UTC), next)
}

func TestNewBirthdayTrigger_InvalidTime(t *testing.T) {
	_, err := NewBirthdayTrigger(nil, "25:99", time.UTC,
		logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: os.Stderr}))
	assert.Error(t, err)
}
