package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpensAfterMaxFailures(t *testing.T) {
	cb := New(Settings{Name: "provider", MaxFailures: 2, Cooldown: time.Hour})
	boom := errors.New("boom")

	require.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	require.ErrorIs(t, cb.Execute(func() error { return boom }), boom)

	calls := 0
	err := cb.Execute(func() error { calls++; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.Zero(t, calls, "open breaker must not run the call")
}

func TestProbeAfterCooldownClosesOnSuccess(t *testing.T) {
	cb := New(Settings{Name: "provider", MaxFailures: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)

	time.Sleep(20 * time.Millisecond)

	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestFailedProbeReopens(t *testing.T) {
	cb := New(Settings{Name: "provider", MaxFailures: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	time.Sleep(20 * time.Millisecond)
	require.Error(t, cb.Execute(func() error { return errors.New("still down") }))

	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)
}
