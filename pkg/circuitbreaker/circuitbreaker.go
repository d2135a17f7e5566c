// Package circuitbreaker guards calls to outbound providers. After enough
// consecutive failures the breaker opens and rejects calls until a cooldown
// elapses, then lets a single probe call through to test recovery.
package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker rejects a call without running it.
var ErrOpen = errors.New("circuit breaker is open")

const (
	defaultMaxFailures = 5
	defaultCooldown    = 60 * time.Second
)

type Settings struct {
	Name        string
	MaxFailures int           // consecutive failures before the breaker opens
	Cooldown    time.Duration // how long the breaker stays open
}

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

type CircuitBreaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mu       sync.Mutex
	state    state
	failures int
	openedAt time.Time
}

func New(settings Settings) *CircuitBreaker {
	if settings.MaxFailures <= 0 {
		settings.MaxFailures = defaultMaxFailures
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = defaultCooldown
	}
	return &CircuitBreaker{
		name:        settings.Name,
		maxFailures: settings.MaxFailures,
		cooldown:    settings.Cooldown,
	}
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return fmt.Errorf("%s: %w", cb.name, ErrOpen)
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == stateOpen {
		if time.Since(cb.openedAt) < cb.cooldown {
			return false
		}
		cb.state = stateHalfOpen
	}
	return true
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		// a failed probe re-opens immediately
		if cb.failures >= cb.maxFailures || cb.state == stateHalfOpen {
			cb.state = stateOpen
			cb.openedAt = time.Now()
		}
		return
	}
	cb.failures = 0
	cb.state = stateClosed
}
