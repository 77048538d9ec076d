package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling fn while the breaker is open
var ErrOpen = errors.New("circuit breaker is open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

type Settings struct {
	Name string
	// MaxFailures consecutive failures open the breaker.
	MaxFailures int
	// Timeout is how long the breaker stays open before a trial call.
	Timeout time.Duration
	// IsFailure decides which errors count; nil counts every error.
	IsFailure func(error) bool
	// IsIgnored errors leave the breaker untouched, neither failure nor success.
	IsIgnored func(error) bool
}

type CircuitBreaker struct {
	name        string
	maxFailures int
	timeout     time.Duration
	isFailure   func(error) bool
	isIgnored   func(error) bool
	failures    int
	openedAt    time.Time
	state       State
	now         func() time.Time
	mu          sync.Mutex
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	if settings.MaxFailures <= 0 {
		settings.MaxFailures = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	return &CircuitBreaker{
		name:        settings.Name,
		maxFailures: settings.MaxFailures,
		timeout:     settings.Timeout,
		isFailure:   settings.IsFailure,
		isIgnored:   settings.IsIgnored,
		state:       StateClosed,
		now:         time.Now,
	}
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	return cb.state
}

// refresh moves an expired open breaker to half-open; caller holds mu
func (cb *CircuitBreaker) refresh() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.timeout {
		cb.state = StateHalfOpen
	}
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	cb.refresh()
	if cb.state == StateOpen {
		cb.mu.Unlock()
		return ErrOpen
	}
	cb.mu.Unlock()

	err := fn()

	if err != nil && cb.isIgnored != nil && cb.isIgnored(err) {
		return err
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil && (cb.isFailure == nil || cb.isFailure(err)) {
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = StateOpen
			cb.openedAt = cb.now()
		}
		return err
	}

	cb.state = StateClosed
	cb.failures = 0
	return err
}
