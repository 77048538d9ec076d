package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBackend = errors.New("backend down")

func TestOpensAfterMaxFailures(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Settings{Name: "backend", MaxFailures: 2, Timeout: time.Minute})
	cb.now = func() time.Time { return now }

	fail := func() error { return errBackend }
	assert.ErrorIs(t, cb.Execute(fail), errBackend)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), errBackend)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)

	now = now.Add(time.Minute)
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Settings{MaxFailures: 1, Timeout: time.Second})
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errBackend })
	now = now.Add(time.Second)
	_ = cb.Execute(func() error { return errBackend })
	assert.Equal(t, StateOpen, cb.State())
}

func TestIsFailureFilter(t *testing.T) {
	notFound := errors.New("not found")
	cb := NewCircuitBreaker(Settings{
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return !errors.Is(err, notFound) },
	})

	assert.ErrorIs(t, cb.Execute(func() error { return notFound }), notFound)
	assert.Equal(t, StateClosed, cb.State())
}

func TestIgnoredErrorsLeaveCountUntouched(t *testing.T) {
	errBackend := errors.New("backend down")
	canceled := errors.New("canceled")
	cb := NewCircuitBreaker(Settings{
		MaxFailures: 2,
		IsIgnored:   func(err error) bool { return errors.Is(err, canceled) },
	})

	_ = cb.Execute(func() error { return errBackend })
	assert.ErrorIs(t, cb.Execute(func() error { return canceled }), canceled)
	_ = cb.Execute(func() error { return errBackend })
	assert.Equal(t, StateOpen, cb.State(), "an ignored error must not reset the failure count")
}
