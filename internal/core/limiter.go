package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyConversions is returned when a conversion slot cannot be
// acquired within the configured wait time.
var ErrTooManyConversions = errors.New("too many concurrent conversions")

const (
	// DefaultMaxConcurrentConversions bounds how many conversions may run
	// at once when the configuration does not say otherwise.
	DefaultMaxConcurrentConversions = 4

	// DefaultMaxWaitTime is how long Acquire blocks for a slot before
	// giving up.
	DefaultMaxWaitTime = 30 * time.Second
)

// ConversionLimiter bounds concurrent conversions with a semaphore.
// Callers must pair every successful Acquire with a Release.
type ConversionLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.Mutex
	active int
}

// NewConversionLimiter creates a limiter allowing maxConcurrent
// simultaneous conversions. Non-positive arguments fall back to the
// defaults.
func NewConversionLimiter(maxConcurrent int, maxWait time.Duration) *ConversionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentConversions
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ConversionLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire blocks until a conversion slot is free, the wait time elapses,
// or ctx is cancelled.
func (l *ConversionLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-timer.C:
		return ErrTooManyConversions
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot acquired with Acquire.
func (l *ConversionLimiter) Release() {
	select {
	case <-l.semaphore:
		l.mu.Lock()
		l.active--
		l.mu.Unlock()
	default:
	}
}

// ActiveCount reports how many conversions currently hold a slot.
func (l *ConversionLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// MaxConcurrent reports the slot capacity.
func (l *ConversionLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// WaitForDrain blocks until no conversions are active or ctx is
// cancelled. Used during graceful shutdown.
func (l *ConversionLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
