// Package circuit provides a two-state circuit breaker. The console fails
// closed on availability checks anyway, so when the identity API keeps
// failing the breaker lets calls fail fast instead of stacking timeouts.
package circuit

import "sync"

// Breaker counts consecutive failures. After failureThreshold consecutive
// failures it opens and callers should fail fast; after successThreshold
// consecutive successes on probe traffic it closes again.
type Breaker struct {
	mu               sync.Mutex
	open             bool
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures that open the circuit.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the consecutive successes that close it again.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// New creates a closed breaker. Defaults: 5 failures to open, 2 successes
// to close.
func New(opts ...Option) *Breaker {
	b := &Breaker{
		failureThreshold: 5,
		successThreshold: 2,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsOpen reports whether callers should fail fast.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// RecordFailure counts a failed call. It returns true when this failure
// tripped the circuit open.
func (b *Breaker) RecordFailure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.successCount = 0
	if !b.open && b.failureCount >= b.failureThreshold {
		b.open = true
		return true
	}
	return false
}

// RecordSuccess counts a successful call. It returns true when this success
// closed a previously open circuit.
func (b *Breaker) RecordSuccess() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.open = false
			b.failureCount = 0
			b.successCount = 0
			return true
		}
		return false
	}
	b.failureCount = 0
	return false
}

// Reset closes the breaker and zeroes all counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
	b.failureCount = 0
	b.successCount = 0
}
