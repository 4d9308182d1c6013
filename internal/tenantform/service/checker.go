package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"

	"atrium/internal/tenantform/models"
	dErrors "atrium/pkg/domain-errors"
)

// ErrSuperseded reports that the checked value was replaced by newer input
// before the result arrived. The stale result must not be rendered.
var ErrSuperseded = errors.New("availability check superseded by newer input")

// AvailabilityFunc is the remote availability collaborator.
type AvailabilityFunc func(ctx context.Context, value string) (bool, error)

// Checker memoizes remote availability checks for one field instance.
//
// It guarantees three things: a value is checked at most once concurrently
// (singleflight), a settled verdict for a value is never refetched while the
// form instance lives (bounded content-addressed cache), and a result that
// arrives after newer input has been entered is discarded (monotonic
// sequence guard). Transport faults fail closed as "unavailable" but are not
// cached, so retyping the value retries the check.
type Checker struct {
	field models.Field
	check AvailabilityFunc
	cache *ristretto.Cache[string, bool]
	group singleflight.Group
	seq   atomic.Uint64
}

// NewChecker creates a checker for the given field with a bounded result cache.
func NewChecker(field models.Field, check AvailabilityFunc, maxEntries int64) (*Checker, error) {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, bool]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not build availability cache")
	}
	return &Checker{field: field, check: check, cache: cache}, nil
}

// Check resolves availability for value. It returns nil when the value is
// available, a FieldError with ReasonUnavailable when it is taken or the
// check failed on the wire, and ErrSuperseded when newer input invalidated
// this check while it was in flight.
func (c *Checker) Check(ctx context.Context, value string) error {
	token := c.seq.Add(1)

	if available, ok := c.cache.Get(value); ok {
		return c.verdict(available)
	}

	result, err, _ := c.group.Do(value, func() (any, error) {
		return c.check(ctx, value)
	})

	if c.seq.Load() != token {
		return ErrSuperseded
	}

	if err != nil {
		// Fail closed: a transport fault reads as unavailable. Not cached,
		// so the operator can retry by re-entering the value.
		return models.NewFieldError(c.field, models.ReasonUnavailable,
			"availability could not be confirmed")
	}

	available := result.(bool)
	c.cache.SetWithTTL(value, available, 1, time.Hour)
	return c.verdict(available)
}

func (c *Checker) verdict(available bool) error {
	if available {
		return nil
	}
	return models.NewFieldError(c.field, models.ReasonUnavailable, "already taken")
}

// Reset drops every memoized verdict and invalidates in-flight checks. Used
// when the form instance ends.
func (c *Checker) Reset() {
	c.seq.Add(1)
	c.cache.Clear()
}

// Wait flushes pending cache writes. Tests call this before asserting on
// memoization behavior.
func (c *Checker) Wait() {
	c.cache.Wait()
}
