// Package notify is the console's notification sink. Workflow failures that
// are not tied to a single field (submission errors, failed page fetches)
// surface here instead of failing the process.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"atrium/pkg/requestcontext"
)

// Level classifies a notification for the UI.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelError   Level = "ERROR"
)

// Notification is a single fire-and-forget message. Nothing is returned to
// the emitter; the UI polls the feed.
type Notification struct {
	ID          string    `json:"id"`
	Level       Level     `json:"level"`
	Message     string    `json:"message"`
	Description string    `json:"description,omitempty"`
	At          time.Time `json:"at"`
}

// Notifier is the sink workflows emit into.
type Notifier interface {
	Notify(ctx context.Context, level Level, message, description string)
}

// Feed is a Notifier that logs every notification and retains the most
// recent ones in a ring for the UI to poll.
type Feed struct {
	logger *slog.Logger
	limit  int

	mu      sync.Mutex
	entries []Notification
}

// NewFeed creates a feed retaining up to limit notifications.
func NewFeed(logger *slog.Logger, limit int) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{logger: logger, limit: limit}
}

// Notify records the notification and logs it. Fire-and-forget: errors are
// impossible by design, the worst case is an evicted ring entry.
func (f *Feed) Notify(ctx context.Context, level Level, message, description string) {
	n := Notification{
		ID:          uuid.New().String(),
		Level:       level,
		Message:     message,
		Description: description,
		At:          requestcontext.Now(ctx),
	}

	f.mu.Lock()
	f.entries = append(f.entries, n)
	if len(f.entries) > f.limit {
		f.entries = f.entries[len(f.entries)-f.limit:]
	}
	f.mu.Unlock()

	logLevel := slog.LevelInfo
	if level == LevelError {
		logLevel = slog.LevelError
	}
	f.logger.Log(ctx, logLevel, "notification",
		"level", string(level),
		"message", message,
		"description", description,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// Recent returns the retained notifications, newest last.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.entries))
	copy(out, f.entries)
	return out
}
