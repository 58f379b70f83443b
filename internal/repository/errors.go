package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a row does not exist or is outside the
	// caller's visible scope; the two causes are deliberately merged.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned on unique-key violations (duplicate email,
	// re-added team member).
	ErrAlreadyExists = errors.New("already exists")

	// ErrVersionConflict is returned when an optimistic version check fails;
	// the write applied nothing.
	ErrVersionConflict = errors.New("version conflict")
)

// isDuplicateKeyError detects unique-constraint violations across the
// PostgreSQL and SQLite drivers.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "23505")
}

const readRetryAttempts = 2

// readWithRetry retries a read-only lookup a bounded number of times on
// transient storage errors. Writes, and in particular the version
// compare-and-set, must never go through this path.
func readWithRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var result T
	var err error
	for attempt := 0; ; attempt++ {
		result, err = fn()
		if err == nil || attempt >= readRetryAttempts || !isTransient(err) {
			return result, err
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
	}
}

// isTransient reports whether an error looks like a recoverable storage
// failure rather than a definitive answer.
func isTransient(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrVersionConflict),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe")
}
