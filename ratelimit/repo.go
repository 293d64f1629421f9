package ratelimit

import (
	"context"
	"time"
)

// Record is the persisted failure state of one client IP.
type Record struct {
	IPAddress     string
	Attempts      int64
	LastAttemptAt *time.Time // start of the current lockout window, UTC
}

// Repo persists Records. Every method must be a single atomic operation at
// the storage layer; the limiter never does read-modify-write itself.
type Repo interface {
	// Get returns nil, nil when no record exists for ip
	Get(ctx context.Context, ip string) (*Record, error)

	// Increment creates the record with Attempts=1 or adds one to Attempts.
	// LastAttemptAt is left untouched.
	Increment(ctx context.Context, ip string) error

	// MarkLockout stamps LastAttemptAt on an existing record
	MarkLockout(ctx context.Context, ip string, at time.Time) error

	// Restart sets Attempts=1 and LastAttemptAt=at on an existing record
	Restart(ctx context.Context, ip string, at time.Time) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, ip string) error
}
