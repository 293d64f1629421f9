package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
	"github.com/jrsteele09/go-auth-bridge/ratelimit"
)

var _ ratelimit.Repo = (*RateLimitRepo)(nil)

// RateLimitRepo is the SQLite implementation of ratelimit.Repo.
type RateLimitRepo struct {
	db *DB
}

func NewRateLimitRepo(db *DB) *RateLimitRepo {
	return &RateLimitRepo{db: db}
}

func (r *RateLimitRepo) Get(ctx context.Context, ip string) (*ratelimit.Record, error) {
	const query = `SELECT attempts, last_attempt_at FROM rate_limits WHERE ip_address = ?`

	var (
		attempts      int64
		lastAttemptAt sql.NullString
	)
	err := r.db.Reader.QueryRowContext(ctx, query, ip).Scan(&attempts, &lastAttemptAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("query rate_limits", err)
	}

	rec := &ratelimit.Record{IPAddress: ip, Attempts: attempts}
	if lastAttemptAt.Valid {
		at, err := time.Parse(time.RFC3339Nano, lastAttemptAt.String)
		if err != nil {
			return nil, storageErr("parse last_attempt_at", err)
		}
		rec.LastAttemptAt = &at
	}
	return rec, nil
}

// Increment is a single upsert so concurrent failures are never lost.
func (r *RateLimitRepo) Increment(ctx context.Context, ip string) error {
	const upsert = `INSERT INTO rate_limits (ip_address, attempts) VALUES (?, 1)
		ON CONFLICT(ip_address) DO UPDATE SET attempts = attempts + 1`

	if _, err := r.db.Writer.ExecContext(ctx, upsert, ip); err != nil {
		return storageErr("increment rate_limits", err)
	}
	return nil
}

func (r *RateLimitRepo) MarkLockout(ctx context.Context, ip string, at time.Time) error {
	const update = `UPDATE rate_limits SET last_attempt_at = ? WHERE ip_address = ?`

	if _, err := r.db.Writer.ExecContext(ctx, update, formatTime(at), ip); err != nil {
		return storageErr("mark lockout", err)
	}
	return nil
}

func (r *RateLimitRepo) Restart(ctx context.Context, ip string, at time.Time) error {
	const update = `UPDATE rate_limits SET attempts = 1, last_attempt_at = ? WHERE ip_address = ?`

	if _, err := r.db.Writer.ExecContext(ctx, update, formatTime(at), ip); err != nil {
		return storageErr("restart rate_limits", err)
	}
	return nil
}

func (r *RateLimitRepo) Delete(ctx context.Context, ip string) error {
	const del = `DELETE FROM rate_limits WHERE ip_address = ?`

	if _, err := r.db.Writer.ExecContext(ctx, del, ip); err != nil {
		return storageErr("delete rate_limits", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func storageErr(op string, err error) error {
	return autherrors.Wrapf(autherrors.ErrStorageFailure, "[sqlitestore] %s: %v", op, err)
}
