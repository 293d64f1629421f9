// Package ratelimit tracks failed re-authentication attempts per client IP
// and locks an IP out once it crosses a threshold.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
)

const (
	DefaultThreshold = 5
	DefaultWindow    = 30 * time.Minute
)

type Limiter struct {
	repo      Repo
	threshold int64
	window    time.Duration
	nowFunc   func() time.Time
}

type LimiterOption func(*Limiter)

// WithThreshold sets the attempt count at which an IP is locked out.
func WithThreshold(threshold int64) LimiterOption {
	return func(l *Limiter) {
		l.threshold = threshold
	}
}

// WithWindow sets how long a lockout lasts.
func WithWindow(window time.Duration) LimiterOption {
	return func(l *Limiter) {
		l.window = window
	}
}

func WithNowFunc(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		l.nowFunc = now
	}
}

func New(repo Repo, options ...LimiterOption) *Limiter {
	l := &Limiter{
		repo:      repo,
		threshold: DefaultThreshold,
		window:    DefaultWindow,
		nowFunc:   time.Now,
	}
	for _, opt := range options {
		opt(l)
	}
	if l.threshold <= 0 {
		l.threshold = DefaultThreshold
	}
	if l.window <= 0 {
		l.window = DefaultWindow
	}
	return l
}

// RecordFailure counts one failed authentication for ip.
func (l *Limiter) RecordFailure(ctx context.Context, ip string) error {
	if err := l.repo.Increment(ctx, ip); err != nil {
		return storageErr("RecordFailure", err)
	}
	return nil
}

// IsLocked reports whether ip is refused re-authentication.
//
// Once attempts reach the threshold the first check stamps the start of the
// lockout window. A check after the window has elapsed restarts the record
// at one attempt but still reports the IP as locked for that call. The
// stamp survives the restart until Reset is called.
func (l *Limiter) IsLocked(ctx context.Context, ip string) (bool, error) {
	rec, err := l.repo.Get(ctx, ip)
	if err != nil {
		return false, storageErr("IsLocked", err)
	}
	if rec == nil || rec.Attempts < l.threshold {
		return false, nil
	}

	now := l.nowFunc().UTC()
	lastAttemptAt := rec.LastAttemptAt
	if lastAttemptAt == nil {
		if err := l.repo.MarkLockout(ctx, ip, now); err != nil {
			return false, storageErr("IsLocked", err)
		}
		lastAttemptAt = &now
	}

	if now.Sub(*lastAttemptAt) > l.window {
		if err := l.repo.Restart(ctx, ip, now); err != nil {
			return false, storageErr("IsLocked", err)
		}
		lastAttemptAt = &now
	}

	return lastAttemptAt != nil, nil
}

// Reset forgets every failure recorded for ip.
func (l *Limiter) Reset(ctx context.Context, ip string) error {
	if err := l.repo.Delete(ctx, ip); err != nil {
		return storageErr("Reset", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	if autherrors.Is(err, autherrors.ErrStorageFailure) {
		return fmt.Errorf("[Limiter %s] %w", op, err)
	}
	return fmt.Errorf("[Limiter %s] %w: %v", op, autherrors.ErrStorageFailure, err)
}
