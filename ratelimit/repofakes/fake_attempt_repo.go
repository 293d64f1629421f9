package ratelimitrepofakes

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-bridge/ratelimit"
)

var _ ratelimit.Repo = (*FakeAttemptRepo)(nil)

type FakeAttemptRepo struct {
	records map[string]*ratelimit.Record
	lock    sync.RWMutex
}

func NewFakeAttemptRepo() *FakeAttemptRepo {
	return &FakeAttemptRepo{
		records: make(map[string]*ratelimit.Record),
	}
}

func (r *FakeAttemptRepo) Get(_ context.Context, ip string) (*ratelimit.Record, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rec, ok := r.records[ip]
	if !ok {
		return nil, nil
	}
	cp := *rec
	if rec.LastAttemptAt != nil {
		at := *rec.LastAttemptAt
		cp.LastAttemptAt = &at
	}
	return &cp, nil
}

func (r *FakeAttemptRepo) Increment(_ context.Context, ip string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	rec, ok := r.records[ip]
	if !ok {
		r.records[ip] = &ratelimit.Record{IPAddress: ip, Attempts: 1}
		return nil
	}
	rec.Attempts++
	return nil
}

func (r *FakeAttemptRepo) MarkLockout(_ context.Context, ip string, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if rec, ok := r.records[ip]; ok {
		at = at.UTC()
		rec.LastAttemptAt = &at
	}
	return nil
}

func (r *FakeAttemptRepo) Restart(_ context.Context, ip string, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if rec, ok := r.records[ip]; ok {
		at = at.UTC()
		rec.Attempts = 1
		rec.LastAttemptAt = &at
	}
	return nil
}

func (r *FakeAttemptRepo) Delete(_ context.Context, ip string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.records, ip)
	return nil
}

// Set replaces the record for ip. Test helper.
func (r *FakeAttemptRepo) Set(rec ratelimit.Record) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.records[rec.IPAddress] = &rec
}

// Len returns the number of stored records.
func (r *FakeAttemptRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.records)
}
