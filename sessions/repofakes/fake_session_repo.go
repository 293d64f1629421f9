package sessionrepofakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-bridge/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	records map[string]string
	puts    int
	lock    sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		records: make(map[string]string),
	}
}

func (sr *FakeSessionRepo) Get(_ context.Context, subjectID string) (*sessions.Record, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	serialized, ok := sr.records[subjectID]
	if !ok {
		return nil, nil
	}
	return &sessions.Record{SubjectID: subjectID, SerializedSession: serialized}, nil
}

func (sr *FakeSessionRepo) Put(_ context.Context, subjectID, serializedSession string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.records[subjectID] = serializedSession
	sr.puts++
	return nil
}

// Len returns the number of stored records.
func (sr *FakeSessionRepo) Len() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return len(sr.records)
}

// Puts returns how many times Put has been called.
func (sr *FakeSessionRepo) Puts() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.puts
}
