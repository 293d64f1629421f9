package sessions

import (
	"context"
	"fmt"
	"sync"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
)

// Store is the session store used by the resolver. The Repo is the only
// source of truth. The optional claim cache only saves re-parsing a payload
// the repo has just returned again; it never answers a lookup on its own.
type Store struct {
	repo  Repo
	cache *claimCache
}

type StoreOption func(*Store)

// WithClaimCache shadows parsed sessions in process memory.
func WithClaimCache() StoreOption {
	return func(s *Store) {
		s.cache = newClaimCache()
	}
}

func NewStore(repo Repo, options ...StoreOption) *Store {
	s := &Store{repo: repo}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Get returns the record for subjectID, or nil when there is none.
func (s *Store) Get(ctx context.Context, subjectID string) (*Record, error) {
	rec, err := s.repo.Get(ctx, subjectID)
	if err != nil {
		return nil, storageErr("Get", err)
	}
	return rec, nil
}

// Put upserts the serialized session for subjectID.
func (s *Store) Put(ctx context.Context, subjectID, serializedSession string) error {
	if err := s.repo.Put(ctx, subjectID, serializedSession); err != nil {
		return storageErr("Put", err)
	}
	// Entries cached concurrently from the old payload never match the new one.
	s.cache.invalidate(subjectID)
	return nil
}

// Save serializes session and stores it under subjectID.
func (s *Store) Save(ctx context.Context, subjectID string, session *Session) error {
	serialized, err := session.Serialize()
	if err != nil {
		return storageErr("Save", err)
	}
	return s.Put(ctx, subjectID, serialized)
}

// Decode parses the session and claims held by rec.
func (s *Store) Decode(rec *Record) (*Session, Claims, error) {
	if entry, ok := s.cache.lookup(rec.SubjectID, rec.SerializedSession); ok {
		session := entry.session
		return &session, entry.claims, nil
	}

	session, err := ParseSession(rec.SerializedSession)
	if err != nil {
		return nil, Claims{}, storageErr("Decode", err)
	}
	claims, err := ParseClaims(session)
	if err != nil {
		return nil, Claims{}, storageErr("Decode", err)
	}

	s.cache.store(rec.SubjectID, rec.SerializedSession, *session, claims)
	return session, claims, nil
}

func storageErr(op string, err error) error {
	if autherrors.Is(err, autherrors.ErrStorageFailure) {
		return fmt.Errorf("[Store %s] %w", op, err)
	}
	return fmt.Errorf("[Store %s] %w: %w", op, autherrors.ErrStorageFailure, err)
}

type cacheEntry struct {
	serialized string
	session    Session
	claims     Claims
}

// claimCache is safe for concurrent use. A nil cache is a no-op.
type claimCache struct {
	entries map[string]cacheEntry
	lock    sync.RWMutex
}

func newClaimCache() *claimCache {
	return &claimCache{entries: make(map[string]cacheEntry)}
}

func (c *claimCache) lookup(subjectID, serialized string) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	c.lock.RLock()
	defer c.lock.RUnlock()

	entry, ok := c.entries[subjectID]
	if !ok || entry.serialized != serialized {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *claimCache) store(subjectID, serialized string, session Session, claims Claims) {
	if c == nil {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()

	c.entries[subjectID] = cacheEntry{serialized: serialized, session: session, claims: claims}
}

func (c *claimCache) invalidate(subjectID string) {
	if c == nil {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()

	delete(c.entries, subjectID)
}
