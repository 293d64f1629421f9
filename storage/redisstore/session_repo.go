package redisstore

import (
	"context"
	"errors"

	"github.com/jrsteele09/go-auth-bridge/sessions"
	"github.com/redis/go-redis/v9"
)

var _ sessions.Repo = (*SessionRepo)(nil)

type SessionRepo struct {
	client    redis.UniversalClient
	keyPrefix string
}

func (r *SessionRepo) key(subjectID string) string {
	return r.keyPrefix + "session:" + subjectID
}

func (r *SessionRepo) Get(ctx context.Context, subjectID string) (*sessions.Record, error) {
	serialized, err := r.client.Get(ctx, r.key(subjectID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("Get session", err)
	}
	return &sessions.Record{SubjectID: subjectID, SerializedSession: serialized}, nil
}

func (r *SessionRepo) Put(ctx context.Context, subjectID, serializedSession string) error {
	if err := r.client.Set(ctx, r.key(subjectID), serializedSession, 0).Err(); err != nil {
		return storageErr("Put session", err)
	}
	return nil
}
