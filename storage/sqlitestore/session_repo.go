package sqlitestore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jrsteele09/go-auth-bridge/sessions"
)

var _ sessions.Repo = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of sessions.Repo.
type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Get(ctx context.Context, subjectID string) (*sessions.Record, error) {
	const query = `SELECT serialized_session FROM sessions WHERE subject_id = ?`

	var serialized string
	err := r.db.Reader.QueryRowContext(ctx, query, subjectID).Scan(&serialized)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("query sessions", err)
	}
	return &sessions.Record{SubjectID: subjectID, SerializedSession: serialized}, nil
}

func (r *SessionRepo) Put(ctx context.Context, subjectID, serializedSession string) error {
	const upsert = `INSERT INTO sessions (subject_id, serialized_session) VALUES (?, ?)
		ON CONFLICT(subject_id) DO UPDATE SET serialized_session = excluded.serialized_session`

	if _, err := r.db.Writer.ExecContext(ctx, upsert, subjectID, serializedSession); err != nil {
		return storageErr("upsert sessions", err)
	}
	return nil
}
