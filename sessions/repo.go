package sessions

import "context"

// Record is the persisted session of one subject.
type Record struct {
	SubjectID         string
	SerializedSession string
}

// Repo defines the interface for session record storage.
// There is at most one record per subject id; Put always replaces it.
type Repo interface {
	// Get retrieves the record for subjectID, or nil, nil when there is none
	Get(ctx context.Context, subjectID string) (*Record, error)

	// Put creates or overwrites the record for subjectID
	Put(ctx context.Context, subjectID, serializedSession string) error
}
