package sessions_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
	"github.com/jrsteele09/go-auth-bridge/internal/testutil"
	"github.com/jrsteele09/go-auth-bridge/sessions"
	sessionrepofakes "github.com/jrsteele09/go-auth-bridge/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

const testDid = "did:plc:alice"

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPutIsIdempotent(t *testing.T) {
	repo := sessionrepofakes.NewFakeSessionRepo()
	store := sessions.NewStore(repo)
	ctx := context.Background()
	payload := testutil.Serialized(testutil.MintSession(testDid, baseTime, baseTime.Add(time.Hour)))

	require.NoError(t, store.Put(ctx, testDid, payload))
	require.NoError(t, store.Put(ctx, testDid, payload))

	require.Equal(t, 1, repo.Len())
	rec, err := store.Get(ctx, testDid)
	require.NoError(t, err)
	require.Equal(t, payload, rec.SerializedSession)
}

func TestGetMissing(t *testing.T) {
	store := sessions.NewStore(sessionrepofakes.NewFakeSessionRepo())

	rec, err := store.Get(context.Background(), "did:plc:nobody")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestDecodeClaims(t *testing.T) {
	for _, cached := range []bool{false, true} {
		var opts []sessions.StoreOption
		if cached {
			opts = append(opts, sessions.WithClaimCache())
		}
		store := sessions.NewStore(sessionrepofakes.NewFakeSessionRepo(), opts...)
		ctx := context.Background()

		minted := testutil.MintSession(testDid, baseTime.Add(2*time.Hour), baseTime.Add(48*time.Hour))
		require.NoError(t, store.Save(ctx, testDid, minted))

		for i := 0; i < 2; i++ {
			rec, err := store.Get(ctx, testDid)
			require.NoError(t, err)

			session, claims, err := store.Decode(rec)
			require.NoError(t, err)
			require.Equal(t, minted.AccessJwt, session.AccessJwt)
			require.True(t, claims.AccessExpiresAt.Equal(baseTime.Add(2*time.Hour)))
			require.True(t, claims.RefreshExpiresAt.Equal(baseTime.Add(48*time.Hour)))

			serialized, err := session.Serialize()
			require.NoError(t, err)
			require.Equal(t, rec.SerializedSession, serialized)
		}
	}
}

func TestClaimCacheIgnoresStalePayload(t *testing.T) {
	store := sessions.NewStore(sessionrepofakes.NewFakeSessionRepo(), sessions.WithClaimCache())
	ctx := context.Background()

	first := testutil.MintSession(testDid, baseTime, baseTime.Add(time.Hour))
	require.NoError(t, store.Save(ctx, testDid, first))
	rec, err := store.Get(ctx, testDid)
	require.NoError(t, err)
	_, _, err = store.Decode(rec)
	require.NoError(t, err)

	// Another process writes a newer session straight to the record.
	second := testutil.MintSession(testDid, baseTime.Add(3*time.Hour), baseTime.Add(4*time.Hour))
	newer := &sessions.Record{SubjectID: testDid, SerializedSession: testutil.Serialized(second)}

	session, claims, err := store.Decode(newer)
	require.NoError(t, err)
	require.Equal(t, second.AccessJwt, session.AccessJwt)
	require.True(t, claims.AccessExpiresAt.Equal(baseTime.Add(3*time.Hour)))
}

func TestDecodeCorruptRecords(t *testing.T) {
	store := sessions.NewStore(sessionrepofakes.NewFakeSessionRepo())
	noExp := `eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJ4In0.c2ln`
	valid := testutil.MintJWT(testDid, baseTime)

	tests := []struct {
		name       string
		serialized string
	}{
		{"not json", "{"},
		{"missing tokens", `{"did":"did:plc:alice"}`},
		{"access not a jwt", `{"accessJwt":"abc","refreshJwt":"` + valid + `"}`},
		{"refresh without exp", `{"accessJwt":"` + valid + `","refreshJwt":"` + noExp + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := store.Decode(&sessions.Record{SubjectID: testDid, SerializedSession: tt.serialized})
			require.ErrorIs(t, err, autherrors.ErrStorageFailure)
			require.ErrorIs(t, err, autherrors.ErrCorruptSession)
		})
	}
}

func TestParseSessionRoundTrip(t *testing.T) {
	raw := `{"did":"did:plc:alice","handle":"alice.test","accessJwt":"a","refreshJwt":"r","didDoc":{"id":"did:plc:alice"},"active":true}`

	s, err := sessions.ParseSession(raw)
	require.NoError(t, err)
	require.Equal(t, "alice.test", s.Handle)
	require.NotNil(t, s.Active)
	require.True(t, *s.Active)

	out, err := s.Serialize()
	require.NoError(t, err)
	require.Equal(t, raw, out)

	fresh := &sessions.Session{Did: "did:plc:bob", AccessJwt: "a", RefreshJwt: "r"}
	out, err = fresh.Serialize()
	require.NoError(t, err)
	require.True(t, strings.Contains(out, `"did":"did:plc:bob"`))
}

type brokenRepo struct{}

func (brokenRepo) Get(context.Context, string) (*sessions.Record, error) {
	return nil, errors.New("disk full")
}

func (brokenRepo) Put(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestStorageErrorsAreTagged(t *testing.T) {
	store := sessions.NewStore(brokenRepo{})
	ctx := context.Background()

	_, err := store.Get(ctx, testDid)
	require.ErrorIs(t, err, autherrors.ErrStorageFailure)
	require.ErrorIs(t, store.Put(ctx, testDid, "{}"), autherrors.ErrStorageFailure)
}
