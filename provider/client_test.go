package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-bridge/internal/testutil"
	"github.com/jrsteele09/go-auth-bridge/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProviderServer(t *testing.T) *httptest.Server {
	t.Helper()

	exp := time.Now().Add(time.Hour)
	session := testutil.MintSession("did:plc:alice", exp, exp.Add(24*time.Hour))
	refreshed := testutil.MintSession("did:plc:alice", exp.Add(time.Hour), exp.Add(48*time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /xrpc/com.atproto.server.createSession", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Identifier string `json:"identifier"`
			Password   string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch body.Password {
		case "correct":
			_, _ = w.Write([]byte(testutil.Serialized(session)))
		case "outage":
			w.WriteHeader(http.StatusBadGateway)
		case "nodid":
			_, _ = w.Write([]byte(`{"accessJwt":"a","refreshJwt":"r"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"AuthenticationRequired","message":"Invalid identifier or password"}`))
		}
	})
	mux.HandleFunc("POST /xrpc/com.atproto.server.refreshSession", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+session.RefreshJwt {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"ExpiredToken","message":"Token has expired"}`))
			return
		}
		_, _ = w.Write([]byte(testutil.Serialized(refreshed)))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateSession(t *testing.T) {
	srv := newProviderServer(t)
	client := provider.NewClient(srv.URL+"/", provider.WithTimeout(time.Second))

	session, err := client.CreateSession(context.Background(), "alice.test", "correct")
	require.NoError(t, err)
	assert.Equal(t, "did:plc:alice", session.Did)
	assert.NotEmpty(t, session.AccessJwt)
}

func TestCreateSession_Failures(t *testing.T) {
	srv := newProviderServer(t)
	client := provider.NewClient(srv.URL)
	ctx := context.Background()

	_, err := client.CreateSession(ctx, "alice.test", "wrong")
	require.ErrorIs(t, err, provider.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "AuthenticationRequired")

	_, err = client.CreateSession(ctx, "alice.test", "outage")
	require.ErrorIs(t, err, provider.ErrUnavailable)

	_, err = client.CreateSession(ctx, "alice.test", "nodid")
	require.ErrorIs(t, err, provider.ErrUnavailable)
}

func TestCreateSession_Unreachable(t *testing.T) {
	srv := newProviderServer(t)
	url := srv.URL
	srv.Close()

	_, err := provider.NewClient(url).CreateSession(context.Background(), "alice.test", "correct")
	require.ErrorIs(t, err, provider.ErrUnavailable)
}

func TestRefreshSession(t *testing.T) {
	srv := newProviderServer(t)
	client := provider.NewClient(srv.URL, provider.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	created, err := client.CreateSession(ctx, "alice.test", "correct")
	require.NoError(t, err)

	refreshed, err := client.RefreshSession(ctx, created.RefreshJwt)
	require.NoError(t, err)
	assert.NotEqual(t, created.AccessJwt, refreshed.AccessJwt)

	_, err = client.RefreshSession(ctx, "stale")
	require.ErrorIs(t, err, provider.ErrInvalidCredentials)
}
