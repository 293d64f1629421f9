// Package auth resolves bearer tokens to live identity provider sessions.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrsteele09/go-auth-bridge/bearer"
	"github.com/jrsteele09/go-auth-bridge/instrumentation"
	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
	"github.com/jrsteele09/go-auth-bridge/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	opCreateSession  = "create_session"
	opRefreshSession = "refresh_session"
)

// Resolution is a resolved bearer token: the live session plus the
// passthrough data carried by the token.
type Resolution struct {
	Session     *sessions.Session
	Identifier  string
	Preferences json.RawMessage
}

// Resolver runs the session resolution state machine for one request at a
// time. It holds no locks across provider calls and is safe for concurrent use.
type Resolver struct {
	deps           Dependencies
	metrics        *instrumentation.Metrics
	strictCounting bool
	nowTime        func() time.Time
}

type ResolverOption func(*Resolver)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.nowTime = nowFunc
	}
}

// WithMetrics records resolution and provider call metrics.
func WithMetrics(m *instrumentation.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithStrictFailureCounting counts only rejected credentials towards a
// lockout. By default every failed create-session call is counted.
func WithStrictFailureCounting() ResolverOption {
	return func(r *Resolver) {
		r.strictCounting = true
	}
}

func NewResolver(deps Dependencies, options ...ResolverOption) (*Resolver, error) {
	if deps.Codec == nil {
		return nil, errors.New("[NewResolver] Codec is required")
	}
	if deps.Limiter == nil {
		return nil, errors.New("[NewResolver] Limiter is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("[NewResolver] Sessions store is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("[NewResolver] Provider is required")
	}

	r := &Resolver{
		deps:    deps,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// ResolveSession returns the live provider session for a bearer header.
// Any error means the request is unauthenticated.
func (r *Resolver) ResolveSession(ctx context.Context, bearerHeader, clientIP string) (*sessions.Session, error) {
	res, err := r.Resolve(ctx, bearerHeader, clientIP)
	if err != nil {
		return nil, err
	}
	return res.Session, nil
}

// Resolve is ResolveSession keeping the token's passthrough data.
func (r *Resolver) Resolve(ctx context.Context, bearerHeader, clientIP string) (res *Resolution, err error) {
	defer func() {
		r.metrics.RecordResolution(ctx, err)
	}()

	creds, err := r.deps.Codec.Decode(bearerHeader)
	if err != nil {
		return nil, err
	}

	session, err := r.resolve(ctx, creds, clientIP)
	if err != nil {
		log.Warn().Err(err).Str("ip", clientIP).Str("did", creds.SubjectID).Msg("session resolution failed")
		return nil, err
	}

	return &Resolution{
		Session:     session,
		Identifier:  creds.Identifier,
		Preferences: creds.Preferences,
	}, nil
}

func (r *Resolver) resolve(ctx context.Context, creds *bearer.Credentials, clientIP string) (*sessions.Session, error) {
	if creds.SubjectID == "" {
		return r.Authenticate(ctx, creds.Identifier, creds.Secret, clientIP)
	}

	rec, err := r.deps.Sessions.Get(ctx, creds.SubjectID)
	if err != nil {
		return nil, errors.Wrap(err, "[resolve] session lookup")
	}
	if rec == nil {
		log.Debug().Str("did", creds.SubjectID).Msg("no session record, authenticating")
		return r.Authenticate(ctx, creds.Identifier, creds.Secret, clientIP)
	}

	cached, claims, err := r.deps.Sessions.Decode(rec)
	if err != nil {
		return nil, errors.Wrap(err, "[resolve] session record")
	}

	now := r.nowTime().UTC()
	switch {
	case !now.After(claims.AccessExpiresAt):
		return cached, nil
	case !now.After(claims.RefreshExpiresAt):
		log.Debug().Str("did", creds.SubjectID).Time("access_expired_at", claims.AccessExpiresAt).Msg("refreshing session")
		return r.refresh(ctx, creds.SubjectID, cached)
	default:
		log.Debug().Str("did", creds.SubjectID).Time("refresh_expired_at", claims.RefreshExpiresAt).Msg("refresh token expired, re-authenticating")
		return r.Authenticate(ctx, creds.Identifier, creds.Secret, clientIP)
	}
}

// refresh never falls back to a full re-authentication and never touches the
// limiter: a failed refresh is not a credential failure.
func (r *Resolver) refresh(ctx context.Context, subjectID string, cached *sessions.Session) (*sessions.Session, error) {
	fresh, err := r.deps.Provider.RefreshSession(ctx, cached.RefreshJwt)
	r.metrics.RecordProviderCall(ctx, opRefreshSession, err)
	if err != nil {
		return nil, fmt.Errorf("[refresh] %w: %v", autherrors.ErrRefreshFailure, err)
	}

	if err := r.save(ctx, subjectID, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Authenticate logs in with raw credentials, subject to the client IP's
// lockout state. It is the only path that contacts the provider with a secret.
func (r *Resolver) Authenticate(ctx context.Context, identifier, secret, clientIP string) (*sessions.Session, error) {
	locked, err := r.deps.Limiter.IsLocked(ctx, clientIP)
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticate] lockout check")
	}
	if locked {
		r.metrics.RecordLockout(ctx)
		return nil, errors.Wrapf(autherrors.ErrRateLimited, "[Authenticate] %s locked out", clientIP)
	}

	session, err := r.deps.Provider.CreateSession(ctx, identifier, secret)
	r.metrics.RecordProviderCall(ctx, opCreateSession, err)
	if err != nil {
		if r.countsAsFailure(err) {
			if lerr := r.deps.Limiter.RecordFailure(ctx, clientIP); lerr != nil {
				return nil, errors.Wrap(lerr, "[Authenticate] recording failure")
			}
		}
		if autherrors.Is(err, autherrors.ErrProviderUnavailable) {
			return nil, errors.Wrap(err, "[Authenticate] create session")
		}
		return nil, fmt.Errorf("[Authenticate] %w: %v", autherrors.ErrInvalidCredentials, err)
	}

	if err := r.deps.Limiter.Reset(ctx, clientIP); err != nil {
		return nil, errors.Wrap(err, "[Authenticate] limiter reset")
	}
	if err := r.save(ctx, session.Did, session); err != nil {
		return nil, err
	}

	log.Info().Str("did", session.Did).Str("ip", clientIP).Msg("provider session created")
	return session, nil
}

// IssueToken authenticates and packs the credentials, now bound to the
// provider's subject id, into a new opaque bearer token.
func (r *Resolver) IssueToken(ctx context.Context, identifier, secret string, preferences json.RawMessage, clientIP string) (string, *sessions.Session, error) {
	session, err := r.Authenticate(ctx, identifier, secret, clientIP)
	if err != nil {
		return "", nil, err
	}

	token, err := r.deps.Codec.Encode(bearer.Credentials{
		Identifier:  identifier,
		Secret:      secret,
		Preferences: preferences,
		SubjectID:   session.Did,
	})
	if err != nil {
		return "", nil, errors.Wrap(err, "[IssueToken] encode")
	}
	return token, session, nil
}

func (r *Resolver) countsAsFailure(err error) bool {
	if !r.strictCounting {
		return true
	}
	return autherrors.Is(err, autherrors.ErrInvalidCredentials)
}

func (r *Resolver) save(ctx context.Context, subjectID string, session *sessions.Session) error {
	if err := r.deps.Sessions.Save(ctx, subjectID, session); err != nil {
		return errors.Wrap(err, "[save] session")
	}
	return nil
}
