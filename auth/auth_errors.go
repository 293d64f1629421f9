package auth

import (
	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
)

// Errors returned by the Resolver. Callers must answer all of them with the
// same unauthenticated response.
var (
	MalformedTokenErr     = autherrors.ErrMalformedToken
	RateLimitedErr        = autherrors.ErrRateLimited
	InvalidCredentialsErr = autherrors.ErrInvalidCredentials
	RefreshFailureErr     = autherrors.ErrRefreshFailure
	StorageFailureErr     = autherrors.ErrStorageFailure
)
