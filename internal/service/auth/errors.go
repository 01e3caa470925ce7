package auth

import "errors"

var (
	// ErrInvalidCredentials covers unknown email, password-less account and
	// wrong password alike, so responses never reveal whether an account
	// exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is distinct from validation failures so clients can
	// prompt sign-in instead of retrying registration.
	ErrEmailTaken = errors.New("an account with this email already exists")

	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrUnauthorized is the uniform failure for missing/invalid access
	// tokens and rejected refresh attempts.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrGoogleVerification covers every identity-provider failure:
	// unreachable endpoint, non-success response, malformed payload,
	// audience mismatch, missing subject or email.
	ErrGoogleVerification = errors.New("google token verification failed")

	// ErrGoogleDisabled is returned when no Google client id is configured.
	ErrGoogleDisabled = errors.New("google sign-in is not configured")
)
