package models

import "errors"

// Application-wide standard errors
var (
	// Generation errors. Every failure of a generation procedure wraps
	// exactly one of these so callers can branch with errors.Is.
	ErrCompletion = errors.New("completion failed") // upstream model failed or returned unusable output
	ErrConfig     = errors.New("required configuration missing")
	ErrHTTP       = errors.New("http request failed") // transport, non-2xx status or unreadable body
	ErrClock      = errors.New("system clock unavailable")

	// Request/Server errors
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input data")
	ErrUnknownStrategy = errors.New("unknown generation strategy")
	ErrForbidden       = errors.New("access forbidden")

	// Inter-service token errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
)
