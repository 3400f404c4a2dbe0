package models

// ErrorResponse is the JSON body of every failed API request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned in ErrorResponse.Code.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConfig       = "config_error"
	ErrCodeCompletion   = "completion_failed"
	ErrCodeUpstream     = "upstream_http_error"
	ErrCodeClock        = "clock_error"
	ErrCodeTimeout      = "timeout"
	ErrCodeInternal     = "internal_error"
)
