package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeUnsupportedCarrier = "UNSUPPORTED_CARRIER"
	ErrCodeNavigationTimeout  = "NAVIGATION_TIMEOUT"
	ErrCodeControlTimeout     = "CONTROL_TIMEOUT"
	ErrCodeSessionFailure     = "SESSION_FAILURE"
	ErrCodeExtractionFailed   = "EXTRACTION_FAILED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TrackError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type TrackError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *TrackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TrackError) Unwrap() error {
	return e.Err
}

// NewTrackError creates a new TrackError.
func NewTrackError(code, message string, err error) *TrackError {
	return &TrackError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *TrackError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
