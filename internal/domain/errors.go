package domain

import (
	"errors"
	"fmt"
)

// Provider error codes. Every error that crosses a provider boundary carries
// one of these.
const (
	CodeInvalidPageSize      = "INVALID_PAGE_SIZE"
	CodeInvalidPageNumber    = "INVALID_PAGE_NUMBER"
	CodeRateLimitMinute      = "RATE_LIMIT_MINUTE"
	CodeRateLimitHour        = "RATE_LIMIT_HOUR"
	CodeMissingAPIKey        = "MISSING_API_KEY"
	CodeSearchError          = "SEARCH_ERROR"
	CodeGetByIDError         = "GET_BY_ID_ERROR"
	CodeGetMultipleError     = "GET_MULTIPLE_ERROR"
	CodeAggregationError     = "AGGREGATION_ERROR"
	CodeProviderNotAvailable = "PROVIDER_NOT_AVAILABLE"
	CodeExternalFoodUpdate   = "EXTERNAL_FOOD_UPDATE"
	CodeAlreadyInternal      = "ALREADY_INTERNAL"
	CodeInvalidID            = "INVALID_ID"
	CodeProviderError        = "PROVIDER_ERROR"
)

// HTTPStatusCode builds the code used when an upstream API returns a
// non-2xx status, e.g. HTTP_429.
func HTTPStatusCode(status int) string {
	return fmt.Sprintf("HTTP_%d", status)
}

// ProviderError is the sole typed error leaving a provider boundary.
// Raw transport and parse errors are wrapped into one of these before
// they propagate above the provider layer.
type ProviderError struct {
	Message  string      `json:"message"`
	Provider SourceType  `json:"provider"`
	Code     string      `json:"code"`
	Details  interface{} `json:"details,omitempty"`

	cause error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.cause
}

// NewProviderError creates a ProviderError without an underlying cause
func NewProviderError(provider SourceType, code, message string) *ProviderError {
	return &ProviderError{
		Message:  message,
		Provider: provider,
		Code:     code,
	}
}

// WrapProviderError wraps an arbitrary error into a ProviderError, keeping
// the original as the unwrap target. A ProviderError passes through as-is.
func WrapProviderError(provider SourceType, code string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	message := code
	if err != nil {
		message = err.Error()
	}

	return &ProviderError{
		Message:  message,
		Provider: provider,
		Code:     code,
		Details:  message,
		cause:    err,
	}
}

// AsProviderError extracts a ProviderError from an error chain
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}

// IsProviderCode reports whether err is a ProviderError carrying code
func IsProviderCode(err error, code string) bool {
	pe, ok := AsProviderError(err)
	return ok && pe.Code == code
}
