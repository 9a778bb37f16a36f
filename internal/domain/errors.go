package domain

import (
	"errors"
	"strconv"
)

// FetchError is the only failure kind of the market-data feed: a non-2xx
// status, a transport failure or a malformed payload.
type FetchError struct {
	Op         string // Operation that failed (e.g., "markets", "coin detail")
	StatusCode int    // HTTP status, 0 when the request never got a response
	Err        error  // Underlying error, nil for status failures
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return e.Op + ": HTTP error! status: " + strconv.Itoa(e.StatusCode)
	}
	if e.Err == nil {
		return e.Op + ": an error occurred"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether the feed answered with a non-success status.
func (e *FetchError) IsStatus() bool {
	return e.StatusCode != 0
}

// NewStatusError creates a FetchError for a non-2xx response
func NewStatusError(op string, status int) *FetchError {
	return &FetchError{Op: op, StatusCode: status}
}

// NewFetchError wraps a transport or decoding failure
func NewFetchError(op string, err error) *FetchError {
	return &FetchError{Op: op, Err: err}
}

// StatusCode extracts the HTTP status from a FetchError chain, or 0.
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrEmptyCoinID is returned when a detail lookup is made without an id.
	ErrEmptyCoinID = errors.New("empty coin id")

	// ErrStopped is returned by a refetch issued after the fetcher was stopped.
	ErrStopped = errors.New("market service stopped")

	// ErrInvalidBucket is returned when a market-cap bucket name is not recognised.
	ErrInvalidBucket = errors.New("invalid market cap bucket")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
