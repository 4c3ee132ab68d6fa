package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents missing or invalid arguments and settings
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeNetwork represents transport failures talking to the render service
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeStatus represents a non-2xx answer from the render service
	ErrorTypeStatus ErrorType = "status"
	// ErrorTypeEmptyResponse represents a 2xx answer with a blank body
	ErrorTypeEmptyResponse ErrorType = "empty_response"
	// ErrorTypeRateLimit represents a rate limited or blocked request
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeSink represents failures writing the output artifact
	ErrorTypeSink ErrorType = "sink"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
)

// ScrapeError represents an error raised while scraping a review source
type ScrapeError struct {
	Type       ErrorType
	Source     string
	Message    string
	StatusCode int
	Err        error
	Time       time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	source := e.Source
	if source == "" {
		source = "-"
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, source, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsFetchFailure reports whether the error came from the fetch channel.
func (e *ScrapeError) IsFetchFailure() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeStatus, ErrorTypeEmptyResponse, ErrorTypeRateLimit, ErrorTypeParsing:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewStatus creates a new status error for an unexpected HTTP status code
func NewStatus(source string, statusCode int) *ScrapeError {
	e := New(ErrorTypeStatus, source, fmt.Sprintf("unexpected status code: %d", statusCode), nil)
	e.StatusCode = statusCode
	return e
}

// NewEmptyResponse creates a new empty response error
func NewEmptyResponse(source, url string) *ScrapeError {
	return New(ErrorTypeEmptyResponse, source, fmt.Sprintf("empty body for %s", url), nil)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewSink creates a new sink error
func NewSink(source, message string, err error) *ScrapeError {
	return New(ErrorTypeSink, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, source, message, err)
}

// TypeOf returns the ErrorType of the first ScrapeError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type
	}
	return ""
}

// IsType reports whether err's chain carries a ScrapeError of the given type.
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}
