package port

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors used across ports.
var (
	ErrEmptyText         = errors.New("text is empty")
	ErrInvalidDimension  = errors.New("vector dimension mismatch")
	ErrNoModelCandidates = errors.New("no model candidates configured")
)

// ProviderError is an AI backend failure carrying HTTP-style status
// semantics that the retry policy inspects.
type ProviderError struct {
	Provider   string
	Model      string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// EmbeddingError is a provider failure during vector generation.
// Ingestion treats it as a per-item failure; query-time search swallows
// it into "no matches".
type EmbeddingError struct {
	Provider string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (%s): %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StoreError is a vector store read/write failure. Search degrades to
// empty results on it; ingestion counts it as an item failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// GenerationCause classifies why the full candidate/retry matrix was
// exhausted, so the user-facing layer can render a specific message.
type GenerationCause string

const (
	CauseOverloaded    GenerationCause = "overloaded"
	CauseQuotaExceeded GenerationCause = "quota-exceeded"
	CauseUnknown       GenerationCause = "unknown"
)

// GenerationError is raised only after every model candidate has been
// exhausted.
type GenerationError struct {
	Cause    GenerationCause
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts (%s): %v", e.Attempts, e.Cause, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ErrorClass buckets provider failures for retry scheduling. Overloaded
// and rate-limited failures are retryable with distinct backoff bases;
// everything else moves straight to the next candidate.
type ErrorClass int

const (
	ClassFatal ErrorClass = iota
	ClassOverloaded
	ClassRateLimited
)

// ClassifyProviderError maps a provider failure onto a retry class
// using its HTTP status. 529 is Anthropic-style "overloaded".
func ClassifyProviderError(err error) ErrorClass {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return ClassFatal
	}
	switch pe.StatusCode {
	case http.StatusServiceUnavailable, 529:
		return ClassOverloaded
	case http.StatusTooManyRequests:
		return ClassRateLimited
	default:
		return ClassFatal
	}
}

// IsRetryable reports whether a provider failure is worth retrying with
// the same model.
func IsRetryable(err error) bool {
	return ClassifyProviderError(err) != ClassFatal
}

// CauseOf maps a retry class to the user-facing exhaustion cause.
func CauseOf(class ErrorClass) GenerationCause {
	switch class {
	case ClassOverloaded:
		return CauseOverloaded
	case ClassRateLimited:
		return CauseQuotaExceeded
	default:
		return CauseUnknown
	}
}
