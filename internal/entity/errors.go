package entity

import (
	"errors"
	"fmt"
)

// Caller-contract violations. These are the only failures surfaced to
// the caller; everything else degrades inside the pipeline.
var (
	ErrEmptyText       = errors.New("document text is empty")
	ErrMissingQuestion = errors.New("question is required for ask mode")
	ErrInvalidMode     = errors.New("unsupported processing mode")
	ErrInvalidAudience = errors.New("unsupported audience level")

	// File errors
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("unsupported file extension")
)

// IsClientError reports whether err is a caller-contract violation
// that should map to a 4xx response instead of a degraded payload.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyText) ||
		errors.Is(err, ErrMissingQuestion) ||
		errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrInvalidAudience) ||
		errors.Is(err, ErrInvalidFile) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrInvalidExtension)
}

// EmbeddingError means the local embedding model could not produce a
// vector. The retriever recovers with lexical-overlap ranking.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding: %v", e.Err) }
func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexIOError means a persisted index could not be read or written.
// The store recovers with a fresh empty index for the owner.
type IndexIOError struct {
	OwnerID string
	Op      string
	Err     error
}

func (e *IndexIOError) Error() string {
	return fmt.Sprintf("index %s for owner %q: %v", e.Op, e.OwnerID, e.Err)
}
func (e *IndexIOError) Unwrap() error { return e.Err }

// GenerationError means the generation capability failed after all
// retries. The pipeline recovers with a deterministic local fallback.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
}
func (e *GenerationError) Unwrap() error { return e.Err }

// ParseError means the generation output did not contain a usable
// payload of the expected shape.
type ParseError struct {
	Mode Mode
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Mode, e.Err)
}
func (e *ParseError) Unwrap() error { return e.Err }
