package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyCorpus is reported when an index is built from zero documents.
// It is a warning, not a failure: the resulting index is valid and empty.
var ErrEmptyCorpus = errors.New("empty corpus")

// ConfigurationError reports an invalid chunking configuration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// ValidateChunking checks that a chunk size and overlap produce a positive stride.
func ValidateChunking(chunkSize, overlap int) error {
	if chunkSize < 1 {
		return &ConfigurationError{Field: "chunk_size", Reason: fmt.Sprintf("must be at least 1, got %d", chunkSize)}
	}
	if overlap < 0 {
		return &ConfigurationError{Field: "chunk_overlap", Reason: fmt.Sprintf("must not be negative, got %d", overlap)}
	}
	if overlap >= chunkSize {
		return &ConfigurationError{
			Field:  "chunk_overlap",
			Reason: fmt.Sprintf("must be smaller than chunk_size (%d >= %d)", overlap, chunkSize),
		}
	}
	return nil
}
