package model

import "errors"

var (
	// ErrLocked is returned when a finalized chunk or graph is mutated. It signals an
	// ordering bug in the caller: ingestion must finish before Finalize.
	ErrLocked = errors.New("chunk model is locked")

	// ErrInvalidChunkSize is returned for a chunk size below one.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrDanglingChunk is returned by Finalize for a non-terminal chunk that never
	// had a successor registered.
	ErrDanglingChunk = errors.New("non-terminal chunk has no successors")
)
