package models

import "errors"

var (
	// ErrGeneration marks a failed or unusable language model call.
	ErrGeneration = errors.New("generation failed")
	// ErrRetrieval marks a retrieval where every query variant failed.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrIndexing marks a document that failed to validate, embed or index.
	// Non-fatal for the batch; reported per item.
	ErrIndexing = errors.New("indexing failed")
	// ErrTimeout marks a caller deadline exceeded during an external call.
	ErrTimeout = errors.New("deadline exceeded")
)
