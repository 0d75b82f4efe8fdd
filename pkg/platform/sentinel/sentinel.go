package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors with the right
// code.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: the notification or principal does not exist in the store
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrUnavailable: the store is unreachable or a transaction aborted cleanly
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
