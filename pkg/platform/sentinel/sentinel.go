package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: a storage uniqueness constraint rejected the write
// - ErrAlreadyPaid: a ledger entry for the activity already exists
// - ErrInsufficientBalance: the balance floor rejected a negative delta
// - ErrReferenced: the row is still referenced and cannot be deleted
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrAlreadyPaid         = errors.New("already paid")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrReferenced          = errors.New("still referenced")
	ErrUnavailable         = errors.New("unavailable")
)
