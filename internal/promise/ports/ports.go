// Package ports defines the store interfaces consumed by the promise
// services. Interfaces live here because both the service and the composition
// root need them.
package ports

import (
	"context"

	"pinky/internal/promise/models"
	id "pinky/pkg/domain"
)

// PromiseStore persists promises.
type PromiseStore interface {
	Create(ctx context.Context, promise *models.Promise) error
	// FindByID returns sentinel.ErrNotFound when absent.
	FindByID(ctx context.Context, promiseID id.PromiseID) (*models.Promise, error)
	// Delete removes the promise; shares and evaluations cascade.
	Delete(ctx context.Context, promiseID id.PromiseID) error
}

// ShareStore persists shares.
type ShareStore interface {
	// Create inserts a fresh share. A token collision returns
	// sentinel.ErrConflict so the issuer can regenerate.
	Create(ctx context.Context, share *models.Share) error
	FindByID(ctx context.Context, shareID id.ShareID) (*models.Share, error)
	FindByToken(ctx context.Context, token string) (*models.Share, error)
}

// GuestStore persists ephemeral evaluator identities.
type GuestStore interface {
	Create(ctx context.Context, guest *models.GuestRecord) error
	FindByID(ctx context.Context, guestID id.GuestID) (*models.GuestRecord, error)
}

// EvaluationStore owns the atomic evaluation commit: inserting the evaluation
// record and applying the write-once share fields must happen in one
// transaction. A second commit for the same share returns
// sentinel.ErrConflict, backed by a storage uniqueness constraint so
// concurrent submissions cannot both land.
type EvaluationStore interface {
	Commit(ctx context.Context, evaluation *models.Evaluation, share *models.Share) error
	FindByShareID(ctx context.Context, shareID id.ShareID) (*models.Evaluation, error)
}

// UserDirectory is the slice of the user module the evaluation workflow
// needs: existence checks for registered evaluators.
type UserDirectory interface {
	Exists(ctx context.Context, userID id.UserID) (bool, error)
}
