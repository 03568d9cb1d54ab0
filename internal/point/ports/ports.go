// Package ports declares the storage interfaces the point services depend on.
package ports

import (
	"context"

	"pinky/internal/point/models"
	id "pinky/pkg/domain"
)

// PolicyStore persists the point-policy catalog. Create and Update return
// sentinel.ErrConflict on a duplicate name; Delete returns
// sentinel.ErrReferenced while ledger entries still point at the policy.
type PolicyStore interface {
	Create(ctx context.Context, policy *models.PointPolicy) error
	FindByID(ctx context.Context, policyID id.PolicyID) (*models.PointPolicy, error)
	List(ctx context.Context) ([]*models.PointPolicy, error)
	Update(ctx context.Context, policy *models.PointPolicy) error
	Delete(ctx context.Context, policyID id.PolicyID) error
}

// LedgerStore owns the disbursement transaction. Disburse writes the ledger
// entry and applies the delta to the user's balance atomically: it returns
// sentinel.ErrAlreadyPaid when the activity was already disbursed,
// sentinel.ErrInsufficientBalance when the delta would take the balance below
// zero, and sentinel.ErrNotFound when the user does not exist. On any error
// nothing is written.
type LedgerStore interface {
	Disburse(ctx context.Context, entry *models.LedgerEntry) error
	FindByActivity(ctx context.Context, activity models.ActivityRef) (*models.LedgerEntry, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.LedgerEntry, error)
}

// UserDirectory answers existence checks against the user module.
type UserDirectory interface {
	Exists(ctx context.Context, userID id.UserID) (bool, error)
}
