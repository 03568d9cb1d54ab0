// Package store persists users.
package store

import (
	"context"

	"pinky/internal/user/models"
	id "pinky/pkg/domain"
)

// Store is the user persistence interface.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	// FindByID returns sentinel.ErrNotFound when absent.
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	Exists(ctx context.Context, userID id.UserID) (bool, error)
}
