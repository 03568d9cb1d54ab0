// Package models defines the user entity. Only the slice this service owns
// lives here: identity issuance and profile management are external.
package models

import (
	"strings"
	"time"

	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
)

// User is a registered participant. Balance is the running point total,
// mutated exclusively by the ledger store in the same transaction as the
// ledger entry that caused the change.
type User struct {
	ID        id.UserID `json:"id"`
	Nickname  string    `json:"nickname"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest is the JSON body for POST /user.
type CreateUserRequest struct {
	Nickname string `json:"nickname"`
}

func (r *CreateUserRequest) Validate() error {
	if strings.TrimSpace(r.Nickname) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "nickname is required")
	}
	return nil
}
