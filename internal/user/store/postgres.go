package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pinky/internal/user/models"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

// Postgres persists users in PostgreSQL. Balance writes happen in the ledger
// store's transaction, never here.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, nickname, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(user.ID), user.Nickname, user.Balance, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	var user models.User
	var rawID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, nickname, balance, created_at, updated_at
		FROM users WHERE id = $1`,
		uuid.UUID(userID),
	).Scan(&rawID, &user.Nickname, &user.Balance, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	user.ID = id.UserID(rawID)
	return &user, nil
}

func (s *Postgres) Exists(ctx context.Context, userID id.UserID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		uuid.UUID(userID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}
