package guest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pinky/internal/promise/models"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, guest *models.GuestRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guests (id, display_name, created_at)
		VALUES ($1, $2, $3)`,
		uuid.UUID(guest.ID), guest.DisplayName, guest.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create guest: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, guestID id.GuestID) (*models.GuestRecord, error) {
	var guest models.GuestRecord
	var rawID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, created_at FROM guests WHERE id = $1`,
		uuid.UUID(guestID),
	).Scan(&rawID, &guest.DisplayName, &guest.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find guest: %w", err)
	}
	guest.ID = id.GuestID(rawID)
	return &guest, nil
}
