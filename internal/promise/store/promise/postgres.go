package promise

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

func (s *Postgres) Create(ctx context.Context, promise *models.Promise) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO promises (id, owner_id, title, body, prom_date, place_name, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(promise.ID), uuid.UUID(promise.OwnerID), promise.Title, promise.Body,
		promise.PromDate, promise.PlaceName, promise.Latitude, promise.Longitude,
		promise.CreatedAt, promise.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create promise: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, promiseID id.PromiseID) (*models.Promise, error) {
	var promise models.Promise
	var rawID, rawOwner uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, body, prom_date, place_name, latitude, longitude, created_at, updated_at
		FROM promises WHERE id = $1`,
		uuid.UUID(promiseID),
	).Scan(&rawID, &rawOwner, &promise.Title, &promise.Body, &promise.PromDate,
		&promise.PlaceName, &promise.Latitude, &promise.Longitude,
		&promise.CreatedAt, &promise.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find promise: %w", err)
	}
	promise.ID = id.PromiseID(rawID)
	promise.OwnerID = id.UserID(rawOwner)
	return &promise, nil
}

// Delete removes the promise; shares and evaluations go with it via ON DELETE
// CASCADE.
func (s *Postgres) Delete(ctx context.Context, promiseID id.PromiseID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM promises WHERE id = $1`, uuid.UUID(promiseID))
	if err != nil {
		return fmt.Errorf("delete promise: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete promise: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
