package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"pinky/internal/point/models"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, policy *models.PointPolicy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO point_policies (id, name, delta, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(policy.ID), policy.Name, policy.Delta, policy.CreatedAt, policy.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create point policy: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, policyID id.PolicyID) (*models.PointPolicy, error) {
	var policy models.PointPolicy
	var rawID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, delta, created_at, updated_at
		FROM point_policies WHERE id = $1`, uuid.UUID(policyID),
	).Scan(&rawID, &policy.Name, &policy.Delta, &policy.CreatedAt, &policy.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find point policy: %w", err)
	}
	policy.ID = id.PolicyID(rawID)
	return &policy, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.PointPolicy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, delta, created_at, updated_at
		FROM point_policies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list point policies: %w", err)
	}
	defer rows.Close()

	var out []*models.PointPolicy
	for rows.Next() {
		var policy models.PointPolicy
		var rawID uuid.UUID
		if err := rows.Scan(&rawID, &policy.Name, &policy.Delta, &policy.CreatedAt, &policy.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan point policy: %w", err)
		}
		policy.ID = id.PolicyID(rawID)
		out = append(out, &policy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list point policies: %w", err)
	}
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, policy *models.PointPolicy) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE point_policies
		SET name = $2, delta = $3, updated_at = $4
		WHERE id = $1`,
		uuid.UUID(policy.ID), policy.Name, policy.Delta, policy.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update point policy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update point policy: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, policyID id.PolicyID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM point_policies WHERE id = $1`, uuid.UUID(policyID))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return sentinel.ErrReferenced
	}
	if err != nil {
		return fmt.Errorf("delete point policy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete point policy: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
