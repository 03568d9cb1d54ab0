package share

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"pinky/internal/promise/models"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, share *models.Share) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shares (id, promise_id, token, check_status, score, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(share.ID), uuid.UUID(share.PromiseID), share.Token,
		int(share.CheckStatus), share.Score, share.Feedback, share.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create share: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, shareID id.ShareID) (*models.Share, error) {
	return s.findOne(ctx, `
		SELECT id, promise_id, token, check_status, score, feedback, created_at
		FROM shares WHERE id = $1`, uuid.UUID(shareID))
}

func (s *Postgres) FindByToken(ctx context.Context, token string) (*models.Share, error) {
	return s.findOne(ctx, `
		SELECT id, promise_id, token, check_status, score, feedback, created_at
		FROM shares WHERE token = $1`, token)
}

func (s *Postgres) findOne(ctx context.Context, query string, arg any) (*models.Share, error) {
	var share models.Share
	var rawID, rawPromise uuid.UUID
	var status int
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&rawID, &rawPromise, &share.Token, &status, &share.Score, &share.Feedback, &share.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find share: %w", err)
	}
	share.ID = id.ShareID(rawID)
	share.PromiseID = id.PromiseID(rawPromise)
	share.CheckStatus = models.CheckStatus(status)
	return &share, nil
}
