package evaluation

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

// Commit inserts the evaluation and applies the write-once share fields in
// one transaction. The unique index on evaluations(share_id) is the real
// guard: under concurrent submissions the second insert fails at commit time
// and is reported as a conflict, never as a generic failure.
func (s *Postgres) Commit(ctx context.Context, evaluation *models.Evaluation, share *models.Share) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin evaluation commit: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var userID, guestID any
	if evaluation.UserID != nil {
		userID = uuid.UUID(*evaluation.UserID)
	}
	if evaluation.GuestID != nil {
		guestID = uuid.UUID(*evaluation.GuestID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO evaluations (id, share_id, evaluator_kind, user_id, guest_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(evaluation.ID), uuid.UUID(evaluation.ShareID), string(evaluation.Kind),
		userID, guestID, evaluation.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE shares SET check_status = $1, score = $2, feedback = $3
		WHERE id = $4`,
		int(share.CheckStatus), share.Score, share.Feedback, uuid.UUID(share.ID),
	)
	if err != nil {
		return fmt.Errorf("apply share verdict: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("commit evaluation: %w", err)
	}
	return nil
}

func (s *Postgres) FindByShareID(ctx context.Context, shareID id.ShareID) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	var rawID, rawShare uuid.UUID
	var kind string
	var userID, guestID uuid.NullUUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, share_id, evaluator_kind, user_id, guest_id, created_at
		FROM evaluations WHERE share_id = $1`,
		uuid.UUID(shareID),
	).Scan(&rawID, &rawShare, &kind, &userID, &guestID, &evaluation.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find evaluation: %w", err)
	}
	evaluation.ID = id.EvaluationID(rawID)
	evaluation.ShareID = id.ShareID(rawShare)
	evaluation.Kind = models.EvaluatorKind(kind)
	if userID.Valid {
		parsed := id.UserID(userID.UUID)
		evaluation.UserID = &parsed
	}
	if guestID.Valid {
		parsed := id.GuestID(guestID.UUID)
		evaluation.GuestID = &parsed
	}
	return &evaluation, nil
}
