package ledger

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

// Disburse runs entry insert and balance update in one transaction. The
// unique index on (activity_type, activity_id) rejects the second writer for
// an activity; the conditional balance update enforces the floor without a
// read-modify-write race.
func (s *Postgres) Disburse(ctx context.Context, entry *models.LedgerEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin disburse: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, user_id, policy_id, activity_type, activity_id, delta, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(entry.ID), uuid.UUID(entry.UserID), uuid.UUID(entry.PolicyID),
		string(entry.Activity.Type), entry.Activity.ID, entry.Delta, entry.Reason, entry.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return sentinel.ErrAlreadyPaid
		case foreignKeyViolation:
			// The user or policy row is gone; surface as not found.
			return sentinel.ErrNotFound
		}
	}
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET balance = balance + $1, updated_at = $2
		WHERE id = $3 AND balance + $1 >= 0`,
		entry.Delta, entry.CreatedAt, uuid.UUID(entry.UserID),
	)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	if affected == 0 {
		// Either the user is missing or the floor refused the delta.
		var exists bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
			uuid.UUID(entry.UserID),
		).Scan(&exists); err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInsufficientBalance
	}

	if err := tx.Commit(); err != nil {
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyPaid
		}
		return fmt.Errorf("commit disburse: %w", err)
	}
	return nil
}

func (s *Postgres) FindByActivity(ctx context.Context, activity models.ActivityRef) (*models.LedgerEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, policy_id, activity_type, activity_id, delta, reason, created_at
		FROM ledger_entries WHERE activity_type = $1 AND activity_id = $2`,
		string(activity.Type), activity.ID,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ledger entry: %w", err)
	}
	return entry, nil
}

func (s *Postgres) ListByUser(ctx context.Context, userID id.UserID) ([]*models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, policy_id, activity_type, activity_id, delta, reason, created_at
		FROM ledger_entries WHERE user_id = $1 ORDER BY created_at`,
		uuid.UUID(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []*models.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	var rawID, rawUser, rawPolicy uuid.UUID
	var activityType string
	err := row.Scan(
		&rawID, &rawUser, &rawPolicy, &activityType, &entry.Activity.ID,
		&entry.Delta, &entry.Reason, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.ID = id.LedgerEntryID(rawID)
	entry.UserID = id.UserID(rawUser)
	entry.PolicyID = id.PolicyID(rawPolicy)
	entry.Activity.Type = models.ActivityType(activityType)
	return &entry, nil
}
