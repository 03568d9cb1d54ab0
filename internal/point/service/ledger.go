package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"pinky/internal/point/models"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/platform/audit"
	"pinky/pkg/platform/sentinel"
	"pinky/pkg/requestcontext"
)

// Disburse pays out (or charges) a policy's delta for a single activity.
//
// The activity reference is the idempotency key: retries and concurrent
// duplicates for the same activity get a conflict, never a second entry. The
// delta is read from the policy at disbursement time and frozen into the
// entry, so later policy edits never rewrite history. The store applies the
// entry and the balance change atomically and refuses any delta that would
// take the balance below zero.
func (s *Service) Disburse(ctx context.Context, userID id.UserID, policyID id.PolicyID, activity models.ActivityRef, reason string) (*models.LedgerEntry, error) {
	ctx, span := s.tracer.Start(ctx, "point.Disburse")
	defer span.End()

	if err := activity.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("activity_type", string(activity.Type)),
		attribute.String("activity_id", activity.ID),
	)

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check user")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}

	policy, err := s.GetPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		ID:        id.NewLedgerEntryID(),
		UserID:    userID,
		PolicyID:  policy.ID,
		Activity:  activity,
		Delta:     policy.Delta,
		Reason:    reason,
		CreatedAt: requestcontext.Now(ctx),
	}

	if err := s.ledger.Disburse(ctx, entry); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyPaid):
			s.refuse(ctx, entry, "already_paid")
			return nil, dErrors.New(dErrors.CodeConflict, "activity has already been disbursed")
		case errors.Is(err, sentinel.ErrInsufficientBalance):
			s.refuse(ctx, entry, "insufficient_balance")
			return nil, dErrors.New(dErrors.CodeInsufficientFunds, "balance would fall below zero")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		s.logger.ErrorContext(ctx, "disbursement failed",
			"user_id", userID.String(),
			"policy_id", policy.ID.String(),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to disburse points")
	}

	if s.metrics != nil {
		s.metrics.Disbursements.Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Action:  audit.ActionPointsDisbursed,
		Subject: entry.ID.String(),
		ActorID: userID.String(),
		Outcome: policy.Name,
	})
	return entry, nil
}

// LedgerForUser lists a user's entries in disbursement order.
func (s *Service) LedgerForUser(ctx context.Context, userID id.UserID) ([]*models.LedgerEntry, error) {
	entries, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ledger entries")
	}
	return entries, nil
}

func (s *Service) refuse(ctx context.Context, entry *models.LedgerEntry, reason string) {
	if s.metrics != nil {
		s.metrics.DisbursementConflicts.Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Action:  audit.ActionDisbursementRefused,
		Subject: string(entry.Activity.Type) + ":" + entry.Activity.ID,
		ActorID: entry.UserID.String(),
		Reason:  reason,
	})
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Device = requestcontext.Device(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
