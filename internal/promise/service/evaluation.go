package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"pinky/internal/platform/config"
	"pinky/internal/promise/models"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/platform/audit"
	"pinky/pkg/platform/sentinel"
	"pinky/pkg/requestcontext"
)

// EvaluationResult is what a successful submission returns. SignupHint is a
// presentation nudge for guests, not a domain invariant.
type EvaluationResult struct {
	Share      *models.Share
	Evaluation *models.Evaluation
	SignupHint bool
}

// SubmitEvaluation records the single verdict for a share.
//
// The flow is: resolve share, check the evaluation window against the parent
// promise, resolve the evaluator (registered user or guest, minting a guest
// when asked), then commit the evaluation record together with the share's
// write-once fields. The store commit is the atomicity and uniqueness
// boundary; a concurrent duplicate surfaces as a conflict here, never as two
// recorded verdicts.
func (s *Service) SubmitEvaluation(ctx context.Context, ref models.ShareRef, identity models.EvaluatorIdentity, outcome models.Outcome) (*EvaluationResult, error) {
	ctx, span := s.tracer.Start(ctx, "promise.SubmitEvaluation")
	defer span.End()

	share, err := s.ResolveShare(ctx, ref)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("share_id", share.ID.String()))

	promise, err := s.GetPromise(ctx, share.PromiseID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if promise.PromDate != nil && now.After(promise.PromDate.Add(config.EvaluationWindow)) {
		return nil, dErrors.New(dErrors.CodeWindowExpired, "evaluation window has expired")
	}

	evaluation := &models.Evaluation{
		ID:        id.NewEvaluationID(),
		ShareID:   share.ID,
		CreatedAt: now,
	}
	signupHint := false

	switch identity.Kind {
	case models.EvaluatorRegistered:
		exists, err := s.users.Exists(ctx, identity.UserID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check evaluator")
		}
		if !exists {
			return nil, dErrors.New(dErrors.CodeNotFound, "evaluator not found")
		}
		evaluation.Kind = models.EvaluatorRegistered
		userID := identity.UserID
		evaluation.UserID = &userID

	case models.EvaluatorGuest:
		guestID, err := s.resolveGuest(ctx, identity, now)
		if err != nil {
			return nil, err
		}
		evaluation.Kind = models.EvaluatorGuest
		evaluation.GuestID = &guestID
		signupHint = true

	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "evaluator identity is required")
	}

	applyOutcome(share, outcome)

	if err := s.evaluations.Commit(ctx, evaluation, share); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "share already evaluated")
		}
		s.logger.ErrorContext(ctx, "evaluation commit failed",
			"share_id", share.ID.String(),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record evaluation")
	}

	if s.metrics != nil {
		s.metrics.Evaluations.WithLabelValues(outcome.CheckStatus.String()).Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Action:  audit.ActionEvaluationRecorded,
		Subject: share.ID.String(),
		ActorID: evaluatorLabel(evaluation),
		Outcome: outcome.CheckStatus.String(),
	})

	return &EvaluationResult{Share: share, Evaluation: evaluation, SignupHint: signupHint}, nil
}

// resolveGuest reuses a caller-supplied guest or mints a new one. A supplied
// guest ID must exist; minting defaults the display name.
func (s *Service) resolveGuest(ctx context.Context, identity models.EvaluatorIdentity, now time.Time) (id.GuestID, error) {
	if !identity.GuestID.IsNil() {
		if _, err := s.guests.FindByID(ctx, identity.GuestID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return id.GuestID{}, dErrors.New(dErrors.CodeNotFound, "guest not found")
			}
			return id.GuestID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load guest")
		}
		return identity.GuestID, nil
	}

	name := strings.TrimSpace(identity.GuestName)
	if name == "" {
		name = models.DefaultGuestName
	}
	guest := &models.GuestRecord{
		ID:          id.NewGuestID(),
		DisplayName: name,
		CreatedAt:   now,
	}
	if err := s.guests.Create(ctx, guest); err != nil {
		return id.GuestID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint guest")
	}
	return guest.ID, nil
}

// applyOutcome sets the write-once share fields. Score outside [1,5] and
// blank feedback keep the share's defaults; only the check status is
// unconditionally required and already validated at the boundary.
func applyOutcome(share *models.Share, outcome models.Outcome) {
	share.CheckStatus = outcome.CheckStatus
	if outcome.Score >= 1 && outcome.Score <= 5 {
		share.Score = outcome.Score
	}
	if strings.TrimSpace(outcome.Feedback) != "" {
		share.Feedback = outcome.Feedback
	}
}

func evaluatorLabel(evaluation *models.Evaluation) string {
	if evaluation.UserID != nil {
		return evaluation.UserID.String()
	}
	if evaluation.GuestID != nil {
		return "guest:" + evaluation.GuestID.String()
	}
	return ""
}
