package service

import (
	"context"
	"errors"

	"pinky/internal/promise/models"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/platform/audit"
	"pinky/pkg/platform/secrets"
	"pinky/pkg/platform/sentinel"
	"pinky/pkg/requestcontext"
)

// IssueShare mints a fresh share for the promise. Every call produces a new
// share with its own token; shares are deliberately never deduplicated, since
// each one is handed to a single counterparty.
func (s *Service) IssueShare(ctx context.Context, promiseID id.PromiseID, requesterID id.UserID) (*models.Share, error) {
	promise, err := s.GetPromise(ctx, promiseID)
	if err != nil {
		return nil, err
	}
	if promise.OwnerID != requesterID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the promise owner may share it")
	}

	share := &models.Share{
		PromiseID:   promiseID,
		CheckStatus: models.CheckKept,
		Score:       models.DefaultScore,
		Feedback:    models.DefaultFeedback,
		CreatedAt:   requestcontext.Now(ctx),
	}

	// The unique index on shares.token is the real uniqueness guarantee;
	// regeneration just keeps a freak collision from surfacing to the caller.
	for attempt := 0; attempt < tokenIssueAttempts; attempt++ {
		token, err := secrets.Generate()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint share token")
		}
		share.ID = id.NewShareID()
		share.Token = token

		err = s.shares.Create(ctx, share)
		if errors.Is(err, sentinel.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create share")
		}

		if s.metrics != nil {
			s.metrics.SharesIssued.Inc()
		}
		s.emitAudit(ctx, audit.Event{
			Action:  audit.ActionShareIssued,
			Subject: share.ID.String(),
			ActorID: requesterID.String(),
		})
		return share, nil
	}
	return nil, dErrors.New(dErrors.CodeInternal, "could not mint a unique share token")
}

// ResolveShare loads a share by ID or token.
func (s *Service) ResolveShare(ctx context.Context, ref models.ShareRef) (*models.Share, error) {
	var (
		share *models.Share
		err   error
	)
	switch {
	case ref.Token != "":
		share, err = s.shares.FindByToken(ctx, ref.Token)
	case !ref.ID.IsNil():
		share, err = s.shares.FindByID(ctx, ref.ID)
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "share reference is required")
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "share not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load share")
	}
	return share, nil
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
