package service

import (
	"context"
	"errors"
	"strings"

	"pinky/internal/point/models"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/platform/audit"
	"pinky/pkg/platform/sentinel"
	"pinky/pkg/requestcontext"
)

// CreatePolicy registers a new point policy. Names are unique across the
// catalog.
func (s *Service) CreatePolicy(ctx context.Context, req models.CreatePolicyRequest) (*models.PointPolicy, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	policy := &models.PointPolicy{
		ID:        id.NewPolicyID(),
		Name:      strings.TrimSpace(req.PointName),
		Delta:     *req.UpdatePoint,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a policy with that name already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create policy")
	}
	return policy, nil
}

// GetPolicy loads a policy by ID.
func (s *Service) GetPolicy(ctx context.Context, policyID id.PolicyID) (*models.PointPolicy, error) {
	policy, err := s.policies.FindByID(ctx, policyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policy")
	}
	return policy, nil
}

// ListPolicies returns the whole catalog, ordered by name.
func (s *Service) ListPolicies(ctx context.Context) ([]*models.PointPolicy, error) {
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	return policies, nil
}

// UpdatePolicy applies a partial update. Renaming onto an existing name is a
// conflict. Existing ledger entries keep the delta they were written with.
func (s *Service) UpdatePolicy(ctx context.Context, policyID id.PolicyID, req models.UpdatePolicyRequest) (*models.PointPolicy, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	policy, err := s.GetPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if req.PointName != nil {
		policy.Name = strings.TrimSpace(*req.PointName)
	}
	if req.UpdatePoint != nil {
		policy.Delta = *req.UpdatePoint
	}
	policy.UpdatedAt = requestcontext.Now(ctx)

	if err := s.policies.Update(ctx, policy); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "a policy with that name already exists")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update policy")
	}

	s.emitAudit(ctx, audit.Event{
		Action:  audit.ActionPolicyUpdated,
		Subject: policy.ID.String(),
		Outcome: policy.Name,
	})
	return policy, nil
}

// DeletePolicy removes a policy. A policy with ledger entries against it is
// kept: the ledger is append-only and its rows must keep resolving.
func (s *Service) DeletePolicy(ctx context.Context, policyID id.PolicyID) error {
	if err := s.policies.Delete(ctx, policyID); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "policy not found")
		case errors.Is(err, sentinel.ErrReferenced):
			return dErrors.New(dErrors.CodeConflict, "policy has ledger entries and cannot be deleted")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete policy")
	}

	s.emitAudit(ctx, audit.Event{
		Action:  audit.ActionPolicyDeleted,
		Subject: policyID.String(),
	})
	return nil
}
