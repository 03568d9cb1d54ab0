package service

import (
	"context"
	"errors"

	"pinky/internal/promise/models"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/platform/sentinel"
	"pinky/pkg/requestcontext"
)

// CreatePromise registers a new promise owned by the caller.
func (s *Service) CreatePromise(ctx context.Context, ownerID id.UserID, req models.CreatePromiseRequest) (*models.Promise, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	exists, err := s.users.Exists(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check owner")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "owner not found")
	}

	now := requestcontext.Now(ctx)
	promise := &models.Promise{
		ID:        id.NewPromiseID(),
		OwnerID:   ownerID,
		Title:     req.Title,
		Body:      req.Body,
		PromDate:  req.PromDate,
		PlaceName: req.PlaceName,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.promises.Create(ctx, promise); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create promise")
	}
	return promise, nil
}

// GetPromise loads a promise by ID.
func (s *Service) GetPromise(ctx context.Context, promiseID id.PromiseID) (*models.Promise, error) {
	promise, err := s.promises.FindByID(ctx, promiseID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "promise not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load promise")
	}
	return promise, nil
}

// DeletePromise removes a promise. Only the owner may delete; shares and
// their evaluation cascade at the store.
func (s *Service) DeletePromise(ctx context.Context, promiseID id.PromiseID, requesterID id.UserID) error {
	promise, err := s.GetPromise(ctx, promiseID)
	if err != nil {
		return err
	}
	if promise.OwnerID != requesterID {
		return dErrors.New(dErrors.CodeForbidden, "only the promise owner may delete it")
	}
	if err := s.promises.Delete(ctx, promiseID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "promise not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete promise")
	}
	return nil
}
