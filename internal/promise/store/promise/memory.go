// Package promise persists promise aggregates.
package promise

import (
	"context"
	"sync"

	"pinky/internal/promise/models"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

type Memory struct {
	mu       sync.RWMutex
	promises map[id.PromiseID]*models.Promise
}

func NewMemory() *Memory {
	return &Memory{promises: make(map[id.PromiseID]*models.Promise)}
}

func (s *Memory) Create(_ context.Context, promise *models.Promise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *promise
	s.promises[promise.ID] = &clone
	return nil
}

func (s *Memory) FindByID(_ context.Context, promiseID id.PromiseID) (*models.Promise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	promise, ok := s.promises[promiseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *promise
	return &clone, nil
}

func (s *Memory) Delete(_ context.Context, promiseID id.PromiseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.promises[promiseID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.promises, promiseID)
	return nil
}
