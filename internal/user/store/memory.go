package store

import (
	"context"
	"sync"

	"pinky/internal/user/models"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

// Memory is the in-memory user store. The ledger memory store reaches into it
// through AdjustBalance, which carries the balance floor.
type Memory struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[id.UserID]*models.User)}
}

func (s *Memory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *Memory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *Memory) Exists(_ context.Context, userID id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok, nil
}

// AdjustBalance applies a signed delta, refusing changes that would take the
// balance below zero. Atomic under the store mutex.
func (s *Memory) AdjustBalance(_ context.Context, userID id.UserID, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	next := user.Balance + delta
	if next < 0 {
		return user.Balance, sentinel.ErrInsufficientBalance
	}
	user.Balance = next
	return next, nil
}
