// Package share persists share rows. Tokens are unique across all shares;
// Create reports a collision so the issuer can regenerate.
package share

import (
	"context"
	"sync"

	"pinky/internal/promise/models"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

type Memory struct {
	mu      sync.RWMutex
	shares  map[id.ShareID]*models.Share
	byToken map[string]id.ShareID
}

func NewMemory() *Memory {
	return &Memory{
		shares:  make(map[id.ShareID]*models.Share),
		byToken: make(map[string]id.ShareID),
	}
}

func (s *Memory) Create(_ context.Context, share *models.Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byToken[share.Token]; taken {
		return sentinel.ErrConflict
	}
	clone := *share
	s.shares[share.ID] = &clone
	s.byToken[share.Token] = share.ID
	return nil
}

func (s *Memory) FindByID(_ context.Context, shareID id.ShareID) (*models.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	share, ok := s.shares[shareID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *share
	return &clone, nil
}

func (s *Memory) FindByToken(_ context.Context, token string) (*models.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shareID, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.shares[shareID]
	return &clone, nil
}

// Apply overwrites the evaluated fields. Called only by the evaluation memory
// store while it holds its commit lock.
func (s *Memory) Apply(share *models.Share) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.shares[share.ID]; ok {
		existing.CheckStatus = share.CheckStatus
		existing.Score = share.Score
		existing.Feedback = share.Feedback
	}
}
