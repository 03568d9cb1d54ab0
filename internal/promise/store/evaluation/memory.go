// Package evaluation owns the atomic evaluation commit: the evaluation row
// and the write-once share fields land together or not at all, and at most
// one evaluation ever exists per share.
package evaluation

import (
	"context"
	"sync"

	"pinky/internal/promise/models"
	sharestore "pinky/internal/promise/store/share"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

// Memory backs evaluations with a map and applies share updates through the
// share memory store. The commit mutex is what makes the check-then-insert
// atomic; two concurrent commits for one share see exactly one success.
type Memory struct {
	mu          sync.Mutex
	evaluations map[id.ShareID]*models.Evaluation
	shares      *sharestore.Memory
}

func NewMemory(shares *sharestore.Memory) *Memory {
	return &Memory{
		evaluations: make(map[id.ShareID]*models.Evaluation),
		shares:      shares,
	}
}

func (s *Memory) Commit(_ context.Context, evaluation *models.Evaluation, share *models.Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.evaluations[evaluation.ShareID]; exists {
		return sentinel.ErrConflict
	}
	clone := *evaluation
	s.evaluations[evaluation.ShareID] = &clone
	s.shares.Apply(share)
	return nil
}

func (s *Memory) FindByShareID(_ context.Context, shareID id.ShareID) (*models.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evaluation, ok := s.evaluations[shareID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *evaluation
	return &clone, nil
}
