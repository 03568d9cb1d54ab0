// Package guest persists ephemeral evaluator identities.
package guest

import (
	"context"
	"sync"

	"pinky/internal/promise/models"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

type Memory struct {
	mu     sync.RWMutex
	guests map[id.GuestID]*models.GuestRecord
}

func NewMemory() *Memory {
	return &Memory{guests: make(map[id.GuestID]*models.GuestRecord)}
}

func (s *Memory) Create(_ context.Context, guest *models.GuestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *guest
	s.guests[guest.ID] = &clone
	return nil
}

func (s *Memory) FindByID(_ context.Context, guestID id.GuestID) (*models.GuestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	guest, ok := s.guests[guestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *guest
	return &clone, nil
}
