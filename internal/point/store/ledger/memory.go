// Package ledger persists disbursement entries. The activity key is unique:
// a second disbursement for the same activity is refused, never doubled.
package ledger

import (
	"context"
	"sort"
	"sync"

	"pinky/internal/point/models"
	policystore "pinky/internal/point/store/policy"
	userstore "pinky/internal/user/store"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

type activityKey struct {
	typ models.ActivityType
	id  string
}

// Memory keeps ledger entries in process and applies balance deltas through
// the user memory store. Disburse holds a single mutex across the duplicate
// check, the balance adjustment, and the entry write, so a concurrent
// duplicate sees either the committed entry or nothing.
type Memory struct {
	mu         sync.RWMutex
	entries    map[id.LedgerEntryID]*models.LedgerEntry
	byActivity map[activityKey]id.LedgerEntryID
	users      *userstore.Memory
	policies   *policystore.Memory
}

func NewMemory(users *userstore.Memory, policies *policystore.Memory) *Memory {
	return &Memory{
		entries:    make(map[id.LedgerEntryID]*models.LedgerEntry),
		byActivity: make(map[activityKey]id.LedgerEntryID),
		users:      users,
		policies:   policies,
	}
}

func (s *Memory) Disburse(ctx context.Context, entry *models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := activityKey{typ: entry.Activity.Type, id: entry.Activity.ID}
	if _, paid := s.byActivity[key]; paid {
		return sentinel.ErrAlreadyPaid
	}

	if _, err := s.users.AdjustBalance(ctx, entry.UserID, entry.Delta); err != nil {
		return err
	}

	clone := *entry
	s.entries[entry.ID] = &clone
	s.byActivity[key] = entry.ID
	s.policies.AddRef(entry.PolicyID)
	return nil
}

func (s *Memory) FindByActivity(_ context.Context, activity models.ActivityRef) (*models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entryID, ok := s.byActivity[activityKey{typ: activity.Type, id: activity.ID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.entries[entryID]
	return &clone, nil
}

func (s *Memory) ListByUser(_ context.Context, userID id.UserID) ([]*models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.LedgerEntry
	for _, entry := range s.entries {
		if entry.UserID == userID {
			clone := *entry
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
