// Package policy persists the point-policy catalog. Policy names are unique;
// a policy cannot be deleted while ledger entries still reference it.
package policy

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pinky/internal/point/models"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/sentinel"
)

type Memory struct {
	mu       sync.RWMutex
	policies map[id.PolicyID]*models.PointPolicy
	byName   map[string]id.PolicyID

	// refCounts mirrors the ledger's foreign-key RESTRICT. The ledger memory
	// store increments it on disbursement.
	refCounts map[id.PolicyID]int
}

func NewMemory() *Memory {
	return &Memory{
		policies:  make(map[id.PolicyID]*models.PointPolicy),
		byName:    make(map[string]id.PolicyID),
		refCounts: make(map[id.PolicyID]int),
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *Memory) Create(_ context.Context, policy *models.PointPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byName[nameKey(policy.Name)]; taken {
		return sentinel.ErrConflict
	}
	clone := *policy
	s.policies[policy.ID] = &clone
	s.byName[nameKey(policy.Name)] = policy.ID
	return nil
}

func (s *Memory) FindByID(_ context.Context, policyID id.PolicyID) (*models.PointPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policy, ok := s.policies[policyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *policy
	return &clone, nil
}

func (s *Memory) List(_ context.Context) ([]*models.PointPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.PointPolicy, 0, len(s.policies))
	for _, policy := range s.policies {
		clone := *policy
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Memory) Update(_ context.Context, policy *models.PointPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.policies[policy.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if taken, collides := s.byName[nameKey(policy.Name)]; collides && taken != policy.ID {
		return sentinel.ErrConflict
	}
	delete(s.byName, nameKey(existing.Name))
	clone := *policy
	s.policies[policy.ID] = &clone
	s.byName[nameKey(policy.Name)] = policy.ID
	return nil
}

func (s *Memory) Delete(_ context.Context, policyID id.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy, ok := s.policies[policyID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if s.refCounts[policyID] > 0 {
		return sentinel.ErrReferenced
	}
	delete(s.byName, nameKey(policy.Name))
	delete(s.policies, policyID)
	return nil
}

// AddRef records one ledger entry referencing the policy. Called by the
// ledger memory store inside its disbursement lock.
func (s *Memory) AddRef(policyID id.PolicyID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refCounts[policyID]++
}
