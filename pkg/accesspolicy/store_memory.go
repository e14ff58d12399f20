package accesspolicy

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the default policy store implementation, also used
// as a test fixture
type MemoryStore struct {
	policies map[string]ResourcePolicy

	sync.RWMutex
}

// NewMemoryStore returns an initialized in-memory policy store
func NewMemoryStore() Store {
	return &MemoryStore{
		policies: make(map[string]ResourcePolicy),
	}
}

// UpsertPolicy stores a deep copy of a given policy
func (s *MemoryStore) UpsertPolicy(ctx context.Context, p ResourcePolicy) (ResourcePolicy, error) {
	if p.ResourceID == "" {
		return p, ErrNoResourceID
	}

	s.Lock()
	s.policies[p.ResourceID] = p.Clone()
	s.Unlock()

	return p, nil
}

// FetchByResourceID retrieves a policy by the resource it governs
func (s *MemoryStore) FetchByResourceID(ctx context.Context, resourceID string) (ResourcePolicy, error) {
	s.RLock()
	p, ok := s.policies[resourceID]
	s.RUnlock()

	if !ok {
		return p, ErrPolicyNotFound
	}

	return p.Clone(), nil
}

// FetchAll returns every stored policy ordered by resource id
func (s *MemoryStore) FetchAll(ctx context.Context) ([]ResourcePolicy, error) {
	s.RLock()
	ps := make([]ResourcePolicy, 0, len(s.policies))
	for _, p := range s.policies {
		ps = append(ps, p.Clone())
	}
	s.RUnlock()

	sort.Slice(ps, func(i, j int) bool { return ps[i].ResourceID < ps[j].ResourceID })

	return ps, nil
}

// DeleteByResourceID removes a policy from the store
func (s *MemoryStore) DeleteByResourceID(ctx context.Context, resourceID string) error {
	s.Lock()
	_, ok := s.policies[resourceID]
	delete(s.policies, resourceID)
	s.Unlock()

	if !ok {
		return ErrPolicyNotFound
	}

	return nil
}
