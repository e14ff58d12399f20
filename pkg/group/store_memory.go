package group

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the default group store implementation, also used
// as a test fixture
type MemoryStore struct {
	groups   map[string]Group
	keyIndex map[string]string

	// membership relations indexed both ways
	groupUsers map[string]map[string]struct{}
	userGroups map[string]map[string]struct{}

	sync.RWMutex
}

// NewMemoryStore returns an initialized in-memory group store
func NewMemoryStore() Store {
	return &MemoryStore{
		groups:     make(map[string]Group),
		keyIndex:   make(map[string]string),
		groupUsers: make(map[string]map[string]struct{}),
		userGroups: make(map[string]map[string]struct{}),
	}
}

// UpsertGroup stores a group
func (s *MemoryStore) UpsertGroup(ctx context.Context, g Group) (Group, error) {
	if g.ID == "" {
		return g, ErrEmptyGroupID
	}

	s.Lock()
	s.groups[g.ID] = g
	s.keyIndex[g.Key] = g.ID
	s.Unlock()

	return g, nil
}

// FetchGroupByID retrieves a group by id
func (s *MemoryStore) FetchGroupByID(ctx context.Context, groupID string) (Group, error) {
	s.RLock()
	g, ok := s.groups[groupID]
	s.RUnlock()

	if !ok {
		return g, ErrGroupNotFound
	}

	return g, nil
}

// FetchGroupByKey retrieves a group by its machine key
func (s *MemoryStore) FetchGroupByKey(ctx context.Context, key string) (Group, error) {
	s.RLock()
	id, ok := s.keyIndex[key]
	g := s.groups[id]
	s.RUnlock()

	if !ok {
		return g, ErrGroupNotFound
	}

	return g, nil
}

// FetchAllGroups returns every stored group ordered by key
func (s *MemoryStore) FetchAllGroups(ctx context.Context) ([]Group, error) {
	s.RLock()
	gs := make([]Group, 0, len(s.groups))
	for _, g := range s.groups {
		gs = append(gs, g)
	}
	s.RUnlock()

	sort.Slice(gs, func(i, j int) bool { return gs[i].Key < gs[j].Key })

	return gs, nil
}

// DeleteByID removes a group along with its membership relations
func (s *MemoryStore) DeleteByID(ctx context.Context, groupID string) error {
	s.Lock()
	defer s.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return ErrGroupNotFound
	}

	delete(s.groups, groupID)
	delete(s.keyIndex, g.Key)

	for userID := range s.groupUsers[groupID] {
		delete(s.userGroups[userID], groupID)
	}

	delete(s.groupUsers, groupID)

	return nil
}

// PutRelation stores a group-user membership relation
func (s *MemoryStore) PutRelation(ctx context.Context, groupID string, userID string) error {
	if groupID == "" {
		return ErrEmptyGroupID
	}

	if userID == "" {
		return ErrEmptyUserID
	}

	s.Lock()
	defer s.Unlock()

	if s.groupUsers[groupID] == nil {
		s.groupUsers[groupID] = make(map[string]struct{})
	}

	if s.userGroups[userID] == nil {
		s.userGroups[userID] = make(map[string]struct{})
	}

	s.groupUsers[groupID][userID] = struct{}{}
	s.userGroups[userID][groupID] = struct{}{}

	return nil
}

// HasRelation tests whether a membership relation exists
func (s *MemoryStore) HasRelation(ctx context.Context, groupID string, userID string) (bool, error) {
	s.RLock()
	_, ok := s.groupUsers[groupID][userID]
	s.RUnlock()

	return ok, nil
}

// DeleteRelation removes a membership relation
func (s *MemoryStore) DeleteRelation(ctx context.Context, groupID string, userID string) error {
	s.Lock()
	delete(s.groupUsers[groupID], userID)
	delete(s.userGroups[userID], groupID)
	s.Unlock()

	return nil
}

// FetchGroupIDsByUserID returns the sorted ids of groups a user belongs to
func (s *MemoryStore) FetchGroupIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	s.RLock()
	ids := make([]string, 0, len(s.userGroups[userID]))
	for id := range s.userGroups[userID] {
		ids = append(ids, id)
	}
	s.RUnlock()

	sort.Strings(ids)

	return ids, nil
}

// FetchUserIDsByGroupID returns the sorted ids of a group's members
func (s *MemoryStore) FetchUserIDsByGroupID(ctx context.Context, groupID string) ([]string, error) {
	s.RLock()
	ids := make([]string, 0, len(s.groupUsers[groupID]))
	for id := range s.groupUsers[groupID] {
		ids = append(ids, id)
	}
	s.RUnlock()

	sort.Strings(ids)

	return ids, nil
}
