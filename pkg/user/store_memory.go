package user

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the default user store implementation, also used
// as a test fixture
type MemoryStore struct {
	users map[string]User

	sync.RWMutex
}

// NewMemoryStore returns an initialized in-memory user store
func NewMemoryStore() Store {
	return &MemoryStore{
		users: make(map[string]User),
	}
}

// UpsertUser stores a user record
func (s *MemoryStore) UpsertUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		return u, ErrEmptyUserID
	}

	s.Lock()
	s.users[u.ID] = u
	s.Unlock()

	return u, nil
}

// FetchUserByID retrieves a user by id
func (s *MemoryStore) FetchUserByID(ctx context.Context, userID string) (User, error) {
	s.RLock()
	u, ok := s.users[userID]
	s.RUnlock()

	if !ok {
		return u, ErrUserNotFound
	}

	return u, nil
}

// FetchAllUsers returns every stored user ordered by id
func (s *MemoryStore) FetchAllUsers(ctx context.Context) ([]User, error) {
	s.RLock()
	us := make([]User, 0, len(s.users))
	for _, u := range s.users {
		us = append(us, u)
	}
	s.RUnlock()

	sort.Slice(us, func(i, j int) bool { return us[i].ID < us[j].ID })

	return us, nil
}

// DeleteByID removes a user record
func (s *MemoryStore) DeleteByID(ctx context.Context, userID string) error {
	s.Lock()
	_, ok := s.users[userID]
	delete(s.users, userID)
	s.Unlock()

	if !ok {
		return ErrUserNotFound
	}

	return nil
}
