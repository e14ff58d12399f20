package user

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Manager keeps the identity records used to decorate access rosters
type Manager struct {
	store  Store
	logger *zap.Logger
}

// NewManager initializes a user manager over a given store
func NewManager(store Store, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, ErrNilUserStore
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		store:  store,
		logger: logger.Named("user"),
	}, nil
}

// Create validates and persists a new user record
func (m *Manager) Create(ctx context.Context, id string, name string, email string) (User, error) {
	u, err := NewUser(id, name, email)
	if err != nil {
		return u, err
	}

	if _, err := m.store.FetchUserByID(ctx, u.ID); err == nil {
		return u, ErrUserAlreadyExists
	} else if errors.Cause(err) != ErrUserNotFound {
		return u, errors.Wrap(err, "failed to check for an existing user")
	}

	u, err = m.store.UpsertUser(ctx, u)
	if err != nil {
		return u, errors.Wrap(err, "failed to create user")
	}

	m.logger.Info("created user", zap.String("uid", u.ID))

	return u, nil
}

// UserByID returns a user by id
func (m *Manager) UserByID(ctx context.Context, userID string) (User, error) {
	return m.store.FetchUserByID(ctx, userID)
}

// Users returns every known user
func (m *Manager) Users(ctx context.Context) ([]User, error) {
	return m.store.FetchAllUsers(ctx)
}

// DeleteUser removes a user record
func (m *Manager) DeleteUser(ctx context.Context, userID string) error {
	if err := m.store.DeleteByID(ctx, userID); err != nil {
		return err
	}

	m.logger.Info("deleted user", zap.String("uid", userID))

	return nil
}
