package group

import (
	"context"

	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Manager is the membership collaborator of the access policy
// evaluator: it owns groups, their member relations, and produces
// principals and roster lookups for the resolver
type Manager struct {
	store  Store
	logger *zap.Logger
}

// NewManager initializes a group manager over a given store
func NewManager(store Store, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, ErrNilGroupStore
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		store:  store,
		logger: logger.Named("group"),
	}, nil
}

// Logger returns the manager's logger
func (m *Manager) Logger() *zap.Logger {
	return m.logger
}

// Create initializes and persists a new group
func (m *Manager) Create(ctx context.Context, key string, name string, description string) (Group, error) {
	g, err := NewGroup(key, name, description)
	if err != nil {
		return g, err
	}

	// group keys are unique
	if _, err := m.store.FetchGroupByKey(ctx, g.Key); err == nil {
		return g, ErrGroupKeyTaken
	} else if errors.Cause(err) != ErrGroupNotFound {
		return g, errors.Wrap(err, "failed to check for an existing group key")
	}

	g, err = m.store.UpsertGroup(ctx, g)
	if err != nil {
		return g, errors.Wrap(err, "failed to create group")
	}

	m.logger.Info("created group", zap.String("gid", g.ID), zap.String("key", g.Key))

	return g, nil
}

// GroupByID returns a group by id
func (m *Manager) GroupByID(ctx context.Context, groupID string) (Group, error) {
	return m.store.FetchGroupByID(ctx, groupID)
}

// GroupByKey returns a group by its machine key
func (m *Manager) GroupByKey(ctx context.Context, key string) (Group, error) {
	return m.store.FetchGroupByKey(ctx, key)
}

// Groups returns every known group
func (m *Manager) Groups(ctx context.Context) ([]Group, error) {
	return m.store.FetchAllGroups(ctx)
}

// DeleteGroup removes a group along with its membership relations
func (m *Manager) DeleteGroup(ctx context.Context, groupID string) error {
	if err := m.store.DeleteByID(ctx, groupID); err != nil {
		return err
	}

	m.logger.Info("deleted group", zap.String("gid", groupID))

	return nil
}

// AddMember adds a user to a group
func (m *Manager) AddMember(ctx context.Context, groupID string, userID string) error {
	if _, err := m.store.FetchGroupByID(ctx, groupID); err != nil {
		return err
	}

	ok, err := m.store.HasRelation(ctx, groupID, userID)
	if err != nil {
		return err
	}

	if ok {
		return ErrAlreadyMember
	}

	if err := m.store.PutRelation(ctx, groupID, userID); err != nil {
		return err
	}

	m.logger.Info("added group member", zap.String("gid", groupID), zap.String("uid", userID))

	return nil
}

// RemoveMember removes a user from a group
func (m *Manager) RemoveMember(ctx context.Context, groupID string, userID string) error {
	ok, err := m.store.HasRelation(ctx, groupID, userID)
	if err != nil {
		return err
	}

	if !ok {
		return ErrNotMember
	}

	if err := m.store.DeleteRelation(ctx, groupID, userID); err != nil {
		return err
	}

	m.logger.Info("removed group member", zap.String("gid", groupID), zap.String("uid", userID))

	return nil
}

// IsMember tests whether a user belongs to a group
func (m *Manager) IsMember(ctx context.Context, groupID string, userID string) (bool, error) {
	return m.store.HasRelation(ctx, groupID, userID)
}

// GroupsByUserID returns the groups a user belongs to
func (m *Manager) GroupsByUserID(ctx context.Context, userID string) ([]Group, error) {
	ids, err := m.store.FetchGroupIDsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	gs := make([]Group, 0, len(ids))

	for _, id := range ids {
		g, err := m.store.FetchGroupByID(ctx, id)
		if err != nil {
			// a relation may outlive its group in a backend without
			// referential integrity; skipping is safe here
			if errors.Cause(err) == ErrGroupNotFound {
				continue
			}

			return nil, err
		}

		gs = append(gs, g)
	}

	return gs, nil
}

// MembersByGroupID returns the user ids of a group's members
func (m *Manager) MembersByGroupID(ctx context.Context, groupID string) ([]string, error) {
	return m.store.FetchUserIDsByGroupID(ctx, groupID)
}

// PrincipalFor resolves a user's group memberships into a principal
// ready for permission checks
func (m *Manager) PrincipalFor(ctx context.Context, userID string) (accesspolicy.Principal, error) {
	if userID == "" {
		return accesspolicy.Principal{}, ErrEmptyUserID
	}

	ids, err := m.store.FetchGroupIDsByUserID(ctx, userID)
	if err != nil {
		return accesspolicy.Principal{}, errors.Wrap(err, "failed to resolve user group memberships")
	}

	return accesspolicy.NewPrincipal(userID, ids...), nil
}

// MemberLookup adapts the manager to the roster expansion callback.
// Lookup failures degrade to an empty expansion; roster display is
// best-effort and must not fail an audit view
func (m *Manager) MemberLookup(ctx context.Context) accesspolicy.MemberLookup {
	return func(groupID string) []string {
		ids, err := m.store.FetchUserIDsByGroupID(ctx, groupID)
		if err != nil {
			m.logger.Warn("failed to expand group members", zap.String("gid", groupID), zap.Error(err))
			return nil
		}

		return ids
	}
}
