package core

import (
	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/anrid/kbguard/pkg/group"
	"github.com/anrid/kbguard/pkg/user"
	"go.uber.org/zap"
)

// Core bundles the service managers behind a single dependency for
// the transport layer
type Core struct {
	logger   *zap.Logger
	users    *user.Manager
	groups   *group.Manager
	policies *accesspolicy.Manager
	applier  *accesspolicy.BulkApplier
}

// New wires the service managers into a core container
func New(
	logger *zap.Logger,
	users *user.Manager,
	groups *group.Manager,
	policies *accesspolicy.Manager,
	applier *accesspolicy.BulkApplier,
) (*Core, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}

	if users == nil {
		return nil, ErrNilUserManager
	}

	if groups == nil {
		return nil, ErrNilGroupManager
	}

	if policies == nil {
		return nil, ErrNilPolicyManager
	}

	if applier == nil {
		return nil, ErrNilBulkApplier
	}

	return &Core{
		logger:   logger,
		users:    users,
		groups:   groups,
		policies: policies,
		applier:  applier,
	}, nil
}

// Logger returns the core logger
func (c *Core) Logger() *zap.Logger {
	return c.logger
}

// UserManager returns the identity record manager
func (c *Core) UserManager() *user.Manager {
	return c.users
}

// GroupManager returns the membership manager
func (c *Core) GroupManager() *group.Manager {
	return c.groups
}

// PolicyManager returns the resource policy manager
func (c *Core) PolicyManager() *accesspolicy.Manager {
	return c.policies
}

// BulkApplier returns the bulk access control applier
func (c *Core) BulkApplier() *accesspolicy.BulkApplier {
	return c.applier
}
