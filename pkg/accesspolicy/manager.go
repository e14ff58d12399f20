package accesspolicy

import (
	"context"
	"time"

	"github.com/allegro/bigcache"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// policyCacheTTL bounds staleness of the read-through policy cache
const policyCacheTTL = 10 * time.Minute

// Manager governs the lifecycle of resource policies: creation with
// public defaults, whole-object access control replacement, cached
// lookups and deletion
type Manager struct {
	store  Store
	cache  *bigcache.BigCache
	logger *zap.Logger
}

// NewManager initializes a policy manager over a given store
func NewManager(store Store, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := bigcache.NewBigCache(bigcache.DefaultConfig(policyCacheTTL))
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize policy cache")
	}

	return &Manager{
		store:  store,
		cache:  cache,
		logger: logger.Named("accesspolicy"),
	}, nil
}

// Logger returns the manager's logger
func (m *Manager) Logger() *zap.Logger {
	return m.logger
}

// Create initializes and persists a policy for a newly created
// resource; a nil access control means the resource is public
func (m *Manager) Create(ctx context.Context, resourceID string, ownerID string, ac *AccessControl) (ResourcePolicy, error) {
	p := NewResourcePolicy(resourceID, ownerID)
	p.AccessControl = ac

	// validating before normalization: ambiguity must surface, not be
	// papered over by list backfilling
	if err := p.Validate(); err != nil {
		return p, err
	}

	p = p.Normalize()

	// a resource governs exactly one policy
	if _, err := m.store.FetchByResourceID(ctx, p.ResourceID); err == nil {
		return p, ErrPolicyAlreadyExists
	} else if errors.Cause(err) != ErrPolicyNotFound {
		return p, errors.Wrap(err, "failed to check for an existing policy")
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	p, err := m.store.UpsertPolicy(ctx, p)
	if err != nil {
		return p, errors.Wrap(err, "failed to create resource policy")
	}

	m.cachePut(p)

	m.logger.Info(
		"created resource policy",
		zap.String("resource_id", p.ResourceID),
		zap.String("owner_id", p.OwnerID),
		zap.Bool("public", p.IsPublic()),
	)

	return p, nil
}

// PolicyByResourceID returns the policy governing a given resource,
// consulting the cache before the store
func (m *Manager) PolicyByResourceID(ctx context.Context, resourceID string) (ResourcePolicy, error) {
	if buf, err := m.cache.Get(resourceID); err == nil {
		var p ResourcePolicy
		if err := json.Unmarshal(buf, &p); err == nil {
			return p, nil
		}
	}

	p, err := m.store.FetchByResourceID(ctx, resourceID)
	if err != nil {
		return p, err
	}

	m.cachePut(p)

	return p, nil
}

// UpdatePolicy fetches a policy, passes it through a given closure and
// persists the result as a whole-object replacement; there are no
// partial patch semantics. Returns ErrNothingChanged when the updated
// policy carries the same content.
func (m *Manager) UpdatePolicy(ctx context.Context, resourceID string, fn func(ctx context.Context, p ResourcePolicy) (ResourcePolicy, error)) (ResourcePolicy, diff.Changelog, error) {
	current, err := m.store.FetchByResourceID(ctx, resourceID)
	if err != nil {
		return current, nil, err
	}

	updated, err := fn(ctx, current.Clone())
	if err != nil {
		return current, nil, errors.Wrap(err, "failed to initialize updated policy")
	}

	// resource binding and creation time are immutable
	updated.ResourceID = current.ResourceID
	updated.CreatedAt = current.CreatedAt

	if err = updated.Validate(); err != nil {
		return current, nil, err
	}

	updated = updated.Normalize()

	if updated.Hash() == current.Hash() {
		return current, nil, ErrNothingChanged
	}

	// acquiring a changelog for the audit trail
	changelog, err := diff.Diff(current, updated)
	if err != nil {
		return current, nil, errors.Wrap(err, "failed to diff policy changes")
	}

	updated.UpdatedAt = time.Now()

	updated, err = m.store.UpsertPolicy(ctx, updated)
	if err != nil {
		return current, changelog, errors.Wrap(err, "failed to save resource policy")
	}

	m.cachePut(updated)

	m.logger.Info(
		"updated resource policy",
		zap.String("resource_id", updated.ResourceID),
		zap.Bool("public", updated.IsPublic()),
		zap.Int("changes", len(changelog)),
	)

	return updated, changelog, nil
}

// SetAccessControl replaces the whole access control object of a
// resource; replacing it with identical content is not an error
func (m *Manager) SetAccessControl(ctx context.Context, resourceID string, target *AccessControl) (ResourcePolicy, error) {
	p, _, err := m.UpdatePolicy(ctx, resourceID, func(_ context.Context, p ResourcePolicy) (ResourcePolicy, error) {
		p.AccessControl = target.clone()
		return p, nil
	})

	if errors.Cause(err) == ErrNothingChanged {
		return p, nil
	}

	return p, err
}

// DeletePolicy removes the policy along with its governed resource
func (m *Manager) DeletePolicy(ctx context.Context, resourceID string) error {
	if err := m.store.DeleteByResourceID(ctx, resourceID); err != nil {
		return err
	}

	// cache eviction failure only means a shorter-lived entry
	_ = m.cache.Delete(resourceID)

	m.logger.Info("deleted resource policy", zap.String("resource_id", resourceID))

	return nil
}

// ApplyFunc adapts the manager to the bulk applier's per-resource
// application contract
func (m *Manager) ApplyFunc() ApplyFunc {
	return func(ctx context.Context, resourceID string, target *AccessControl) (ResourcePolicy, error) {
		return m.SetAccessControl(ctx, resourceID, target)
	}
}

func (m *Manager) cachePut(p ResourcePolicy) {
	buf, err := json.Marshal(p)
	if err != nil {
		m.logger.Warn("failed to marshal policy for caching", zap.String("resource_id", p.ResourceID), zap.Error(err))
		return
	}

	if err := m.cache.Set(p.ResourceID, buf); err != nil {
		m.logger.Warn("failed to cache policy", zap.String("resource_id", p.ResourceID), zap.Error(err))
	}
}
