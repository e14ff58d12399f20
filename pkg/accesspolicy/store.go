package accesspolicy

import "context"

// Store describes a storage contract for resource policies
type Store interface {
	UpsertPolicy(ctx context.Context, p ResourcePolicy) (ResourcePolicy, error)
	FetchByResourceID(ctx context.Context, resourceID string) (ResourcePolicy, error)
	FetchAll(ctx context.Context) ([]ResourcePolicy, error)
	DeleteByResourceID(ctx context.Context, resourceID string) error
}
