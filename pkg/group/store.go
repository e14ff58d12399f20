package group

import "context"

// Store describes a storage contract for groups and their membership relations
type Store interface {
	UpsertGroup(ctx context.Context, g Group) (Group, error)
	FetchGroupByID(ctx context.Context, groupID string) (Group, error)
	FetchGroupByKey(ctx context.Context, key string) (Group, error)
	FetchAllGroups(ctx context.Context) ([]Group, error)
	DeleteByID(ctx context.Context, groupID string) error

	PutRelation(ctx context.Context, groupID string, userID string) error
	HasRelation(ctx context.Context, groupID string, userID string) (bool, error)
	DeleteRelation(ctx context.Context, groupID string, userID string) error
	FetchGroupIDsByUserID(ctx context.Context, userID string) ([]string, error)
	FetchUserIDsByGroupID(ctx context.Context, groupID string) ([]string, error)
}
