package user

import "context"

// Store describes a storage contract for user records
type Store interface {
	UpsertUser(ctx context.Context, u User) (User, error)
	FetchUserByID(ctx context.Context, userID string) (User, error)
	FetchAllUsers(ctx context.Context) ([]User, error)
	DeleteByID(ctx context.Context, userID string) error
}
