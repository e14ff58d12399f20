package group

import "github.com/pkg/errors"

// package errors
var (
	ErrGroupNotFound = errors.New("group not found")
	ErrGroupKeyTaken = errors.New("group key is already taken")
	ErrAlreadyMember = errors.New("user is already a member of the group")
	ErrNotMember     = errors.New("user is not a member of the group")
	ErrEmptyGroupID  = errors.New("group id is empty")
	ErrEmptyUserID   = errors.New("user id is empty")
	ErrNilGroupStore = errors.New("group store is nil")
	ErrNilDatabase   = errors.New("database connection is nil")
)
