package user

import "github.com/pkg/errors"

// package errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrEmptyUserID       = errors.New("user id is empty")
	ErrNilUserStore      = errors.New("user store is nil")
	ErrNilDatabase       = errors.New("database connection is nil")
)
