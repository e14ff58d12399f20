package core

import "github.com/pkg/errors"

// package errors
var (
	ErrNilCore          = errors.New("core is nil")
	ErrNilLogger        = errors.New("logger is nil")
	ErrNilUserManager   = errors.New("user manager is nil")
	ErrNilGroupManager  = errors.New("group manager is nil")
	ErrNilPolicyManager = errors.New("policy manager is nil")
	ErrNilBulkApplier   = errors.New("bulk applier is nil")
)
