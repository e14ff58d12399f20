package user_test

import (
	"context"
	"testing"

	"github.com/anrid/kbguard/pkg/user"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewUser(t *testing.T) {
	a := assert.New(t)

	u, err := user.NewUser(" u1 ", "Alex", "alex@example.com")
	a.NoError(err)
	a.Equal("u1", u.ID)
	a.Equal("Alex", u.Name)

	// id and name are required
	_, err = user.NewUser("", "Alex", "")
	a.Error(err)

	_, err = user.NewUser("u1", "", "")
	a.Error(err)

	// an email is optional but must be well formed when present
	_, err = user.NewUser("u1", "Alex", "")
	a.NoError(err)

	_, err = user.NewUser("u1", "Alex", "not-an-email")
	a.Error(err)
}

func TestManager(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	m, err := user.NewManager(user.NewMemoryStore(), nil)
	a.NoError(err)

	u, err := m.Create(ctx, "u1", "Alex", "alex@example.com")
	a.NoError(err)

	_, err = m.Create(ctx, "u1", "Another Alex", "")
	a.Equal(user.ErrUserAlreadyExists, errors.Cause(err))

	fetched, err := m.UserByID(ctx, "u1")
	a.NoError(err)
	a.Equal(u, fetched)

	_, err = m.UserByID(ctx, "missing")
	a.Equal(user.ErrUserNotFound, errors.Cause(err))

	_, err = m.Create(ctx, "u2", "Sam", "")
	a.NoError(err)

	us, err := m.Users(ctx)
	a.NoError(err)
	a.Len(us, 2)

	a.NoError(m.DeleteUser(ctx, "u1"))
	a.Equal(user.ErrUserNotFound, errors.Cause(m.DeleteUser(ctx, "u1")))
}
