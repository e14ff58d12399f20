package group_test

import (
	"context"
	"testing"

	"github.com/anrid/kbguard/pkg/group"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestManager(t *testing.T) *group.Manager {
	m, err := group.NewManager(group.NewMemoryStore(), nil)
	if err != nil {
		t.Fatal(err)
	}

	return m
}

func TestManagerCreate(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()
	m := newTestManager(t)

	g, err := m.Create(ctx, "engineering", "Engineering", "")
	a.NoError(err)
	a.NotEmpty(g.ID)

	// group keys are unique, case insensitively
	_, err = m.Create(ctx, "Engineering", "Another Engineering", "")
	a.Equal(group.ErrGroupKeyTaken, errors.Cause(err))

	fetched, err := m.GroupByKey(ctx, "engineering")
	a.NoError(err)
	a.Equal(g.ID, fetched.ID)

	fetched, err = m.GroupByID(ctx, g.ID)
	a.NoError(err)
	a.Equal(g.Key, fetched.Key)

	_, err = m.GroupByID(ctx, "missing")
	a.Equal(group.ErrGroupNotFound, errors.Cause(err))
}

func TestManagerGroups(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()
	m := newTestManager(t)

	for _, key := range []string{"ops", "engineering", "sales"} {
		_, err := m.Create(ctx, key, key, "")
		a.NoError(err)
	}

	gs, err := m.Groups(ctx)
	a.NoError(err)
	a.Len(gs, 3)

	// listing is ordered by key
	a.Equal("engineering", gs[0].Key)
	a.Equal("ops", gs[1].Key)
	a.Equal("sales", gs[2].Key)
}

func TestManagerMembership(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()
	m := newTestManager(t)

	g, err := m.Create(ctx, "engineering", "Engineering", "")
	a.NoError(err)

	// adding to an unknown group fails
	a.Equal(group.ErrGroupNotFound, errors.Cause(m.AddMember(ctx, "missing", "u1")))

	a.NoError(m.AddMember(ctx, g.ID, "u2"))
	a.NoError(m.AddMember(ctx, g.ID, "u1"))

	// membership is idempotent only on the read side
	a.Equal(group.ErrAlreadyMember, errors.Cause(m.AddMember(ctx, g.ID, "u1")))

	ok, err := m.IsMember(ctx, g.ID, "u1")
	a.NoError(err)
	a.True(ok)

	members, err := m.MembersByGroupID(ctx, g.ID)
	a.NoError(err)
	a.Equal([]string{"u1", "u2"}, members)

	a.NoError(m.RemoveMember(ctx, g.ID, "u1"))
	a.Equal(group.ErrNotMember, errors.Cause(m.RemoveMember(ctx, g.ID, "u1")))

	ok, err = m.IsMember(ctx, g.ID, "u1")
	a.NoError(err)
	a.False(ok)
}

func TestManagerGroupsByUserID(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()
	m := newTestManager(t)

	eng, err := m.Create(ctx, "engineering", "Engineering", "")
	a.NoError(err)

	ops, err := m.Create(ctx, "ops", "Operations", "")
	a.NoError(err)

	a.NoError(m.AddMember(ctx, eng.ID, "u1"))
	a.NoError(m.AddMember(ctx, ops.ID, "u1"))
	a.NoError(m.AddMember(ctx, ops.ID, "u2"))

	gs, err := m.GroupsByUserID(ctx, "u1")
	a.NoError(err)
	a.Len(gs, 2)

	gs, err = m.GroupsByUserID(ctx, "u2")
	a.NoError(err)
	a.Len(gs, 1)
	a.Equal("ops", gs[0].Key)

	// deleting a group drops its relations as well
	a.NoError(m.DeleteGroup(ctx, ops.ID))

	gs, err = m.GroupsByUserID(ctx, "u2")
	a.NoError(err)
	a.Empty(gs)
}

func TestManagerPrincipalFor(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.PrincipalFor(ctx, "")
	a.Equal(group.ErrEmptyUserID, errors.Cause(err))

	eng, err := m.Create(ctx, "engineering", "Engineering", "")
	a.NoError(err)

	// a user with no memberships still yields a usable principal
	p, err := m.PrincipalFor(ctx, "u1")
	a.NoError(err)
	a.Equal("u1", p.UserID)
	a.Empty(p.GroupIDs)

	a.NoError(m.AddMember(ctx, eng.ID, "u1"))

	p, err = m.PrincipalFor(ctx, "u1")
	a.NoError(err)
	a.Equal([]string{eng.ID}, p.GroupIDs)
}

func TestManagerMemberLookup(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()
	m := newTestManager(t)

	eng, err := m.Create(ctx, "engineering", "Engineering", "")
	a.NoError(err)

	a.NoError(m.AddMember(ctx, eng.ID, "u2"))
	a.NoError(m.AddMember(ctx, eng.ID, "u1"))

	lookup := m.MemberLookup(ctx)
	a.Equal([]string{"u1", "u2"}, lookup(eng.ID))

	// unknown groups expand to nothing
	a.Empty(lookup("missing"))
}
