package accesspolicy_test

import (
	"context"
	"testing"

	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()
	s := accesspolicy.NewMemoryStore()

	_, err := s.FetchByResourceID(ctx, "kb1")
	a.Equal(accesspolicy.ErrPolicyNotFound, err)

	p := accesspolicy.NewResourcePolicy("kb1", "u1")
	p.AccessControl = &accesspolicy.AccessControl{
		Read: &accesspolicy.AccessList{UserIDs: []string{"u2"}},
	}

	_, err = s.UpsertPolicy(ctx, p)
	a.NoError(err)

	_, err = s.UpsertPolicy(ctx, accesspolicy.ResourcePolicy{})
	a.Equal(accesspolicy.ErrNoResourceID, err)

	// fetched policies are isolated copies
	fetched, err := s.FetchByResourceID(ctx, "kb1")
	a.NoError(err)
	fetched.AccessControl.Read.UserIDs[0] = "mutated"

	fetched, err = s.FetchByResourceID(ctx, "kb1")
	a.NoError(err)
	a.Equal([]string{"u2"}, fetched.AccessControl.Read.UserIDs)

	_, err = s.UpsertPolicy(ctx, accesspolicy.NewResourcePolicy("kb0", "u1"))
	a.NoError(err)

	ps, err := s.FetchAll(ctx)
	a.NoError(err)
	a.Len(ps, 2)
	a.Equal("kb0", ps[0].ResourceID)
	a.Equal("kb1", ps[1].ResourceID)

	a.NoError(s.DeleteByResourceID(ctx, "kb1"))
	a.Equal(accesspolicy.ErrPolicyNotFound, s.DeleteByResourceID(ctx, "kb1"))
}
