package accesspolicy_test

import (
	"context"
	"os"
	"testing"

	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/anrid/kbguard/util"
	"github.com/stretchr/testify/assert"
)

func TestBadgerStore(t *testing.T) {
	a := assert.New(t)

	db, dir, err := util.OpenRandomBadger()
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		db.Close()
		os.RemoveAll(dir)
	}()

	ctx := context.Background()

	s, err := accesspolicy.NewBadgerStore(db)
	a.NoError(err)

	_, err = accesspolicy.NewBadgerStore(nil)
	a.Equal(accesspolicy.ErrNilDatabase, err)

	_, err = s.FetchByResourceID(ctx, "kb1")
	a.Equal(accesspolicy.ErrPolicyNotFound, err)

	p := accesspolicy.NewResourcePolicy("kb1", "u1")
	p.AccessControl = &accesspolicy.AccessControl{
		Read:  &accesspolicy.AccessList{UserIDs: []string{"u2"}, GroupIDs: []string{"g1"}},
		Write: &accesspolicy.AccessList{UserIDs: []string{}, GroupIDs: []string{}},
	}

	_, err = s.UpsertPolicy(ctx, p)
	a.NoError(err)

	fetched, err := s.FetchByResourceID(ctx, "kb1")
	a.NoError(err)
	a.Equal("u1", fetched.OwnerID)
	a.Equal([]string{"u2"}, fetched.AccessControl.Read.UserIDs)
	a.Equal([]string{"g1"}, fetched.AccessControl.Read.GroupIDs)

	// a public policy round-trips its nil access control
	_, err = s.UpsertPolicy(ctx, accesspolicy.NewResourcePolicy("kb2", "u1"))
	a.NoError(err)

	fetched, err = s.FetchByResourceID(ctx, "kb2")
	a.NoError(err)
	a.True(fetched.IsPublic())

	ps, err := s.FetchAll(ctx)
	a.NoError(err)
	a.Len(ps, 2)

	a.NoError(s.DeleteByResourceID(ctx, "kb1"))
	a.Equal(accesspolicy.ErrPolicyNotFound, s.DeleteByResourceID(ctx, "kb1"))

	_, err = s.FetchByResourceID(ctx, "kb1")
	a.Equal(accesspolicy.ErrPolicyNotFound, err)
}
