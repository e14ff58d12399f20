package accesspolicy_test

import (
	"testing"

	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	a := assert.New(t)

	// a freshly created policy is public and valid
	p := accesspolicy.NewResourcePolicy("kb1", "u1")
	a.NoError(p.Validate())
	a.True(p.IsPublic())

	// missing resource id
	p = accesspolicy.NewResourcePolicy("", "u1")
	a.Equal(accesspolicy.ErrNoResourceID, p.Validate())

	// missing owner
	p = accesspolicy.NewResourcePolicy("kb1", "  ")
	a.Equal(accesspolicy.ErrInvalidOwner, p.Validate())

	// a non-null access control with both lists omitted is ambiguous;
	// the caller must pass null explicitly for public
	p = accesspolicy.NewResourcePolicy("kb1", "u1")
	p.AccessControl = &accesspolicy.AccessControl{}
	a.Equal(accesspolicy.ErrAmbiguousAccessControl, p.Validate())

	// a single list is enough to disambiguate
	p.AccessControl = &accesspolicy.AccessControl{
		Read: &accesspolicy.AccessList{UserIDs: []string{"u2"}},
	}
	a.NoError(p.Validate())
}

func TestNormalize(t *testing.T) {
	a := assert.New(t)

	p := accesspolicy.NewResourcePolicy("kb1", "u1")
	p.AccessControl = &accesspolicy.AccessControl{
		Read: &accesspolicy.AccessList{
			UserIDs:  []string{"u2", "u3", "u2", " ", "u3"},
			GroupIDs: []string{"g1", "g1"},
		},
	}

	n := p.Normalize()

	// duplicates collapse preserving first occurrence order
	a.Equal([]string{"u2", "u3"}, n.AccessControl.Read.UserIDs)
	a.Equal([]string{"g1"}, n.AccessControl.Read.GroupIDs)

	// the missing write list is backfilled as empty, meaning owner-only
	a.NotNil(n.AccessControl.Write)
	a.Empty(n.AccessControl.Write.UserIDs)
	a.Empty(n.AccessControl.Write.GroupIDs)

	// a normalized non-null access control is never ambiguous
	a.NoError(n.Validate())

	// normalization is idempotent
	a.Equal(n, n.Normalize())

	// public policies pass through untouched
	public := accesspolicy.NewResourcePolicy("kb2", "u1")
	a.Nil(public.Normalize().AccessControl)
}

func TestNormalizeDoesNotMutateOriginal(t *testing.T) {
	a := assert.New(t)

	p := accesspolicy.NewResourcePolicy("kb1", "u1")
	p.AccessControl = &accesspolicy.AccessControl{
		Read: &accesspolicy.AccessList{UserIDs: []string{"u2", "u2"}},
	}

	_ = p.Normalize()

	a.Equal([]string{"u2", "u2"}, p.AccessControl.Read.UserIDs)
	a.Nil(p.AccessControl.Write)
}

func TestClone(t *testing.T) {
	a := assert.New(t)

	p := accesspolicy.NewResourcePolicy("kb1", "u1")
	p.AccessControl = &accesspolicy.AccessControl{
		Read: &accesspolicy.AccessList{UserIDs: []string{"u2"}},
	}

	c := p.Clone()
	c.AccessControl.Read.UserIDs[0] = "mutated"

	a.Equal([]string{"u2"}, p.AccessControl.Read.UserIDs)
}

func TestHash(t *testing.T) {
	a := assert.New(t)

	p1 := accesspolicy.NewResourcePolicy("kb1", "u1")
	p1.AccessControl = &accesspolicy.AccessControl{
		Read: &accesspolicy.AccessList{UserIDs: []string{"u2", "u2"}},
	}

	p2 := accesspolicy.NewResourcePolicy("kb1", "u1")
	p2.AccessControl = &accesspolicy.AccessControl{
		Read: &accesspolicy.AccessList{UserIDs: []string{"u2"}},
	}

	// duplicates do not affect content identity
	a.Equal(p1.Hash(), p2.Hash())

	// a public policy hashes differently from a restricted one
	public := accesspolicy.NewResourcePolicy("kb1", "u1")
	a.NotEqual(public.Hash(), p1.Hash())

	// an access grant changes the content
	p2.AccessControl.Write = &accesspolicy.AccessList{UserIDs: []string{"u3"}}
	a.NotEqual(p1.Hash(), p2.Hash())
}

func TestParseCapability(t *testing.T) {
	a := assert.New(t)

	a.Equal(accesspolicy.CapRead, accesspolicy.ParseCapability("read"))
	a.Equal(accesspolicy.CapWrite, accesspolicy.ParseCapability(" WRITE "))
	a.Equal(accesspolicy.CapNone, accesspolicy.ParseCapability("delete"))
	a.Equal(accesspolicy.CapNone, accesspolicy.ParseCapability(""))

	a.Equal("read", accesspolicy.CapRead.String())
	a.Equal("write", accesspolicy.CapWrite.String())
}
