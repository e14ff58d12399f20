package group_test

import (
	"testing"

	"github.com/anrid/kbguard/pkg/group"
	"github.com/stretchr/testify/assert"
)

func TestNewGroup(t *testing.T) {
	a := assert.New(t)

	g, err := group.NewGroup(" Engineering ", "Engineering", "people who ship")
	a.NoError(err)
	a.NotEmpty(g.ID)

	// the key is a stable machine name, lowercased and trimmed
	a.Equal("engineering", g.Key)
	a.Equal("Engineering", g.Name)

	// key and name are required
	_, err = group.NewGroup("", "Engineering", "")
	a.Error(err)

	_, err = group.NewGroup("engineering", "", "")
	a.Error(err)

	// a description is optional
	g, err = group.NewGroup("ops", "Operations", "")
	a.NoError(err)
	a.Empty(g.Description)
}
