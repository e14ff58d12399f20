package group

import (
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Group represents a named set of users; membership is resolved
// through the manager, the group object itself stays flat
type Group struct {
	ID          string `db:"id" json:"id" valid:"required"`
	Key         string `db:"key" json:"key" valid:"required,ascii"`
	Name        string `db:"name" json:"name" valid:"required"`
	Description string `db:"description" json:"description" valid:"-"`
}

// NewGroup initializes a new group
// NOTE: the key is a stable machine name and is always lowercased
func NewGroup(key string, name string, description string) (Group, error) {
	g := Group{
		ID:          uuid.New().String(),
		Key:         strings.ToLower(strings.TrimSpace(key)),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}

	return g, g.Validate()
}

// Validate performs group self-checks
func (g Group) Validate() error {
	if ok, err := govalidator.ValidateStruct(g); !ok || err != nil {
		return errors.Wrap(err, "group validation failed")
	}

	return nil
}
