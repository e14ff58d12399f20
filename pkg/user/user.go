package user

import (
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
)

// User is the narrow identity record the admin surface needs for
// roster display; authentication and profile data live with the
// identity collaborator
type User struct {
	ID    string `db:"id" json:"id" valid:"required"`
	Name  string `db:"name" json:"name" valid:"required"`
	Email string `db:"email" json:"email,omitempty" valid:"email,optional"`
}

// NewUser initializes a user record, validated at the boundary
func NewUser(id string, name string, email string) (User, error) {
	u := User{
		ID:    strings.TrimSpace(id),
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}

	return u, u.Validate()
}

// Validate performs user self-checks
func (u User) Validate() error {
	if ok, err := govalidator.ValidateStruct(u); !ok || err != nil {
		return errors.Wrap(err, "user validation failed")
	}

	return nil
}
