package util

import (
	"crypto/rand"
	"fmt"

	"github.com/oklog/ulid"
	"github.com/tidwall/pretty"
)

// NewULID generates a fresh lexicographically sortable identifier
func NewULID() ulid.ULID {
	return ulid.MustNew(ulid.Now(), rand.Reader)
}

// PrettyPrint prints an indented JSON representation of a marshaled value
func PrettyPrint(payload []byte) {
	fmt.Printf("%s", pretty.Pretty(payload))
}
