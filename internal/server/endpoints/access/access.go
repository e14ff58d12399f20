// Package access exposes the administrative surface for viewing and
// editing knowledge base access controls.
package access

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"net/http"

	"github.com/anrid/kbguard/internal/core"
	"github.com/anrid/kbguard/internal/server/auth"
	"github.com/anrid/kbguard/pkg/accesspolicy"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// handler errors
// NOTE: denial is always reported as a bare "access denied" so the
// response does not leak which list caused it
var (
	errAccessDenied          = errors.New("access denied")
	errAccessControlRequired = errors.New("access_control is required; pass null explicitly for public")
)

// RosterEntry is a roster user decorated with identity data for display
type RosterEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// decodeAccessControl interprets the raw access_control body field.
// The field must be present: an explicit null means public, a non-null
// object must carry at least one list (enforced later by validation).
func decodeAccessControl(raw stdjson.RawMessage) (*accesspolicy.AccessControl, error) {
	if len(raw) == 0 {
		return nil, errAccessControlRequired
	}

	if string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}

	ac := new(accesspolicy.AccessControl)
	if err := json.Unmarshal(raw, ac); err != nil {
		return nil, errors.Wrap(err, "malformed access_control")
	}

	return ac, nil
}

// decorateRoster resolves roster user ids into display entries;
// unknown ids still show up bare so the roster stays complete
func decorateRoster(ctx context.Context, c *core.Core, userIDs []string) []RosterEntry {
	entries := make([]RosterEntry, 0, len(userIDs))

	for _, id := range userIDs {
		entry := RosterEntry{UserID: id}

		if u, err := c.UserManager().UserByID(ctx, id); err == nil {
			entry.Name = u.Name
			entry.Email = u.Email
		}

		entries = append(entries, entry)
	}

	return entries
}

// canManage tells whether the calling principal may view or edit a
// given policy: owners and administrators only
func canManage(ctx context.Context, p accesspolicy.ResourcePolicy) bool {
	if auth.IsAdmin(ctx) {
		return true
	}

	principal, ok := auth.PrincipalFromContext(ctx)

	return ok && principal.UserID == p.OwnerID
}

func policyStatus(err error) int {
	if errors.Cause(err) == accesspolicy.ErrPolicyNotFound {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}
