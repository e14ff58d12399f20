package access

import (
	"context"
	"net/http"

	"github.com/anrid/kbguard/internal/core"
	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/go-chi/chi"
)

// accessView is the admin panel's per-resource permission view: the
// policy itself plus both capability rosters expanded for display
type accessView struct {
	Policy      accesspolicy.ResourcePolicy `json:"policy"`
	ReadRoster  []RosterEntry               `json:"read_roster"`
	WriteRoster []RosterEntry               `json:"write_roster"`
}

// Get returns the access policy of a single knowledge base along with
// its effective read and write rosters
func Get(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (interface{}, int, error) {
	resourceID := chi.URLParam(r, "id")

	p, err := c.PolicyManager().PolicyByResourceID(ctx, resourceID)
	if err != nil {
		return nil, policyStatus(err), err
	}

	if !canManage(ctx, p) {
		return nil, http.StatusForbidden, errAccessDenied
	}

	membersOf := c.GroupManager().MemberLookup(ctx)

	view := accessView{
		Policy:      p,
		ReadRoster:  decorateRoster(ctx, c, accesspolicy.EffectiveRoster(p, accesspolicy.CapRead, membersOf)),
		WriteRoster: decorateRoster(ctx, c, accesspolicy.EffectiveRoster(p, accesspolicy.CapWrite, membersOf)),
	}

	return view, http.StatusOK, nil
}
