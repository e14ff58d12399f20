package access

import (
	"context"
	stdjson "encoding/json"
	"net/http"

	"github.com/anrid/kbguard/internal/core"
	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
)

type updateRequest struct {
	AccessControl stdjson.RawMessage `json:"access_control"`
}

// Update replaces the whole access control object of a knowledge base.
// There are no partial patch semantics: the submitted object becomes
// the policy's access control verbatim, null meaning public.
func Update(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (interface{}, int, error) {
	resourceID := chi.URLParam(r, "id")

	p, err := c.PolicyManager().PolicyByResourceID(ctx, resourceID)
	if err != nil {
		return nil, policyStatus(err), err
	}

	if !canManage(ctx, p) {
		return nil, http.StatusForbidden, errAccessDenied
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, http.StatusBadRequest, errors.Wrap(err, "malformed request body")
	}

	target, err := decodeAccessControl(req.AccessControl)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	p, err = c.PolicyManager().SetAccessControl(ctx, resourceID, target)
	if err != nil {
		switch errors.Cause(err) {
		case accesspolicy.ErrAmbiguousAccessControl, accesspolicy.ErrInvalidOwner, accesspolicy.ErrNoResourceID:
			return nil, http.StatusBadRequest, err
		case accesspolicy.ErrPolicyNotFound:
			return nil, http.StatusNotFound, err
		}

		return nil, http.StatusInternalServerError, err
	}

	return p, http.StatusOK, nil
}
