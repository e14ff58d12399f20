package access

import (
	"context"
	"net/http"

	"github.com/anrid/kbguard/internal/core"
	"github.com/anrid/kbguard/internal/server/auth"
	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
)

type checkResult struct {
	ResourceID string `json:"resource_id"`
	Capability string `json:"capability"`
	Allowed    bool   `json:"allowed"`
}

// Check evaluates whether the calling principal holds a given
// capability on a knowledge base
func Check(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (interface{}, int, error) {
	resourceID := chi.URLParam(r, "id")

	capability := accesspolicy.ParseCapability(r.URL.Query().Get("capability"))
	if capability == accesspolicy.CapNone {
		return nil, http.StatusBadRequest, errors.New("capability must be read or write")
	}

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, http.StatusUnauthorized, errAccessDenied
	}

	p, err := c.PolicyManager().PolicyByResourceID(ctx, resourceID)
	if err != nil {
		return nil, policyStatus(err), err
	}

	return checkResult{
		ResourceID: resourceID,
		Capability: capability.String(),
		Allowed:    accesspolicy.Can(principal, p, capability),
	}, http.StatusOK, nil
}
