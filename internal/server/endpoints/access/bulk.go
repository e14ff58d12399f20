package access

import (
	"context"
	stdjson "encoding/json"
	"net/http"

	"github.com/anrid/kbguard/internal/core"
	"github.com/anrid/kbguard/internal/server/auth"
	"github.com/pkg/errors"
)

type bulkRequest struct {
	AccessControl stdjson.RawMessage `json:"access_control"`
	ResourceIDs   []string           `json:"resource_ids"`
}

// Bulk applies one access control object to many knowledge bases,
// reporting per-resource failures without aborting the batch.
// Administrators only.
func Bulk(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (interface{}, int, error) {
	if !auth.IsAdmin(ctx) {
		return nil, http.StatusForbidden, errAccessDenied
	}

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, http.StatusBadRequest, errors.Wrap(err, "malformed request body")
	}

	if len(req.ResourceIDs) == 0 {
		return nil, http.StatusBadRequest, errors.New("resource_ids must not be empty")
	}

	target, err := decodeAccessControl(req.AccessControl)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	result := c.BulkApplier().Apply(ctx, target, req.ResourceIDs, c.PolicyManager().ApplyFunc())

	return result, http.StatusOK, nil
}
