package accesspolicy

import (
	"context"

	"github.com/anrid/kbguard/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ApplyFunc persists one target access control onto a single resource;
// supplied by the storage collaborator
type ApplyFunc func(ctx context.Context, resourceID string, target *AccessControl) (ResourcePolicy, error)

// FailedUpdate describes a single resource that could not be updated
type FailedUpdate struct {
	ResourceID string `json:"resource_id"`
	Error      string `json:"error"`

	err error
}

// Err returns the underlying apply error
func (f FailedUpdate) Err() error {
	return f.err
}

// BulkResult aggregates the outcome of a bulk access control update.
// Invariant: SuccessCount + len(FailedUpdates) == TotalRequested.
type BulkResult struct {
	OperationID    string         `json:"operation_id"`
	SuccessCount   int            `json:"success_count"`
	TotalRequested int            `json:"total_requested"`
	FailedUpdates  []FailedUpdate `json:"failed_updates"`
}

// BulkApplier applies one target access control to many resources,
// attempting every resource exactly once and never aborting the batch
// on individual failures
type BulkApplier struct {
	logger   *zap.Logger
	parallel int
}

// NewBulkApplier initializes an applier with a given parallelism bound
// NOTE: a bound below 1 falls back to sequential application
func NewBulkApplier(logger *zap.Logger, parallel int) *BulkApplier {
	if logger == nil {
		logger = zap.NewNop()
	}

	if parallel < 1 {
		parallel = 1
	}

	return &BulkApplier{
		logger:   logger.Named("bulk_applier"),
		parallel: parallel,
	}
}

// Apply fans the target access control out over the given resource ids.
// Per-resource applications may run concurrently up to the configured
// bound, but the aggregated result is reduced in input order so the
// failure list is deterministic. A cancelled context fails the not yet
// issued resources with the context error; already issued applications
// are left to complete, and the counts always add up to the full
// requested total.
func (ba *BulkApplier) Apply(ctx context.Context, target *AccessControl, resourceIDs []string, applyOne ApplyFunc) BulkResult {
	opID := util.NewULID().String()

	result := BulkResult{
		OperationID:    opID,
		TotalRequested: len(resourceIDs),
		FailedUpdates:  make([]FailedUpdate, 0),
	}

	outcomes := make([]error, len(resourceIDs))

	g := new(errgroup.Group)
	sem := make(chan struct{}, ba.parallel)

	for i, id := range resourceIDs {
		i, id := i, id

		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			// not issuing any further applications once the caller gave up
			if err := ctx.Err(); err != nil {
				outcomes[i] = err
				return nil
			}

			if applyOne == nil {
				outcomes[i] = ErrNilApplyFunc
				return nil
			}

			if _, err := applyOne(ctx, id, target); err != nil {
				outcomes[i] = err
			}

			return nil
		})
	}

	// per-resource errors are recorded in outcomes, never returned
	_ = g.Wait()

	for i, err := range outcomes {
		if err == nil {
			result.SuccessCount++
			continue
		}

		result.FailedUpdates = append(result.FailedUpdates, FailedUpdate{
			ResourceID: resourceIDs[i],
			Error:      err.Error(),
			err:        err,
		})
	}

	ba.logger.Info(
		"bulk access control update finished",
		zap.String("operation_id", opID),
		zap.Int("requested", result.TotalRequested),
		zap.Int("succeeded", result.SuccessCount),
		zap.Int("failed", len(result.FailedUpdates)),
	)

	return result
}
