package accesspolicy_test

import (
	"context"
	"sync"
	"testing"

	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// recordingApply fails the listed resources and records every attempt
func recordingApply(failing map[string]error) (accesspolicy.ApplyFunc, *sync.Map) {
	attempts := new(sync.Map)

	fn := func(ctx context.Context, resourceID string, target *accesspolicy.AccessControl) (accesspolicy.ResourcePolicy, error) {
		attempts.Store(resourceID, true)

		if err, ok := failing[resourceID]; ok {
			return accesspolicy.ResourcePolicy{}, err
		}

		return accesspolicy.NewResourcePolicy(resourceID, "u1"), nil
	}

	return fn, attempts
}

func TestBulkApplyAllSucceed(t *testing.T) {
	a := assert.New(t)

	ba := accesspolicy.NewBulkApplier(nil, 1)
	fn, _ := recordingApply(nil)

	res := ba.Apply(context.Background(), nil, []string{"r1", "r2", "r3"}, fn)

	a.NotEmpty(res.OperationID)
	a.Equal(3, res.TotalRequested)
	a.Equal(3, res.SuccessCount)
	a.Empty(res.FailedUpdates)
}

func TestBulkApplyPartialFailure(t *testing.T) {
	a := assert.New(t)

	failure := errors.New("storage unavailable")
	fn, attempts := recordingApply(map[string]error{"r2": failure})

	ba := accesspolicy.NewBulkApplier(nil, 1)
	res := ba.Apply(context.Background(), nil, []string{"r1", "r2", "r3"}, fn)

	// one failure never aborts the rest of the batch
	a.Equal(3, res.TotalRequested)
	a.Equal(2, res.SuccessCount)
	a.Len(res.FailedUpdates, 1)
	a.Equal("r2", res.FailedUpdates[0].ResourceID)
	a.Equal(failure.Error(), res.FailedUpdates[0].Error)
	a.Equal(failure, res.FailedUpdates[0].Err())

	for _, id := range []string{"r1", "r2", "r3"} {
		_, attempted := attempts.Load(id)
		a.True(attempted, id)
	}
}

func TestBulkApplyAllFail(t *testing.T) {
	a := assert.New(t)

	failure := errors.New("boom")
	fn, _ := recordingApply(map[string]error{"r1": failure, "r2": failure})

	ba := accesspolicy.NewBulkApplier(nil, 2)
	res := ba.Apply(context.Background(), nil, []string{"r1", "r2"}, fn)

	a.Equal(2, res.TotalRequested)
	a.Zero(res.SuccessCount)
	a.Len(res.FailedUpdates, 2)

	// failures come back in input order regardless of parallelism
	a.Equal("r1", res.FailedUpdates[0].ResourceID)
	a.Equal("r2", res.FailedUpdates[1].ResourceID)
}

func TestBulkApplyParallelMatchesSequential(t *testing.T) {
	a := assert.New(t)

	ids := []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8"}
	failing := map[string]error{
		"r3": errors.New("conflict"),
		"r7": errors.New("conflict"),
	}

	for _, parallel := range []int{1, 4, 16} {
		fn, _ := recordingApply(failing)

		ba := accesspolicy.NewBulkApplier(nil, parallel)
		res := ba.Apply(context.Background(), nil, ids, fn)

		a.Equal(len(ids), res.TotalRequested)
		a.Equal(6, res.SuccessCount)
		a.Len(res.FailedUpdates, 2)
		a.Equal("r3", res.FailedUpdates[0].ResourceID)
		a.Equal("r7", res.FailedUpdates[1].ResourceID)
	}
}

func TestBulkApplyEmptyBatch(t *testing.T) {
	a := assert.New(t)

	ba := accesspolicy.NewBulkApplier(nil, 4)
	fn, _ := recordingApply(nil)

	res := ba.Apply(context.Background(), nil, nil, fn)

	a.Zero(res.TotalRequested)
	a.Zero(res.SuccessCount)
	a.Empty(res.FailedUpdates)
}

func TestBulkApplyNilApplyFunc(t *testing.T) {
	a := assert.New(t)

	ba := accesspolicy.NewBulkApplier(nil, 2)
	res := ba.Apply(context.Background(), nil, []string{"r1", "r2"}, nil)

	a.Zero(res.SuccessCount)
	a.Len(res.FailedUpdates, 2)
	a.Equal(accesspolicy.ErrNilApplyFunc, res.FailedUpdates[0].Err())
}

func TestBulkApplyCancelledContext(t *testing.T) {
	a := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fn, attempts := recordingApply(nil)

	ba := accesspolicy.NewBulkApplier(nil, 2)
	res := ba.Apply(ctx, nil, []string{"r1", "r2", "r3"}, fn)

	// every unissued resource is reported failed with the context error,
	// keeping the counts adding up to the full total
	a.Equal(3, res.TotalRequested)
	a.Zero(res.SuccessCount)
	a.Len(res.FailedUpdates, 3)

	for _, f := range res.FailedUpdates {
		a.Equal(context.Canceled, f.Err())

		_, attempted := attempts.Load(f.ResourceID)
		a.False(attempted, f.ResourceID)
	}
}
