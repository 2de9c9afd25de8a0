package optimistic

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/errors"
	"github.com/packzen/packzen-client/internal/store"
)

func assignBatch(st *store.Store, ids []string, bagID string, calls []Remote) *Batch {
	return &Batch{
		Name:      "batch_assign_bag",
		TargetIDs: ids,
		Apply: func(s *store.Store) {
			s.PatchMany(ids, func(item *domain.TripItem) {
				domain.ResolvePlacementOnBagAssign(bagID).Apply(item)
			})
		},
		Calls: calls,
	}
}

func TestRunBatch_AllSucceed(t *testing.T) {
	p, st := newProtocol(t,
		&domain.TripItem{ID: "i1", Name: "a"},
		&domain.TripItem{ID: "i2", Name: "b", ContainerItemID: domain.Ptr("box")},
		&domain.TripItem{ID: "i3", Name: "c"},
	)

	ids := []string{"i1", "i2", "i3"}
	res := p.RunBatch(context.Background(), assignBatch(st, ids, "bagB", []Remote{succeed, succeed, succeed}))

	require.Equal(t, StatusCommitted, res.Status)
	assert.Equal(t, 3, res.RemoteSucceeded)
	for _, itemID := range ids {
		item, _ := st.Get(itemID)
		require.NotNil(t, item.BagID)
		assert.Equal(t, "bagB", *item.BagID)
		assert.Nil(t, item.ContainerItemID)
	}
}

func TestRunBatch_SingleFailureRollsBackWholeBatch(t *testing.T) {
	originals := []*domain.TripItem{
		{ID: "i1", Name: "a", BagID: domain.Ptr("bagA")},
		{ID: "i2", Name: "b"},
		{ID: "i3", Name: "c", ContainerItemID: domain.Ptr("box")},
	}
	p, st := newProtocol(t, originals...)

	ids := []string{"i1", "i2", "i3"}
	// Two calls land remotely, one fails.
	res := p.RunBatch(context.Background(), assignBatch(st, ids, "bagB", []Remote{succeed, fail, succeed}))

	require.Equal(t, StatusRolledBack, res.Status)
	require.NotNil(t, res.Err)
	assert.Equal(t, 2, res.RemoteSucceeded, "orphaned remote writes must be reported, not hidden")

	// Every item's locally visible fields equal their pre-batch values.
	for _, original := range originals {
		got, ok := st.Get(original.ID)
		require.True(t, ok)
		assert.True(t, got.Equal(original), "item %s must be restored exactly", original.ID)
	}
}

func TestRunBatch_AllCallsAwaitedDespiteFailure(t *testing.T) {
	p, st := newProtocol(t, &domain.TripItem{ID: "i1", Name: "a"}, &domain.TripItem{ID: "i2", Name: "b"})

	var completed atomic.Int32
	slowSucceed := func(context.Context) *errors.Error {
		completed.Add(1)
		return nil
	}
	failing := func(context.Context) *errors.Error {
		completed.Add(1)
		return errors.Remote("nope")
	}

	res := p.RunBatch(context.Background(), assignBatch(st, []string{"i1", "i2"}, "bagB", []Remote{failing, slowSucceed}))

	assert.Equal(t, StatusRolledBack, res.Status)
	assert.Equal(t, int32(2), completed.Load(), "a failure must not cancel sibling calls")
}

func TestRunBatch_EmptyCallsCommits(t *testing.T) {
	p, st := newProtocol(t, &domain.TripItem{ID: "i1", Name: "a"})

	res := p.RunBatch(context.Background(), assignBatch(st, []string{"i1"}, "bagB", nil))

	assert.Equal(t, StatusCommitted, res.Status)
	item, _ := st.Get("i1")
	assert.Equal(t, "bagB", *item.BagID)
}
