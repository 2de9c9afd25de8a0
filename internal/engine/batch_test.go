package engine

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/errors"
	"github.com/packzen/packzen-client/internal/optimistic"
)

func TestBatchAssignBagCommitsAndClearsSelection(t *testing.T) {
	b := newBackend(t, item("itm_1", "Socks"), item("itm_2", "Charger"), item("itm_3", "Hat"))
	e := newTestEngine(t, b)

	e.Selection().Toggle("itm_1")
	e.Selection().Toggle("itm_3")

	res, err := e.BatchAssignBag(context.Background(), "bag_main")
	require.NoError(t, err)
	assert.Equal(t, optimistic.StatusCommitted, res.Status)
	assert.Equal(t, 2, res.RemoteSucceeded)

	for _, id := range []string{"itm_1", "itm_3"} {
		got, ok := e.Store().Get(id)
		require.True(t, ok)
		require.NotNil(t, got.BagID)
		assert.Equal(t, "bag_main", *got.BagID)
	}
	untouched, ok := e.Store().Get("itm_2")
	require.True(t, ok)
	assert.Nil(t, untouched.BagID)

	// Success ends selection mode.
	assert.False(t, e.Selection().Active())
	assert.Zero(t, e.Selection().Count())
}

func TestBatchRollbackRestoresAllAndReportsOrphans(t *testing.T) {
	seed1 := item("itm_1", "Socks")
	seed1.BagID = domain.Ptr("bag_old")
	b := newBackend(t, seed1, item("itm_2", "Charger"), item("itm_3", "Hat"))
	b.failPUT["itm_2"] = http.StatusInternalServerError
	e := newTestEngine(t, b)

	before := e.Store().Snapshot()
	for _, id := range []string{"itm_1", "itm_2", "itm_3"} {
		e.Selection().Toggle(id)
	}

	res, err := e.BatchAssignBag(context.Background(), "bag_main")
	require.NoError(t, err)
	assert.Equal(t, optimistic.StatusRolledBack, res.Status)
	assert.Equal(t, 2, res.RemoteSucceeded)

	// Every item is back to its pre-batch state, including the two whose
	// requests succeeded remotely.
	after := e.Store().Snapshot()
	require.Len(t, after.Items, len(before.Items))
	for i, item := range before.Items {
		assert.True(t, after.Items[i].Equal(item), "item %s diverged", item.ID)
	}

	// Selection survives a failed batch so the user can retry.
	assert.Equal(t, 3, e.Selection().Count())

	notices := e.Notices().Recent()
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[0].Message, "may have saved on the server")
}

func TestBatchAssignContainerRefusesContainerInSelection(t *testing.T) {
	b := newBackend(t, container("itm_cube", "Packing cube"), container("itm_pouch", "Pouch"), item("itm_1", "Socks"))
	e := newTestEngine(t, b)

	e.Selection().Toggle("itm_1")
	e.Selection().Toggle("itm_pouch")

	version := e.Store().Version()
	_, err := e.BatchAssignContainer(context.Background(), "itm_cube")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidPlacement))

	// The whole batch was refused: no local change, no requests.
	assert.Equal(t, version, e.Store().Version())
	_, _, puts, _ := b.requestCounts()
	assert.Zero(t, puts)
}

func TestBatchAssignContainerPlacesAllSelected(t *testing.T) {
	b := newBackend(t, container("itm_cube", "Packing cube"), item("itm_1", "Socks"), item("itm_2", "Charger"))
	e := newTestEngine(t, b)

	e.Selection().Toggle("itm_1")
	e.Selection().Toggle("itm_2")

	res, err := e.BatchAssignContainer(context.Background(), "itm_cube")
	require.NoError(t, err)
	assert.Equal(t, optimistic.StatusCommitted, res.Status)

	for _, id := range []string{"itm_1", "itm_2"} {
		got, ok := e.Store().Get(id)
		require.True(t, ok)
		require.NotNil(t, got.ContainerItemID)
		assert.Equal(t, "itm_cube", *got.ContainerItemID)
		assert.Nil(t, got.BagID)
	}
}

func TestBatchSetSkipped(t *testing.T) {
	b := newBackend(t, item("itm_1", "Socks"), item("itm_2", "Charger"))
	e := newTestEngine(t, b)

	e.Selection().Toggle("itm_1")
	e.Selection().Toggle("itm_2")

	res, err := e.BatchSetSkipped(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, optimistic.StatusCommitted, res.Status)

	snap := e.Store().Snapshot()
	for _, item := range snap.Items {
		assert.True(t, item.IsSkipped)
	}
}

func TestBatchRecategorize(t *testing.T) {
	b := newBackend(t, item("itm_1", "Socks"), item("itm_2", "Charger"))
	e := newTestEngine(t, b)

	e.Selection().Toggle("itm_1")
	res, err := e.BatchRecategorize(context.Background(), domain.Ptr("Clothing"))
	require.NoError(t, err)
	require.Equal(t, optimistic.StatusCommitted, res.Status)

	got, ok := e.Store().Get("itm_1")
	require.True(t, ok)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Clothing", *got.Category)
}

func TestBatchDeleteRemovesSelection(t *testing.T) {
	b := newBackend(t, item("itm_1", "Socks"), item("itm_2", "Charger"), item("itm_3", "Hat"))
	e := newTestEngine(t, b)

	e.Selection().Toggle("itm_1")
	e.Selection().Toggle("itm_2")

	res, err := e.BatchDelete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, optimistic.StatusCommitted, res.Status)

	snap := e.Store().Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "itm_3", snap.Items[0].ID)
	assert.False(t, e.Selection().Active())
}

func TestBatchDeleteRefusesContainers(t *testing.T) {
	b := newBackend(t, container("itm_cube", "Packing cube"), item("itm_1", "Socks"))
	e := newTestEngine(t, b)

	e.Selection().Toggle("itm_cube")
	e.Selection().Toggle("itm_1")

	_, err := e.BatchDelete(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Equal(t, 2, e.Store().Len())
}

func TestBatchWithEmptySelection(t *testing.T) {
	b := newBackend(t, item("itm_1", "Socks"))
	e := newTestEngine(t, b)

	_, err := e.BatchAssignBag(context.Background(), "bag_main")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
