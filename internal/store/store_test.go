package store

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packzen/packzen-client/internal/domain"
)

func newTestStore(t *testing.T, items ...*domain.TripItem) *Store {
	t.Helper()
	s := New(slog.Default())
	s.ReplaceAll(items)
	return s
}

func item(id, name string) *domain.TripItem {
	return &domain.TripItem{ID: id, Name: name, Quantity: 1}
}

func TestNew_StartsLoading(t *testing.T) {
	s := New(slog.Default())

	snap := s.Snapshot()

	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Items)
}

func TestReplaceAll_EndsLoadingAndClearsError(t *testing.T) {
	s := New(slog.Default())
	s.SetError(assert.AnError)

	s.ReplaceAll([]*domain.TripItem{item("i1", "Socks")})

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Socks", snap.Items[0].Name)
}

func TestReplaceAll_CopiesInput(t *testing.T) {
	src := item("i1", "Socks")
	s := newTestStore(t, src)

	src.Name = "Mutated"

	got, ok := s.Get("i1")
	require.True(t, ok)
	assert.Equal(t, "Socks", got.Name)
}

func TestPatchMany_OnlyTouchesListedIDs(t *testing.T) {
	s := newTestStore(t, item("i1", "Socks"), item("i2", "Shirt"), item("i3", "Charger"))

	n := s.PatchMany([]string{"i1", "i3"}, func(it *domain.TripItem) {
		it.IsPacked = true
	})

	assert.Equal(t, 2, n)
	snap := s.Snapshot()
	assert.True(t, snap.Items[0].IsPacked)
	assert.False(t, snap.Items[1].IsPacked)
	assert.True(t, snap.Items[2].IsPacked)
}

func TestPatchMany_PreservesOrder(t *testing.T) {
	s := newTestStore(t, item("i1", "a"), item("i2", "b"), item("i3", "c"))

	s.PatchMany([]string{"i2"}, func(it *domain.TripItem) { it.Name = "B" })

	snap := s.Snapshot()
	assert.Equal(t, []string{"i1", "i2", "i3"}, []string{snap.Items[0].ID, snap.Items[1].ID, snap.Items[2].ID})
}

func TestPatchMany_NoopUpdateReportsZero(t *testing.T) {
	s := newTestStore(t, item("i1", "Socks"))
	before := s.Version()

	n := s.PatchMany([]string{"i1"}, func(it *domain.TripItem) {
		it.Name = "Socks" // same value
	})

	assert.Equal(t, 0, n)
	assert.Equal(t, before, s.Version())
}

func TestPatchWhere_ByPredicate(t *testing.T) {
	packed := item("i1", "Socks")
	packed.IsPacked = true
	s := newTestStore(t, packed, item("i2", "Shirt"))

	n := s.PatchWhere(
		func(it *domain.TripItem) bool { return it.IsPacked },
		func(it *domain.TripItem) { it.IsSkipped = true },
	)

	assert.Equal(t, 1, n)
	got, _ := s.Get("i1")
	assert.True(t, got.IsSkipped)
	got2, _ := s.Get("i2")
	assert.False(t, got2.IsSkipped)
}

func TestRemoveWhere_AbsentIDIsNoop(t *testing.T) {
	s := newTestStore(t, item("i1", "Socks"))
	before := s.Version()

	n := s.RemoveWhere([]string{"ghost"})

	assert.Equal(t, 0, n)
	assert.Equal(t, before, s.Version())
	assert.Equal(t, 1, s.Len())
}

func TestRemoveWhere_RemovesMatching(t *testing.T) {
	s := newTestStore(t, item("i1", "a"), item("i2", "b"), item("i3", "c"))

	n := s.RemoveWhere([]string{"i1", "i3"})

	assert.Equal(t, 2, n)
	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "i2", snap.Items[0].ID)
}

func TestInsert_Appends(t *testing.T) {
	s := newTestStore(t, item("i1", "a"))

	s.Insert(item("i2", "b"))

	snap := s.Snapshot()
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "i2", snap.Items[1].ID)
}

func TestInsert_DuplicateIDReplacesInPlace(t *testing.T) {
	s := newTestStore(t, item("i1", "a"), item("i2", "b"))

	updated := item("i1", "a-prime")
	s.Insert(updated)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "a-prime", snap.Items[0].Name)
	assert.Equal(t, "i1", snap.Items[0].ID)
}

func TestInsert_IdenticalDuplicateIsNoop(t *testing.T) {
	s := newTestStore(t, item("i1", "a"))
	before := s.Version()

	s.Insert(item("i1", "a"))

	assert.Equal(t, before, s.Version())
	assert.Equal(t, 1, s.Len())
}

func TestSetError_KeepsStaleItems(t *testing.T) {
	s := newTestStore(t, item("i1", "Socks"))

	s.SetError(assert.AnError)

	snap := s.Snapshot()
	assert.NotEmpty(t, snap.Error)
	assert.Len(t, snap.Items, 1)
	assert.False(t, snap.Loading)
}

func TestChanged_SignalsOnMutation(t *testing.T) {
	s := newTestStore(t, item("i1", "Socks"))

	// Drain any pending signal from setup.
	select {
	case <-s.Changed():
	default:
	}

	s.PatchOne("i1", func(it *domain.TripItem) { it.IsPacked = true })

	select {
	case <-s.Changed():
	default:
		t.Fatal("expected a change signal")
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s := newTestStore(t, item("i1", "Socks"))

	snap := s.Snapshot()
	snap.Items[0].Name = "Mutated"

	got, _ := s.Get("i1")
	assert.Equal(t, "Socks", got.Name)
}
