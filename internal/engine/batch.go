package engine

import (
	"context"
	"fmt"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/errors"
	"github.com/packzen/packzen-client/internal/optimistic"
	"github.com/packzen/packzen-client/internal/store"
)

// BatchAssignBag moves every selected item into the given bag.
func (e *Engine) BatchAssignBag(ctx context.Context, bagID string) (*optimistic.BatchResult, error) {
	return e.mutateSelection(ctx, "batch_assign_bag", func(item *domain.TripItem) {
		domain.ResolvePlacementOnBagAssign(bagID).Apply(item)
	})
}

// BatchAssignContainer places every selected item inside the given
// container. If any selected item is itself a container the whole batch is
// refused before a single local change or network call happens; containers
// cannot nest, and silently dropping them from the selection would pack a
// different set than the user picked.
func (e *Engine) BatchAssignContainer(ctx context.Context, containerID string) (*optimistic.BatchResult, error) {
	snap := e.store.Snapshot()
	for _, item := range snap.Items {
		if e.selection.Contains(item.ID) && item.IsContainer {
			err := errors.InvalidPlacementf("%q is a container and cannot go inside another container", item.Name)
			e.notices.Error(err.Message)
			return nil, err
		}
	}
	for _, item := range snap.Items {
		if !e.selection.Contains(item.ID) {
			continue
		}
		if err := domain.ValidateContainerAssignment(item, domain.Ptr(containerID), snap.Items); err != nil {
			e.noticeValidation(err)
			return nil, err
		}
	}

	return e.mutateSelection(ctx, "batch_assign_container", func(item *domain.TripItem) {
		domain.ResolvePlacementOnContainerAssign(containerID).Apply(item)
	})
}

// BatchClearPlacement makes every selected item unassigned.
func (e *Engine) BatchClearPlacement(ctx context.Context) (*optimistic.BatchResult, error) {
	return e.mutateSelection(ctx, "batch_clear_placement", func(item *domain.TripItem) {
		domain.ResolveUnassigned().Apply(item)
	})
}

// BatchRecategorize sets every selected item's category. Nil clears it.
func (e *Engine) BatchRecategorize(ctx context.Context, category *string) (*optimistic.BatchResult, error) {
	return e.mutateSelection(ctx, "batch_recategorize", func(item *domain.TripItem) {
		item.Category = category
	})
}

// BatchSetSkipped marks or unmarks every selected item as skipped.
func (e *Engine) BatchSetSkipped(ctx context.Context, skipped bool) (*optimistic.BatchResult, error) {
	return e.mutateSelection(ctx, "batch_set_skipped", func(item *domain.TripItem) {
		item.IsSkipped = skipped
	})
}

// BatchDelete removes every selected item. Containers in the selection go
// through the cascade flow one at a time instead, so this refuses them.
func (e *Engine) BatchDelete(ctx context.Context) (*optimistic.BatchResult, error) {
	ids, items, err := e.selectedItems()
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.IsContainer {
			verr := errors.Validation(fmt.Sprintf("%q is a container; delete it on its own so you can choose what happens to its contents", item.Name))
			e.notices.Error(verr.Message)
			return nil, verr
		}
	}

	calls := make([]optimistic.Remote, len(ids))
	for i, itemID := range ids {
		calls[i] = e.deleteItem(itemID)
	}

	batch := &optimistic.Batch{
		Name:      "batch_delete",
		TargetIDs: ids,
		Apply: func(s *store.Store) {
			s.RemoveWhere(ids)
		},
		Calls: calls,
	}
	return e.finishBatch(e.protocol.RunBatch(ctx, batch), len(ids)), nil
}

// mutateSelection runs the shared field-change batch flow: one local patch
// across the selection, one PUT per item, all-or-nothing local rollback.
func (e *Engine) mutateSelection(ctx context.Context, name string, change func(*domain.TripItem)) (*optimistic.BatchResult, error) {
	ids, items, err := e.selectedItems()
	if err != nil {
		return nil, err
	}

	calls := make([]optimistic.Remote, len(items))
	for i, item := range items {
		updated := item.Clone()
		change(updated)
		calls[i] = e.putItem(updated)
	}

	batch := &optimistic.Batch{
		Name:      name,
		TargetIDs: ids,
		Apply: func(s *store.Store) {
			s.PatchMany(ids, change)
		},
		Calls: calls,
	}
	return e.finishBatch(e.protocol.RunBatch(ctx, batch), len(ids)), nil
}

// selectedItems resolves the current selection against the store, in store
// order. Selected ids that already left the store are skipped.
func (e *Engine) selectedItems() ([]string, []*domain.TripItem, error) {
	if e.selection.Count() == 0 {
		err := errors.Validation("nothing is selected")
		e.notices.Error(err.Message)
		return nil, nil, err
	}

	snap := e.store.Snapshot()
	var ids []string
	var items []*domain.TripItem
	for _, item := range snap.Items {
		if e.selection.Contains(item.ID) {
			ids = append(ids, item.ID)
			items = append(items, item)
		}
	}
	if len(ids) == 0 {
		err := errors.Validation("the selected items are no longer in this trip")
		e.notices.Error(err.Message)
		return nil, nil, err
	}
	return ids, items, nil
}

// finishBatch turns a settled batch into user-visible state: selection mode
// ends on success, a failure notice mentions orphaned remote writes so the
// divergence until the next refresh isn't silent.
func (e *Engine) finishBatch(res *optimistic.BatchResult, targets int) *optimistic.BatchResult {
	if res.Status == optimistic.StatusCommitted {
		e.selection.Clear()
		return res
	}

	if res.RemoteSucceeded > 0 {
		e.notices.Error(fmt.Sprintf(
			"The change to %d items was undone, but %d of them may have saved on the server. Refresh to resync.",
			targets, res.RemoteSucceeded))
	} else {
		e.notices.Failure(res.Err)
	}
	return res
}
