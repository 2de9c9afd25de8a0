package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/errors"
	"github.com/packzen/packzen-client/internal/optimistic"
	"github.com/packzen/packzen-client/internal/store"
)

// PlanDelete computes how deleting an item should proceed. Plain items and
// empty containers return a DirectDelete plan; a populated container needs
// a cascade choice from the user before ExecuteDelete may run.
func (e *Engine) PlanDelete(itemID string) (domain.DeletePlan, error) {
	item, ok := e.store.Get(itemID)
	if !ok {
		return domain.DeletePlan{}, errors.NotFoundf("item %s is no longer in this trip", itemID)
	}
	snap := e.store.Snapshot()
	return domain.PlanDelete(item, snap.Items), nil
}

// DeleteItem removes a plain item or empty container after its single
// confirm. Populated containers must go through ExecuteDelete with a
// cascade choice.
func (e *Engine) DeleteItem(ctx context.Context, itemID string) (*optimistic.Result, error) {
	plan, err := e.PlanDelete(itemID)
	if err != nil {
		e.notices.Error(err.Error())
		return nil, err
	}
	if plan.Mode == domain.NeedsChoice {
		err := errors.Validation(fmt.Sprintf("%q contains %d items; choose what happens to them", plan.Item.Name, len(plan.Contained)))
		e.notices.Error(err.Message)
		return nil, err
	}
	return e.deleteSingle(ctx, plan.Item), nil
}

// ExecuteDelete runs a populated container's delete with the user's cascade
// choice. Both choices finish their contained-item step before the
// container's own delete call goes out, so the backend never sees an item
// whose container reference points at a deleted row.
func (e *Engine) ExecuteDelete(ctx context.Context, plan domain.DeletePlan, choice domain.CascadeChoice) error {
	if plan.Mode == domain.DirectDelete {
		res := e.deleteSingle(ctx, plan.Item)
		if res.Status == optimistic.StatusRolledBack {
			return res.Err
		}
		return nil
	}

	switch choice {
	case domain.KeepItems:
		return e.deleteKeepingItems(ctx, plan)
	case domain.DeleteAll:
		return e.deleteAll(ctx, plan)
	default:
		return errors.Internal("unknown cascade choice")
	}
}

// deleteSingle removes one item optimistically.
func (e *Engine) deleteSingle(ctx context.Context, item *domain.TripItem) *optimistic.Result {
	m := &optimistic.Mutation{
		Name:      "delete_item",
		TargetIDs: []string{item.ID},
		Apply: func(s *store.Store) {
			s.RemoveWhere([]string{item.ID})
		},
		Call: e.deleteItem(item.ID),
	}
	res := e.protocol.Run(ctx, m)
	if res.Status == optimistic.StatusRolledBack {
		e.notices.Failure(res.Err)
	} else {
		e.selection.Drop([]string{item.ID})
	}
	return res
}

// deleteKeepingItems moves each contained item out (inheriting the
// container's bag, or unassigned if it had none) as individual optimistic
// updates, then deletes the now-empty container.
func (e *Engine) deleteKeepingItems(ctx context.Context, plan domain.DeletePlan) error {
	placement := plan.ReassignPlacement()
	for _, contained := range plan.Contained {
		res, err := e.mutateItem(ctx, "cascade_reassign", contained.ID, func(item *domain.TripItem) {
			placement.Apply(item)
		})
		if err != nil {
			return err
		}
		if res.Status == optimistic.StatusRolledBack {
			// Stop here: already-moved items stay moved (each was its own
			// committed mutation), but the container must not be deleted
			// while the backend still has items pointing at it.
			return res.Err
		}
	}

	res := e.deleteSingle(ctx, plan.Item)
	if res.Status == optimistic.StatusRolledBack {
		return res.Err
	}
	e.notices.Info(fmt.Sprintf("Deleted %q, kept %d items", plan.Item.Name, len(plan.Contained)))
	return nil
}

// deleteAll removes the container and its contents together: the contained
// items as one all-or-nothing batch first, then the container itself.
func (e *Engine) deleteAll(ctx context.Context, plan domain.DeletePlan) error {
	containedIDs := make([]string, len(plan.Contained))
	calls := make([]optimistic.Remote, len(plan.Contained))
	for i, contained := range plan.Contained {
		containedIDs[i] = contained.ID
		calls[i] = e.deleteItem(contained.ID)
	}

	batch := &optimistic.Batch{
		Name:      "cascade_delete_contents",
		TargetIDs: containedIDs,
		Apply: func(s *store.Store) {
			s.RemoveWhere(containedIDs)
		},
		Calls: calls,
	}
	batchRes := e.protocol.RunBatch(ctx, batch)
	if batchRes.Status == optimistic.StatusRolledBack {
		e.notices.Failure(batchRes.Err)
		return batchRes.Err
	}

	res := e.deleteSingle(ctx, plan.Item)
	if res.Status == optimistic.StatusRolledBack {
		return res.Err
	}

	e.selection.Drop(containedIDs)
	e.notices.Info(fmt.Sprintf("Deleted %d items", plan.TotalCount()))
	e.logger.Info("container cascade delete finished",
		slog.String("container_id", plan.Item.ID),
		slog.Int("deleted", plan.TotalCount()))
	return nil
}
