package engine

import (
	"context"
	"log/slog"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/gateway"
)

// SilentRefresh refetches the full list and reconciles it into the store
// without any loading state. At most one refresh per trip runs per gate
// interval; callers fire it freely (feed reconnect, foreground regain) and
// the excess invocations are no-ops.
func (e *Engine) SilentRefresh(ctx context.Context) error {
	if !e.refresh.Allow(e.tripID) {
		e.logger.Debug("silent refresh skipped, inside minimum interval")
		return nil
	}

	res := gateway.Get[[]*domain.TripItem](ctx, e.client, gateway.ItemsPath(e.tripID))
	if !res.Success {
		// Keep showing the stale list; the feed or a later refresh recovers.
		e.logger.Warn("silent refresh failed", slog.String("error", res.Err.Error()))
		return res.Err
	}

	e.reconcile(res.Data)
	return nil
}

// ForegroundRegained is the hook a host calls when the app returns to the
// foreground. It triggers a silent refresh to pick up anything missed while
// the feed connection was backgrounded.
func (e *Engine) ForegroundRegained(ctx context.Context) {
	_ = e.SilentRefresh(ctx)
}

// reconcile merges a fresh server list into the store item by item instead
// of swapping the slice wholesale. Unchanged items keep their identity, so a
// refresh that finds nothing new leaves the store version untouched and the
// UI does not re-render.
func (e *Engine) reconcile(fresh []*domain.TripItem) {
	snap := e.store.Snapshot()
	current := make(map[string]*domain.TripItem, len(snap.Items))
	for _, item := range snap.Items {
		current[item.ID] = item
	}

	inserted, updated := 0, 0
	for _, item := range fresh {
		prior, ok := current[item.ID]
		delete(current, item.ID)
		if ok && prior.Equal(item) {
			continue
		}
		replacement := item.Clone()
		e.store.Insert(replacement)
		if ok {
			updated++
		} else {
			inserted++
		}
	}

	var removedIDs []string
	for itemID := range current {
		removedIDs = append(removedIDs, itemID)
	}
	if len(removedIDs) > 0 {
		e.store.RemoveWhere(removedIDs)
		e.selection.Drop(removedIDs)
	}

	if inserted+updated+len(removedIDs) > 0 {
		e.logger.Info("silent refresh reconciled",
			slog.Int("inserted", inserted),
			slog.Int("updated", updated),
			slog.Int("removed", len(removedIDs)))
	}
}
