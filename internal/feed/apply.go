package feed

import (
	"log/slog"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/store"
)

// Applier reconciles change events into the entity store using the same
// primitives local mutations use. Application is idempotent: re-inserting a
// present id replaces it, re-deleting an absent id is a no-op, re-applying
// an identical update changes nothing.
//
// An event arriving while a local optimistic mutation on the same item is
// still in flight is applied anyway; a later rollback may overwrite it.
// Last writer wins, by design of the source product.
type Applier struct {
	store  *store.Store
	tripID string
	logger *slog.Logger

	// TripDeleted is invoked when the trip itself is deleted remotely.
	TripDeleted func()
}

// NewApplier creates an applier scoped to one trip.
func NewApplier(st *store.Store, tripID string, logger *slog.Logger) *Applier {
	return &Applier{store: st, tripID: tripID, logger: logger}
}

// Bind registers this applier's handlers on a subscriber.
// The feed does not pre-filter by trip; parent-id filtering happens here.
func (a *Applier) Bind(sub *Subscriber) {
	sub.On(domain.KindTripItem, a.applyItem)
	sub.On(domain.KindBag, a.applyBag)
	sub.On(domain.KindTrip, a.applyTrip)
}

func (a *Applier) applyItem(ev domain.ChangeEvent) {
	if ev.ParentID != a.tripID {
		return
	}

	switch ev.Action {
	case domain.ActionCreated, domain.ActionUpdated:
		if ev.Item == nil {
			a.logger.Warn("dropping item event without payload",
				slog.String("action", string(ev.Action)), slog.String("entity_id", ev.EntityID))
			return
		}
		a.upsert(ev.Item)
	case domain.ActionDeleted:
		a.store.RemoveWhere([]string{ev.EntityID})
	}
}

// upsert installs the full remote item state. Updates go through PatchMany
// so untouched entries keep their identity; an unknown id falls through to
// Insert, which covers create/update arriving out of order.
func (a *Applier) upsert(item *domain.TripItem) {
	incoming := item.Clone()
	if _, ok := a.store.Get(incoming.ID); ok {
		a.store.PatchMany([]string{incoming.ID}, func(existing *domain.TripItem) {
			*existing = *incoming.Clone()
		})
		return
	}
	a.store.Insert(incoming)
}

func (a *Applier) applyBag(ev domain.ChangeEvent) {
	if ev.ParentID != a.tripID {
		return
	}

	// Bag create/update do not touch items. Bag deletion unassigns the
	// bag's items, mirroring the backend's behavior so the local view does
	// not dangle references until the next refresh.
	if ev.Action == domain.ActionDeleted {
		n := a.store.PatchWhere(
			func(item *domain.TripItem) bool { return item.InBag(ev.EntityID) },
			func(item *domain.TripItem) { item.BagID = nil },
		)
		if n > 0 {
			a.logger.Info("bag deleted remotely, items unassigned",
				slog.String("bag_id", ev.EntityID), slog.Int("items", n))
		}
	}
}

func (a *Applier) applyTrip(ev domain.ChangeEvent) {
	if ev.EntityID != a.tripID || ev.Action != domain.ActionDeleted {
		return
	}
	a.logger.Warn("trip deleted remotely")
	if a.TripDeleted != nil {
		a.TripDeleted()
	}
}
