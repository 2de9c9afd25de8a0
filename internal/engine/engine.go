// Package engine composes the store, gateway, rules and optimistic protocol
// into the trip-packing operations a UI calls. One Engine per trip view:
// construct it at view entry, tear it down at view exit.
package engine

import (
	"context"
	"log/slog"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/errors"
	"github.com/packzen/packzen-client/internal/gateway"
	"github.com/packzen/packzen-client/internal/optimistic"
	"github.com/packzen/packzen-client/internal/ratelimit"
	"github.com/packzen/packzen-client/internal/store"
	"github.com/packzen/packzen-client/internal/validation"
)

// Engine owns the mutable state for one trip's packing view.
type Engine struct {
	tripID    string
	store     *store.Store
	client    *gateway.Client
	protocol  *optimistic.Protocol
	validator *validation.Validator
	notices   *Notices
	selection *Selection
	refresh   *ratelimit.IntervalGate
	logger    *slog.Logger
}

// New creates an engine for one trip. The store starts in the loading
// state; call Load to perform the initial fetch.
func New(tripID string, client *gateway.Client, st *store.Store, gate *ratelimit.IntervalGate, logger *slog.Logger) *Engine {
	log := logger.With(slog.String("trip_id", tripID))
	return &Engine{
		tripID:    tripID,
		store:     st,
		client:    client,
		protocol:  optimistic.New(st, log),
		validator: validation.New(),
		notices:   NewNotices(),
		selection: NewSelection(),
		refresh:   gate,
		logger:    log,
	}
}

// Store exposes the entity store for derivations and watch loops.
func (e *Engine) Store() *store.Store { return e.store }

// Notices exposes the user-visible notice recorder.
func (e *Engine) Notices() *Notices { return e.notices }

// Selection exposes the multi-select state.
func (e *Engine) Selection() *Selection { return e.selection }

// TripID returns the trip this engine is scoped to.
func (e *Engine) TripID() string { return e.tripID }

// Load performs the initial full fetch.
func (e *Engine) Load(ctx context.Context) error {
	e.store.SetLoading(true)

	res := gateway.Get[[]*domain.TripItem](ctx, e.client, gateway.ItemsPath(e.tripID))
	if !res.Success {
		e.store.SetError(res.Err)
		e.notices.Error("Couldn't load the packing list: " + res.Err.Message)
		return res.Err
	}

	e.store.ReplaceAll(res.Data)
	e.logger.Info("packing list loaded", slog.Int("items", len(res.Data)))
	return nil
}

// ListBags fetches the trip's bags. Bags are read-only to this engine;
// creating and editing them happens elsewhere in the product.
func (e *Engine) ListBags(ctx context.Context) ([]*domain.Bag, error) {
	res := gateway.Get[[]*domain.Bag](ctx, e.client, gateway.BagsPath(e.tripID))
	if !res.Success {
		return nil, res.Err
	}
	return res.Data, nil
}

// itemUpdate is the full persisted field set sent on every item update.
// Required fields are always present; the backend treats the body as the
// item's complete new state.
type itemUpdate struct {
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	Category        *string `json:"category"`
	Notes           *string `json:"notes"`
	BagID           *string `json:"bag_id"`
	ContainerItemID *string `json:"container_item_id"`
	IsPacked        bool    `json:"is_packed"`
	IsSkipped       bool    `json:"is_skipped"`
	IsContainer     bool    `json:"is_container"`
}

func updateBody(item *domain.TripItem) itemUpdate {
	return itemUpdate{
		Name:            item.Name,
		Quantity:        item.Quantity,
		Category:        item.Category,
		Notes:           item.Notes,
		BagID:           item.BagID,
		ContainerItemID: item.ContainerItemID,
		IsPacked:        item.IsPacked,
		IsSkipped:       item.IsSkipped,
		IsContainer:     item.IsContainer,
	}
}

// putItem returns the remote call that persists an item's full state.
func (e *Engine) putItem(item *domain.TripItem) optimistic.Remote {
	body := updateBody(item)
	path := gateway.ItemPath(e.tripID, item.ID)
	return func(ctx context.Context) *errors.Error {
		res := gateway.Put[*domain.TripItem](ctx, e.client, path, body)
		if !res.Success {
			return res.Err
		}
		return nil
	}
}

// deleteItem returns the remote call that deletes an item.
func (e *Engine) deleteItem(itemID string) optimistic.Remote {
	path := gateway.ItemPath(e.tripID, itemID)
	return func(ctx context.Context) *errors.Error {
		res := gateway.Delete(ctx, e.client, path)
		if !res.Success {
			return res.Err
		}
		return nil
	}
}

// mutateItem runs the standard single-item optimistic flow: read the item,
// compute its full new state, patch locally, persist remotely, roll back on
// failure. The undo affordance re-persists the captured prior state.
func (e *Engine) mutateItem(ctx context.Context, name, itemID string, change func(*domain.TripItem)) (*optimistic.Result, error) {
	current, ok := e.store.Get(itemID)
	if !ok {
		err := errors.NotFoundf("item %s is no longer in this trip", itemID)
		e.notices.Error(err.Message)
		return nil, err
	}

	updated := current.Clone()
	change(updated)

	m := &optimistic.Mutation{
		Name:      name,
		TargetIDs: []string{itemID},
		Apply: func(s *store.Store) {
			s.PatchMany([]string{itemID}, func(item *domain.TripItem) {
				*item = *updated.Clone()
			})
		},
		Call: e.putItem(updated),
		BuildUndo: func(prior []*domain.TripItem) *optimistic.Mutation {
			restored := prior[0].Clone()
			return &optimistic.Mutation{
				Name:      name + "_undo",
				TargetIDs: []string{itemID},
				Apply: func(s *store.Store) {
					s.PatchMany([]string{itemID}, func(item *domain.TripItem) {
						*item = *restored.Clone()
					})
				},
				Call: e.putItem(restored),
			}
		},
	}

	res := e.protocol.Run(ctx, m)
	if res.Status == optimistic.StatusRolledBack {
		e.notices.Failure(res.Err)
	}
	return res, nil
}
