package engine

import (
	"context"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/errors"
	"github.com/packzen/packzen-client/internal/gateway"
	"github.com/packzen/packzen-client/internal/id"
	"github.com/packzen/packzen-client/internal/optimistic"
	"github.com/packzen/packzen-client/internal/store"
)

// TogglePacked flips an item's packed flag.
func (e *Engine) TogglePacked(ctx context.Context, itemID string) (*optimistic.Result, error) {
	return e.mutateItem(ctx, "toggle_packed", itemID, func(item *domain.TripItem) {
		item.IsPacked = !item.IsPacked
	})
}

// ToggleSkipped flips an item's skipped flag.
func (e *Engine) ToggleSkipped(ctx context.Context, itemID string) (*optimistic.Result, error) {
	return e.mutateItem(ctx, "toggle_skipped", itemID, func(item *domain.TripItem) {
		item.IsSkipped = !item.IsSkipped
	})
}

type renameInput struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

type quantityInput struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=999"`
}

// Rename changes an item's name.
func (e *Engine) Rename(ctx context.Context, itemID, name string) (*optimistic.Result, error) {
	if err := e.validator.Validate(renameInput{Name: name}); err != nil {
		e.noticeValidation(err)
		return nil, err
	}
	return e.mutateItem(ctx, "rename", itemID, func(item *domain.TripItem) {
		item.Name = name
	})
}

// SetQuantity changes an item's quantity.
func (e *Engine) SetQuantity(ctx context.Context, itemID string, quantity int) (*optimistic.Result, error) {
	if err := e.validator.Validate(quantityInput{Quantity: quantity}); err != nil {
		e.noticeValidation(err)
		return nil, err
	}
	return e.mutateItem(ctx, "set_quantity", itemID, func(item *domain.TripItem) {
		item.Quantity = quantity
	})
}

// SetNotes changes an item's notes. Nil clears them.
func (e *Engine) SetNotes(ctx context.Context, itemID string, notes *string) (*optimistic.Result, error) {
	return e.mutateItem(ctx, "set_notes", itemID, func(item *domain.TripItem) {
		item.Notes = notes
	})
}

// Recategorize changes an item's category label. Nil clears it.
// Categories are free-text labels on items: renaming a Category elsewhere
// does not rewrite items, so this is also the manual fix-up path.
func (e *Engine) Recategorize(ctx context.Context, itemID string, category *string) (*optimistic.Result, error) {
	return e.mutateItem(ctx, "recategorize", itemID, func(item *domain.TripItem) {
		item.Category = category
	})
}

// MoveToBag assigns an item to a bag, clearing any container placement.
func (e *Engine) MoveToBag(ctx context.Context, itemID, bagID string) (*optimistic.Result, error) {
	return e.mutateItem(ctx, "move_to_bag", itemID, func(item *domain.TripItem) {
		domain.ResolvePlacementOnBagAssign(bagID).Apply(item)
	})
}

// MoveToContainer places an item inside a container, clearing any bag
// placement. Placement rules run before any local change or network call.
func (e *Engine) MoveToContainer(ctx context.Context, itemID, containerID string) (*optimistic.Result, error) {
	item, ok := e.store.Get(itemID)
	if !ok {
		err := errors.NotFoundf("item %s is no longer in this trip", itemID)
		e.notices.Error(err.Message)
		return nil, err
	}

	snap := e.store.Snapshot()
	if err := domain.ValidateContainerAssignment(item, domain.Ptr(containerID), snap.Items); err != nil {
		e.noticeValidation(err)
		return nil, err
	}

	return e.mutateItem(ctx, "move_to_container", itemID, func(it *domain.TripItem) {
		domain.ResolvePlacementOnContainerAssign(containerID).Apply(it)
	})
}

// ClearPlacement makes an item unassigned ("worn").
func (e *Engine) ClearPlacement(ctx context.Context, itemID string) (*optimistic.Result, error) {
	return e.mutateItem(ctx, "clear_placement", itemID, func(item *domain.TripItem) {
		domain.ResolveUnassigned().Apply(item)
	})
}

// SetContainer promotes or demotes an item's container status. Promotion
// forces the item out of any container it was in; demotion requires the
// container to be empty.
func (e *Engine) SetContainer(ctx context.Context, itemID string, isContainer bool) (*optimistic.Result, error) {
	item, ok := e.store.Get(itemID)
	if !ok {
		err := errors.NotFoundf("item %s is no longer in this trip", itemID)
		e.notices.Error(err.Message)
		return nil, err
	}

	if !isContainer && item.IsContainer {
		snap := e.store.Snapshot()
		if err := domain.ValidateContainerDemotion(item, snap.Items); err != nil {
			e.noticeValidation(err)
			return nil, err
		}
	}

	return e.mutateItem(ctx, "set_container", itemID, func(it *domain.TripItem) {
		domain.ResolveContainerStatus(isContainer).Apply(it)
	})
}

// AddItem creates an item optimistically: it appears in the list with a
// temporary id immediately, then takes the server-assigned id on commit.
// Rollback removes it entirely.
func (e *Engine) AddItem(ctx context.Context, input domain.NewItemInput) (*domain.TripItem, error) {
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if err := e.validator.Validate(input); err != nil {
		e.noticeValidation(err)
		return nil, err
	}

	tempID := id.MustGenerate(id.PrefixItem)
	temp := &domain.TripItem{
		ID:          tempID,
		TripID:      e.tripID,
		Name:        input.Name,
		Quantity:    input.Quantity,
		Category:    input.Category,
		Notes:       input.Notes,
		BagID:       input.BagID,
		IsContainer: input.IsContainer,
	}

	var created *domain.TripItem
	m := &optimistic.Mutation{
		Name:      "add_item",
		TargetIDs: []string{tempID},
		Apply: func(s *store.Store) {
			s.Insert(temp)
		},
		Call: func(ctx context.Context) *errors.Error {
			res := gateway.Post[*domain.TripItem](ctx, e.client, gateway.ItemsPath(e.tripID), input)
			if !res.Success {
				return res.Err
			}
			created = res.Data
			return nil
		},
	}

	res := e.protocol.Run(ctx, m)
	if res.Status == optimistic.StatusRolledBack {
		e.notices.Failure(res.Err)
		return nil, res.Err
	}

	// Swap the temporary id for the server-assigned one. The feed's create
	// event for the same id lands as an idempotent replace.
	if created != nil && created.ID != tempID {
		e.store.RemoveWhere([]string{tempID})
		e.store.Insert(created)
		return created.Clone(), nil
	}
	return temp.Clone(), nil
}

func (e *Engine) noticeValidation(err error) {
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		e.notices.Error(domainErr.Message)
		return
	}
	e.notices.Error(err.Error())
}
