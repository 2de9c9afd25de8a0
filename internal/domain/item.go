// Package domain defines the PackZen entities and the pure rules that govern
// them: trip items, bags, categories, placement constraints, container
// deletion cascades, and the change events used for multi-device sync.
package domain

import "time"

// TripItem is a packable unit belonging to exactly one trip.
//
// Placement is mutually exclusive: at most one of BagID and ContainerItemID
// is non-nil at any time. Both nil means "unassigned / worn". An item with
// IsContainer set must always have ContainerItemID nil (containers cannot
// be nested).
type TripItem struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	// Category is a denormalized free-text label, not a foreign key.
	// Renaming a Category does not rewrite items that carry the old label.
	Category        *string `json:"category"`
	Notes           *string `json:"notes"`
	BagID           *string `json:"bag_id"`
	ContainerItemID *string `json:"container_item_id"`
	IsPacked        bool    `json:"is_packed"`
	IsSkipped       bool    `json:"is_skipped"`
	IsContainer     bool    `json:"is_container"`
}

// Clone returns a deep copy of the item. Pointer fields get fresh storage so
// mutation snapshots cannot alias live store data.
func (i *TripItem) Clone() *TripItem {
	c := *i
	c.Category = clonePtr(i.Category)
	c.Notes = clonePtr(i.Notes)
	c.BagID = clonePtr(i.BagID)
	c.ContainerItemID = clonePtr(i.ContainerItemID)
	return &c
}

// Equal reports whether two items have identical field values.
func (i *TripItem) Equal(o *TripItem) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.ID == o.ID &&
		i.TripID == o.TripID &&
		i.Name == o.Name &&
		i.Quantity == o.Quantity &&
		ptrEqual(i.Category, o.Category) &&
		ptrEqual(i.Notes, o.Notes) &&
		ptrEqual(i.BagID, o.BagID) &&
		ptrEqual(i.ContainerItemID, o.ContainerItemID) &&
		i.IsPacked == o.IsPacked &&
		i.IsSkipped == o.IsSkipped &&
		i.IsContainer == o.IsContainer &&
		i.CreatedAt.Equal(o.CreatedAt) &&
		i.UpdatedAt.Equal(o.UpdatedAt)
}

// PlacementValid reports whether the item honors the structural invariants:
// bag/container placement is mutually exclusive, and containers are never
// themselves contained.
func (i *TripItem) PlacementValid() bool {
	if i.BagID != nil && i.ContainerItemID != nil {
		return false
	}
	if i.IsContainer && i.ContainerItemID != nil {
		return false
	}
	return true
}

// InBag reports whether the item is assigned to the given bag.
func (i *TripItem) InBag(bagID string) bool {
	return i.BagID != nil && *i.BagID == bagID
}

// InContainer reports whether the item is inside the given container item.
func (i *TripItem) InContainer(containerID string) bool {
	return i.ContainerItemID != nil && *i.ContainerItemID == containerID
}

// Unassigned reports whether the item has neither a bag nor a container.
func (i *TripItem) Unassigned() bool {
	return i.BagID == nil && i.ContainerItemID == nil
}

// BagType tags what kind of carrying unit a bag is.
type BagType string

// Bag type tags.
const (
	BagTypeCarryOn BagType = "carry_on"
	BagTypeChecked BagType = "checked"
	// BagTypeWearing is the virtual "wearing" bag some trips use for
	// clothes worn in transit.
	BagTypeWearing BagType = "wearing"
	BagTypeOther   BagType = "other"
)

// Bag is a named carrying unit scoped to one trip.
// Deleting a bag does not delete its items; they become unassigned.
type Bag struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Type      BagType   `json:"type"`
	SortOrder int       `json:"sort_order"`
}

// Category is a cross-trip, user-scoped label. TripItem references it by
// name, not by ID.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sort_order"`
}

// Trip groups items and bags under one journey.
type Trip struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}

// NewItemInput is the validated input for creating a trip item.
type NewItemInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Quantity    int     `json:"quantity" validate:"gte=1,lte=999"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
	BagID       *string `json:"bag_id"`
	IsContainer bool    `json:"is_container"`
}

// Ptr returns a pointer to v. Convenience for the nullable string fields.
func Ptr(v string) *string { return &v }

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
