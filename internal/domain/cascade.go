package domain

// Deleting a container is the one delete in PackZen that needs a decision
// from the user. This file computes the plan; the engine executes it with
// optimistic updates.

// DeleteMode says whether a delete can proceed directly or needs the user to
// choose what happens to contained items.
type DeleteMode int

const (
	// DirectDelete applies to non-containers and empty containers.
	DirectDelete DeleteMode = iota
	// NeedsChoice applies to containers with at least one contained item.
	NeedsChoice
)

// CascadeChoice is the user's decision for a populated container.
type CascadeChoice int

const (
	// KeepItems moves contained items out (inheriting the container's bag)
	// before deleting the container alone.
	KeepItems CascadeChoice = iota
	// DeleteAll deletes the container and everything inside it.
	DeleteAll
)

// DeletePlan describes how a delete should proceed.
type DeletePlan struct {
	Item *TripItem
	Mode DeleteMode
	// Contained holds the items referencing Item as their container,
	// in store order. Empty unless Mode is NeedsChoice.
	Contained []*TripItem
}

// TotalCount returns how many items a DeleteAll would remove, for the
// "delete N items" confirmation copy.
func (p DeletePlan) TotalCount() int {
	return len(p.Contained) + 1
}

// ReassignPlacement returns the placement contained items receive under
// KeepItems: they inherit the container's own bag, or become unassigned if
// the container had none.
func (p DeletePlan) ReassignPlacement() Placement {
	if p.Item.BagID != nil {
		return ResolvePlacementOnBagAssign(*p.Item.BagID)
	}
	return ResolveUnassigned()
}

// PlanDelete computes the delete plan for an item.
func PlanDelete(item *TripItem, all []*TripItem) DeletePlan {
	plan := DeletePlan{Item: item, Mode: DirectDelete}
	if !item.IsContainer {
		return plan
	}
	for _, other := range all {
		if other.InContainer(item.ID) {
			plan.Contained = append(plan.Contained, other)
		}
	}
	if len(plan.Contained) > 0 {
		plan.Mode = NeedsChoice
	}
	return plan
}
