package domain

import (
	"github.com/packzen/packzen-client/internal/errors"
)

// Placement is the field set a placement change writes to an item.
// Exactly the two placement fields, so applying one always rewrites both and
// the mutual-exclusion invariant holds by construction.
type Placement struct {
	BagID           *string
	ContainerItemID *string
}

// Apply writes the placement onto an item.
func (p Placement) Apply(item *TripItem) {
	item.BagID = clonePtr(p.BagID)
	item.ContainerItemID = clonePtr(p.ContainerItemID)
}

// ResolvePlacementOnBagAssign returns the placement for assigning to a bag.
// Assigning to a bag always clears container placement.
func ResolvePlacementOnBagAssign(bagID string) Placement {
	return Placement{BagID: Ptr(bagID)}
}

// ResolvePlacementOnContainerAssign returns the placement for moving into a
// container. The inverse of bag assignment: the bag reference is cleared.
func ResolvePlacementOnContainerAssign(containerID string) Placement {
	return Placement{ContainerItemID: Ptr(containerID)}
}

// ResolveUnassigned returns the empty placement ("unassigned / worn").
func ResolveUnassigned() Placement {
	return Placement{}
}

// ValidateContainerAssignment checks whether item may be placed inside the
// container identified by targetContainerID. A nil target means "remove from
// container" and is always allowed.
//
// Nesting depth is capped at 1, so the cycle check only needs one hop: the
// target must not itself be contained within item.
func ValidateContainerAssignment(item *TripItem, targetContainerID *string, all []*TripItem) error {
	if targetContainerID == nil {
		return nil
	}
	if item.IsContainer {
		return errors.InvalidPlacementf("%q is a container and containers cannot be nested", item.Name)
	}
	if *targetContainerID == item.ID {
		return errors.InvalidPlacement("an item cannot contain itself")
	}

	var target *TripItem
	for _, candidate := range all {
		if candidate.ID == *targetContainerID {
			target = candidate
			break
		}
	}
	if target == nil {
		return errors.NotFoundf("container %s not found", *targetContainerID)
	}
	if !target.IsContainer {
		return errors.InvalidPlacementf("%q is not a container", target.Name)
	}
	if target.InContainer(item.ID) {
		return errors.InvalidPlacementf("%q is already inside %q", target.Name, item.Name)
	}
	return nil
}

// ResolveContainerPromotion returns the field changes for toggling an item's
// container status. Promoting forces the item out of any container it was in
// (a container cannot itself be contained); its bag assignment is untouched.
type ContainerPromotion struct {
	IsContainer          bool
	ClearContainerItemID bool
}

// ResolveContainerStatus computes the promotion/demotion field set.
func ResolveContainerStatus(becomingContainer bool) ContainerPromotion {
	return ContainerPromotion{
		IsContainer:          becomingContainer,
		ClearContainerItemID: becomingContainer,
	}
}

// Apply writes the promotion onto an item.
func (p ContainerPromotion) Apply(item *TripItem) {
	item.IsContainer = p.IsContainer
	if p.ClearContainerItemID {
		item.ContainerItemID = nil
	}
}

// ValidateContainerDemotion checks whether a container may lose its container
// status. Demoting a populated container would strand its contents' references,
// so contents must be moved out first.
func ValidateContainerDemotion(item *TripItem, all []*TripItem) error {
	if !item.IsContainer {
		return nil
	}
	for _, other := range all {
		if other.InContainer(item.ID) {
			return errors.InvalidPlacementf("%q still has items inside; move them out first", item.Name)
		}
	}
	return nil
}
