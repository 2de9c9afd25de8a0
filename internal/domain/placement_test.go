package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packzen/packzen-client/internal/errors"
)

func TestResolvePlacementOnBagAssign_ClearsContainer(t *testing.T) {
	item := &TripItem{ID: "i1", Name: "Socks", ContainerItemID: Ptr("box1")}

	ResolvePlacementOnBagAssign("bagA").Apply(item)

	require.NotNil(t, item.BagID)
	assert.Equal(t, "bagA", *item.BagID)
	assert.Nil(t, item.ContainerItemID)
	assert.True(t, item.PlacementValid())
}

func TestResolvePlacementOnContainerAssign_ClearsBag(t *testing.T) {
	item := &TripItem{ID: "i1", Name: "Socks", BagID: Ptr("bagA")}

	ResolvePlacementOnContainerAssign("box1").Apply(item)

	require.NotNil(t, item.ContainerItemID)
	assert.Equal(t, "box1", *item.ContainerItemID)
	assert.Nil(t, item.BagID)
	assert.True(t, item.PlacementValid())
}

func TestResolveUnassigned_ClearsBoth(t *testing.T) {
	item := &TripItem{ID: "i1", BagID: Ptr("bagA")}

	ResolveUnassigned().Apply(item)

	assert.Nil(t, item.BagID)
	assert.Nil(t, item.ContainerItemID)
}

func TestValidateContainerAssignment_RejectsContainerIntoContainer(t *testing.T) {
	cube := &TripItem{ID: "c1", Name: "Packing Cube", IsContainer: true}
	box := &TripItem{ID: "c2", Name: "Shoe Box", IsContainer: true}
	all := []*TripItem{cube, box}

	err := ValidateContainerAssignment(cube, Ptr("c2"), all)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidPlacement))
}

func TestValidateContainerAssignment_RejectsSelfContainment(t *testing.T) {
	cube := &TripItem{ID: "c1", Name: "Packing Cube", IsContainer: true}

	err := ValidateContainerAssignment(cube, Ptr("c1"), []*TripItem{cube})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidPlacement))
}

func TestValidateContainerAssignment_RejectsNonContainerTarget(t *testing.T) {
	socks := &TripItem{ID: "i1", Name: "Socks"}
	shirt := &TripItem{ID: "i2", Name: "Shirt"}

	err := ValidateContainerAssignment(socks, Ptr("i2"), []*TripItem{socks, shirt})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidPlacement))
}

func TestValidateContainerAssignment_RejectsOneHopCycle(t *testing.T) {
	// The target already sits inside the item being moved. Nesting depth is
	// capped at 1 so this is the only possible cycle.
	cube := &TripItem{ID: "c1", Name: "Packing Cube", IsContainer: true, ContainerItemID: Ptr("i1")}
	socks := &TripItem{ID: "i1", Name: "Socks"}

	err := ValidateContainerAssignment(socks, Ptr("c1"), []*TripItem{cube, socks})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidPlacement))
}

func TestValidateContainerAssignment_MissingTarget(t *testing.T) {
	socks := &TripItem{ID: "i1", Name: "Socks"}

	err := ValidateContainerAssignment(socks, Ptr("ghost"), []*TripItem{socks})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestValidateContainerAssignment_NilTargetAlwaysAllowed(t *testing.T) {
	cube := &TripItem{ID: "c1", Name: "Packing Cube", IsContainer: true}

	assert.NoError(t, ValidateContainerAssignment(cube, nil, []*TripItem{cube}))
}

func TestValidateContainerAssignment_AllowsPlainItemIntoContainer(t *testing.T) {
	cube := &TripItem{ID: "c1", Name: "Packing Cube", IsContainer: true}
	socks := &TripItem{ID: "i1", Name: "Socks", BagID: Ptr("bagA")}

	assert.NoError(t, ValidateContainerAssignment(socks, Ptr("c1"), []*TripItem{cube, socks}))
}

func TestResolveContainerStatus_PromotionClearsContainerRef(t *testing.T) {
	item := &TripItem{ID: "i1", Name: "Pouch", ContainerItemID: Ptr("box1"), BagID: nil}

	ResolveContainerStatus(true).Apply(item)

	assert.True(t, item.IsContainer)
	assert.Nil(t, item.ContainerItemID)
	assert.True(t, item.PlacementValid())
}

func TestResolveContainerStatus_PromotionKeepsBag(t *testing.T) {
	item := &TripItem{ID: "i1", Name: "Pouch", BagID: Ptr("bagA")}

	ResolveContainerStatus(true).Apply(item)

	require.NotNil(t, item.BagID)
	assert.Equal(t, "bagA", *item.BagID)
}

func TestResolveContainerStatus_DemotionLeavesPlacementAlone(t *testing.T) {
	item := &TripItem{ID: "c1", Name: "Cube", IsContainer: true, BagID: Ptr("bagA")}

	ResolveContainerStatus(false).Apply(item)

	assert.False(t, item.IsContainer)
	assert.Equal(t, "bagA", *item.BagID)
}

func TestValidateContainerDemotion_RejectsPopulatedContainer(t *testing.T) {
	cube := &TripItem{ID: "c1", Name: "Cube", IsContainer: true}
	socks := &TripItem{ID: "i1", Name: "Socks", ContainerItemID: Ptr("c1")}

	err := ValidateContainerDemotion(cube, []*TripItem{cube, socks})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidPlacement))
}

func TestValidateContainerDemotion_AllowsEmptyContainer(t *testing.T) {
	cube := &TripItem{ID: "c1", Name: "Cube", IsContainer: true}

	assert.NoError(t, ValidateContainerDemotion(cube, []*TripItem{cube}))
}

func TestPlacementValid_RejectsBothSet(t *testing.T) {
	item := &TripItem{ID: "i1", BagID: Ptr("bagA"), ContainerItemID: Ptr("c1")}

	assert.False(t, item.PlacementValid())
}

func TestClone_DoesNotAliasPointerFields(t *testing.T) {
	item := &TripItem{ID: "i1", Name: "Socks", BagID: Ptr("bagA"), Category: Ptr("Clothes")}

	c := item.Clone()
	*c.BagID = "bagB"
	*c.Category = "Other"

	assert.Equal(t, "bagA", *item.BagID)
	assert.Equal(t, "Clothes", *item.Category)
	assert.True(t, item.Equal(item.Clone()))
}
