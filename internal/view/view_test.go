package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packzen/packzen-client/internal/domain"
)

func item(id, name string) *domain.TripItem {
	return &domain.TripItem{ID: id, Name: name, Quantity: 1}
}

func inBag(id, name, bagID string) *domain.TripItem {
	it := item(id, name)
	it.BagID = domain.Ptr(bagID)
	return it
}

func inContainer(id, name, containerID string) *domain.TripItem {
	it := item(id, name)
	it.ContainerItemID = domain.Ptr(containerID)
	return it
}

func withCategory(it *domain.TripItem, category string) *domain.TripItem {
	it.Category = domain.Ptr(category)
	return it
}

func TestGroupByBag(t *testing.T) {
	bags := []*domain.Bag{
		{ID: "bag_1", Name: "Backpack"},
		{ID: "bag_2", Name: "Suitcase"},
	}
	cube := item("itm_cube", "Packing cube")
	cube.IsContainer = true
	cube.BagID = domain.Ptr("bag_2")

	items := []*domain.TripItem{
		inBag("itm_1", "Socks", "bag_1"),
		cube,
		inContainer("itm_2", "Shirts", "itm_cube"),
		item("itm_3", "Sunglasses"),
	}

	groups := GroupByBag(items, bags)
	require.Len(t, groups, 4)

	assert.Equal(t, "Backpack", groups[0].Title)
	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, "itm_1", groups[0].Items[0].ID)

	assert.Equal(t, "Suitcase", groups[1].Title)
	require.Len(t, groups[1].Items, 1)
	assert.Equal(t, "itm_cube", groups[1].Items[0].ID)

	assert.Equal(t, "Packing cube", groups[2].Title)
	require.Len(t, groups[2].Items, 1)
	assert.Equal(t, "itm_2", groups[2].Items[0].ID)

	assert.Equal(t, UnassignedTitle, groups[3].Title)
	require.Len(t, groups[3].Items, 1)
	assert.Equal(t, "itm_3", groups[3].Items[0].ID)
}

func TestGroupByBagKeepsEmptyBags(t *testing.T) {
	bags := []*domain.Bag{{ID: "bag_1", Name: "Backpack"}}
	groups := GroupByBag(nil, bags)
	require.Len(t, groups, 1)
	assert.Equal(t, "bag_1", groups[0].Key)
	assert.Empty(t, groups[0].Items)
}

func TestGroupByBagSkipsEmptyContainerGroup(t *testing.T) {
	cube := item("itm_cube", "Packing cube")
	cube.IsContainer = true

	groups := GroupByBag([]*domain.TripItem{cube}, nil)
	// The empty container shows as an unassigned item, not an empty section.
	require.Len(t, groups, 1)
	assert.Equal(t, UnassignedTitle, groups[0].Title)
	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, "itm_cube", groups[0].Items[0].ID)
}

func TestGroupByCategorySortsCaseInsensitively(t *testing.T) {
	items := []*domain.TripItem{
		withCategory(item("itm_1", "Charger"), "electronics"),
		withCategory(item("itm_2", "Socks"), "Clothing"),
		withCategory(item("itm_3", "Adapter"), "electronics"),
		item("itm_4", "Misc thing"),
	}

	groups := GroupByCategory(items)
	require.Len(t, groups, 3)
	assert.Equal(t, "Clothing", groups[0].Title)
	assert.Equal(t, "electronics", groups[1].Title)
	assert.Len(t, groups[1].Items, 2)
	assert.Equal(t, UncategorizedTitle, groups[2].Title)
}

func TestSynthesizeBags(t *testing.T) {
	items := []*domain.TripItem{
		inBag("itm_1", "Socks", "bag_2"),
		inBag("itm_2", "Charger", "bag_1"),
		inBag("itm_3", "Hat", "bag_2"),
		item("itm_4", "Sunglasses"),
	}

	bags := SynthesizeBags(items)
	require.Len(t, bags, 2)
	assert.Equal(t, "bag_2", bags[0].ID)
	assert.Equal(t, "bag_1", bags[1].ID)
}

func TestSearchMatchesNameNotesCategory(t *testing.T) {
	socks := withCategory(item("itm_1", "Wool socks"), "Clothing")
	charger := item("itm_2", "Charger")
	charger.Notes = domain.Ptr("the USB-C one")
	hat := item("itm_3", "Hat")

	items := []*domain.TripItem{socks, charger, hat}

	assert.Len(t, Search(items, "WOOL"), 1)
	assert.Len(t, Search(items, "usb-c"), 1)
	assert.Len(t, Search(items, "clothing"), 1)
	assert.Empty(t, Search(items, "tent"))
	assert.Len(t, Search(items, ""), 3)
	assert.Len(t, Search(items, "  "), 3)
}

func TestSummarizeExcludesSkipped(t *testing.T) {
	packed := item("itm_1", "Socks")
	packed.IsPacked = true
	skipped := item("itm_2", "Umbrella")
	skipped.IsSkipped = true
	pending := item("itm_3", "Hat")

	p := Summarize([]*domain.TripItem{packed, skipped, pending})
	assert.Equal(t, 1, p.Packed)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 50, p.Percent())
	assert.False(t, p.Done())
}

func TestSummarizeEmpty(t *testing.T) {
	p := Summarize(nil)
	assert.Zero(t, p.Percent())
	assert.False(t, p.Done())
}

func TestSummarizeDone(t *testing.T) {
	packed := item("itm_1", "Socks")
	packed.IsPacked = true
	skipped := item("itm_2", "Umbrella")
	skipped.IsSkipped = true

	p := Summarize([]*domain.TripItem{packed, skipped})
	assert.True(t, p.Done())
	assert.Equal(t, 100, p.Percent())
}
