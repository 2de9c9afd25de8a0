// Package view derives presentation groupings from a store snapshot.
// Everything here is a pure function over copies: nothing mutates the store,
// and callers may hold the results across later mutations.
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/packzen/packzen-client/internal/domain"
)

// Group is one section of a grouped item list.
type Group struct {
	// Key identifies the group: a bag id, a container item id, a category
	// name, or "" for the unassigned/uncategorized group.
	Key   string
	Title string
	Items []*domain.TripItem
}

// Unassigned section title. Matches the product copy for items neither in a
// bag nor in a container.
const (
	UnassignedTitle    = "Wearing / Unassigned"
	UncategorizedTitle = "Uncategorized"
)

// GroupByBag sections items by carrying unit: one group per bag in the given
// bag order, one per container holding items, and a trailing unassigned
// group. Items keep store order inside each group. Empty bags still appear
// (so the user can drop items into them); empty container groups do not.
func GroupByBag(items []*domain.TripItem, bags []*domain.Bag) []Group {
	groups := make([]Group, 0, len(bags)+2)

	for _, bag := range bags {
		g := Group{Key: bag.ID, Title: bag.Name}
		for _, item := range items {
			if item.InBag(bag.ID) {
				g.Items = append(g.Items, item)
			}
		}
		groups = append(groups, g)
	}

	for _, c := range items {
		if !c.IsContainer {
			continue
		}
		g := Group{Key: c.ID, Title: c.Name}
		for _, item := range items {
			if item.InContainer(c.ID) {
				g.Items = append(g.Items, item)
			}
		}
		if len(g.Items) > 0 {
			groups = append(groups, g)
		}
	}

	unassigned := Group{Key: "", Title: UnassignedTitle}
	for _, item := range items {
		if item.Unassigned() && !hasContents(item, items) {
			unassigned.Items = append(unassigned.Items, item)
		}
	}
	if len(unassigned.Items) > 0 {
		groups = append(groups, unassigned)
	}
	return groups
}

// SynthesizeBags builds placeholder bag records from the distinct bag ids
// referenced by items, in first-reference order. For callers that have items
// but no bag metadata; the bag id doubles as the display name.
func SynthesizeBags(items []*domain.TripItem) []*domain.Bag {
	seen := make(map[string]bool)
	var bags []*domain.Bag
	for _, item := range items {
		if item.BagID == nil || seen[*item.BagID] {
			continue
		}
		seen[*item.BagID] = true
		bags = append(bags, &domain.Bag{ID: *item.BagID, Name: *item.BagID})
	}
	return bags
}

// hasContents reports whether any item sits inside the given container.
// A populated unassigned container already appears as its group's header,
// so the unassigned section skips it.
func hasContents(c *domain.TripItem, items []*domain.TripItem) bool {
	if !c.IsContainer {
		return false
	}
	for _, item := range items {
		if item.InContainer(c.ID) {
			return true
		}
	}
	return false
}

// GroupByCategory sections items by their category label, categories sorted
// with locale-aware case-insensitive collation and the uncategorized group
// last. Items keep store order inside each group.
func GroupByCategory(items []*domain.TripItem) []Group {
	byName := make(map[string][]*domain.TripItem)
	var names []string
	var uncategorized []*domain.TripItem

	for _, item := range items {
		if item.Category == nil || *item.Category == "" {
			uncategorized = append(uncategorized, item)
			continue
		}
		name := *item.Category
		if _, seen := byName[name]; !seen {
			names = append(names, name)
		}
		byName[name] = append(byName[name], item)
	}

	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(names, func(i, j int) bool {
		return c.CompareString(names[i], names[j]) < 0
	})

	groups := make([]Group, 0, len(names)+1)
	for _, name := range names {
		groups = append(groups, Group{Key: name, Title: name, Items: byName[name]})
	}
	if len(uncategorized) > 0 {
		groups = append(groups, Group{Key: "", Title: UncategorizedTitle, Items: uncategorized})
	}
	return groups
}

// Search returns the items whose name, notes or category contains the query,
// case-folded. An empty query returns all items.
func Search(items []*domain.TripItem, query string) []*domain.TripItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	folded := strings.ToLower(query)

	var out []*domain.TripItem
	for _, item := range items {
		if matches(item, folded) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item *domain.TripItem, folded string) bool {
	if strings.Contains(strings.ToLower(item.Name), folded) {
		return true
	}
	if item.Notes != nil && strings.Contains(strings.ToLower(*item.Notes), folded) {
		return true
	}
	if item.Category != nil && strings.Contains(strings.ToLower(*item.Category), folded) {
		return true
	}
	return false
}

// Progress is the packing completion summary shown in the trip header.
type Progress struct {
	Packed int
	Total  int
}

// Percent returns completion as 0-100. An empty list reads as 0.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Packed * 100 / p.Total
}

// Done reports whether every counted item is packed.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Packed == p.Total
}

// Summarize computes packing progress. Skipped items count toward neither
// side: skipping is the "not bringing this after all" affordance and must
// move the trip closer to done, not further.
func Summarize(items []*domain.TripItem) Progress {
	var p Progress
	for _, item := range items {
		if item.IsSkipped {
			continue
		}
		p.Total++
		if item.IsPacked {
			p.Packed++
		}
	}
	return p
}
