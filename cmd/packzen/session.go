package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/packzen/packzen-client/internal/di"
	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/view"
)

// withSession opens a trip session, runs fn, and tears the session down.
// Shared bootstrap for every subcommand.
func withSession(fn func(ctx context.Context, s *di.Session) error) error {
	injector := di.NewContainer()
	defer func() { _ = injector.Shutdown() }()

	ctx := context.Background()
	session, err := di.OpenTrip(ctx, injector, tripID)
	if err != nil {
		return fmt.Errorf("open trip %s: %w", tripID, err)
	}
	defer session.Close(injector)

	return fn(ctx, session)
}

// printList renders the current store contents grouped by placement.
// Bag metadata is fetched best effort; without it, bag-assigned items fall
// back to synthesized groups keyed by bag id.
func printList(s *di.Session) {
	snap := s.Engine.Store().Snapshot()
	bags, err := s.Engine.ListBags(context.Background())
	if err != nil {
		bags = view.SynthesizeBags(snap.Items)
	}

	progress := view.Summarize(snap.Items)
	fmt.Printf("Trip %s: %d/%d packed (%d%%)\n\n",
		tripID, progress.Packed, progress.Total, progress.Percent())

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, group := range view.GroupByBag(snap.Items, bags) {
		fmt.Fprintf(w, "%s\n", group.Title)
		for _, item := range group.Items {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", marker(item), item.ID, describe(item))
		}
	}
	_ = w.Flush()

	for _, notice := range s.Engine.Notices().Recent() {
		fmt.Printf("! %s\n", notice.Message)
	}
}

func marker(item *domain.TripItem) string {
	switch {
	case item.IsSkipped:
		return "[-]"
	case item.IsPacked:
		return "[x]"
	default:
		return "[ ]"
	}
}

func describe(item *domain.TripItem) string {
	desc := item.Name
	if item.Quantity > 1 {
		desc = fmt.Sprintf("%s x%d", desc, item.Quantity)
	}
	if item.IsContainer {
		desc += " (container)"
	}
	if item.Category != nil {
		desc += " #" + *item.Category
	}
	return desc
}
