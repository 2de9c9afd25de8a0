package optimistic

import (
	"context"
	"log/slog"
	"sync"

	"github.com/packzen/packzen-client/internal/errors"
	"github.com/packzen/packzen-client/internal/id"
	"github.com/packzen/packzen-client/internal/store"
)

// Batch applies one change to a multi-item selection as a single rollback
// unit. The per-item network calls fire concurrently and are all awaited;
// if any one fails, the entire batch's snapshots are restored locally.
// Calls that already succeeded remotely are not compensated, so the store
// may briefly diverge from the backend until a feed event or refresh
// corrects it. That divergence is deliberate product behavior.
type Batch struct {
	// Name identifies the batch in logs ("batch_assign_bag").
	Name string
	// TargetIDs are all items the batch touches.
	TargetIDs []string
	// Apply performs the local change for the whole selection.
	Apply func(*store.Store)
	// Calls are the per-item remote requests: one entry per request, not
	// necessarily one per target.
	Calls []Remote
}

// BatchResult is the settled outcome of a batch.
type BatchResult struct {
	Status Status
	// Err is the first failure, carried for the user-visible notice.
	Err *errors.Error
	// RemoteSucceeded counts acknowledged calls. On rollback it tells the
	// caller how many orphaned remote writes exist.
	RemoteSucceeded int
}

// RunBatch executes a batch to settlement. All-or-nothing from the client's
// perspective: one local apply, N concurrent calls, full local rollback on
// any failure.
func (p *Protocol) RunBatch(ctx context.Context, b *Batch) *BatchResult {
	batchID := id.MustGenerate(id.PrefixMutation)
	log := p.logger.With(
		slog.String("batch_id", batchID),
		slog.String("batch", b.Name),
		slog.Int("targets", len(b.TargetIDs)),
	)

	snap := p.capture(b.TargetIDs)

	b.Apply(p.store)
	log.Debug("batch applied")

	// Fire all calls in parallel and await every one of them; a failure
	// must not cancel siblings that are already on the wire.
	failures := make([]*errors.Error, len(b.Calls))
	var wg sync.WaitGroup
	for i, call := range b.Calls {
		wg.Add(1)
		go func(i int, call Remote) {
			defer wg.Done()
			failures[i] = call(ctx)
		}(i, call)
	}
	wg.Wait()

	var firstErr *errors.Error
	succeeded := 0
	for _, err := range failures {
		if err == nil {
			succeeded++
		} else if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		p.restore(snap)
		log.Warn("batch rolled back",
			slog.String("error", firstErr.Error()),
			slog.Int("remote_succeeded", succeeded),
			slog.Int("remote_failed", len(b.Calls)-succeeded))
		return &BatchResult{Status: StatusRolledBack, Err: firstErr, RemoteSucceeded: succeeded}
	}

	log.Debug("batch committed")
	return &BatchResult{Status: StatusCommitted, RemoteSucceeded: succeeded}
}
