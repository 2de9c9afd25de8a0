// Package optimistic implements the mutation protocol every user-initiated
// change runs through: capture a rollback snapshot of exactly the items the
// mutation touches, apply the change to the store before any network call,
// then commit on remote acknowledgement or restore the snapshot on failure.
//
// Multiple mutations may be in flight at once. Each snapshot is scoped to
// its own items, so concurrent mutations on disjoint items never clobber
// each other's rollback data. Overlapping mutations on the same item settle
// by whichever network response lands last; no ordering is imposed.
package optimistic

import (
	"context"
	"log/slog"
	"sync"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/errors"
	"github.com/packzen/packzen-client/internal/id"
	"github.com/packzen/packzen-client/internal/store"
)

// Status is the state of one mutation instance.
type Status int

// Mutation states. A mutation moves Idle → Applied → Committed or RolledBack.
const (
	StatusIdle Status = iota
	StatusApplied
	StatusCommitted
	StatusRolledBack
)

// String implements fmt.Stringer for log output.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusApplied:
		return "applied"
	case StatusCommitted:
		return "committed"
	case StatusRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Remote issues the mutation's network call. A nil return commits the
// mutation; a non-nil error rolls it back.
type Remote func(ctx context.Context) *errors.Error

// Mutation describes one optimistic change.
type Mutation struct {
	// Name identifies the mutation in logs ("toggle_packed", "move_to_bag").
	Name string
	// TargetIDs are the items whose pre-mutation state is snapshotted.
	// Items the Apply func inserts must be listed too so rollback can
	// remove them again.
	TargetIDs []string
	// Apply performs the local change through store primitives.
	Apply func(*store.Store)
	// Call is the remote request for this change.
	Call Remote
	// BuildUndo, optional, builds the forward mutation that restores the
	// captured pre-mutation values. When set, a committed mutation offers
	// an undo affordance.
	BuildUndo func(prior []*domain.TripItem) *Mutation
}

// Result is the settled outcome of a mutation.
type Result struct {
	Status Status
	// Err is set when Status is StatusRolledBack. It carries the remote
	// error text for the user-visible failure notice.
	Err *errors.Error

	protocol *Protocol
	undo     *Mutation

	mu       sync.Mutex
	undoDone *Result
}

// Committed reports whether the mutation landed remotely.
func (r *Result) Committed() bool { return r.Status == StatusCommitted }

// CanUndo reports whether an undo affordance is available.
func (r *Result) CanUndo() bool { return r.Status == StatusCommitted && r.undo != nil }

// Undo re-enters the protocol with the captured pre-mutation values as the
// new target state: a normal forward mutation, not a special rollback path.
// Invoking it again after completion re-applies identical values, which is
// a no-op in effect.
func (r *Result) Undo(ctx context.Context) *Result {
	if !r.CanUndo() {
		return &Result{Status: StatusIdle, Err: errors.Internal("nothing to undo")}
	}

	r.mu.Lock()
	prior := r.undoDone
	r.mu.Unlock()
	if prior != nil && prior.Committed() {
		// The values below would be identical; skip the duplicate request.
		return prior
	}

	res := r.protocol.Run(ctx, r.undo)

	r.mu.Lock()
	r.undoDone = res
	r.mu.Unlock()
	return res
}

// Protocol runs mutations against one store.
type Protocol struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a protocol bound to a store.
func New(st *store.Store, logger *slog.Logger) *Protocol {
	return &Protocol{store: st, logger: logger}
}

// Run executes one mutation to settlement: snapshot, local apply, remote
// call, then commit or rollback. The local apply always precedes the
// network call; the caller sees the new state with zero latency if it reads
// the store while the call is in flight.
func (p *Protocol) Run(ctx context.Context, m *Mutation) *Result {
	mutID := id.MustGenerate(id.PrefixMutation)
	log := p.logger.With(
		slog.String("mutation_id", mutID),
		slog.String("mutation", m.Name),
	)

	snap := p.capture(m.TargetIDs)

	m.Apply(p.store)
	log.Debug("mutation applied", slog.Int("targets", len(m.TargetIDs)))

	if err := m.Call(ctx); err != nil {
		p.restore(snap)
		log.Warn("mutation rolled back", slog.String("error", err.Error()))
		return &Result{Status: StatusRolledBack, Err: err}
	}

	log.Debug("mutation committed")
	res := &Result{Status: StatusCommitted, protocol: p}
	if m.BuildUndo != nil {
		res.undo = m.BuildUndo(snap.priorItems())
	}
	return res
}

// snapshot holds the pre-mutation state of touched items.
// A nil entry means the item did not exist before the mutation.
type snapshot struct {
	order []string
	prior map[string]*domain.TripItem
}

func (s snapshot) priorItems() []*domain.TripItem {
	items := make([]*domain.TripItem, 0, len(s.order))
	for _, itemID := range s.order {
		if item := s.prior[itemID]; item != nil {
			items = append(items, item.Clone())
		}
	}
	return items
}

func (p *Protocol) capture(ids []string) snapshot {
	snap := snapshot{prior: make(map[string]*domain.TripItem, len(ids))}
	for _, itemID := range ids {
		snap.order = append(snap.order, itemID)
		if item, ok := p.store.Get(itemID); ok {
			snap.prior[itemID] = item
		} else {
			snap.prior[itemID] = nil
		}
	}
	return snap
}

// restore re-applies the captured pre-mutation values through the same
// store primitives the forward change used. Items the mutation inserted
// are removed; items it removed are re-inserted; everything else gets its
// exact prior field values back.
func (p *Protocol) restore(snap snapshot) {
	var toRemove []string
	for _, itemID := range snap.order {
		prior := snap.prior[itemID]
		if prior == nil {
			toRemove = append(toRemove, itemID)
			continue
		}
		restored := prior.Clone()
		if _, ok := p.store.Get(itemID); ok {
			p.store.PatchMany([]string{itemID}, func(item *domain.TripItem) {
				*item = *restored.Clone()
			})
		} else {
			p.store.Insert(restored)
		}
	}
	if len(toRemove) > 0 {
		p.store.RemoveWhere(toRemove)
	}
}
