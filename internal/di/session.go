package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/packzen/packzen-client/internal/config"
	"github.com/packzen/packzen-client/internal/engine"
	"github.com/packzen/packzen-client/internal/feed"
	"github.com/packzen/packzen-client/internal/gateway"
	"github.com/packzen/packzen-client/internal/logger"
	"github.com/packzen/packzen-client/internal/ratelimit"
	"github.com/packzen/packzen-client/internal/store"
)

// Session is one trip view's worth of wired components. The store and engine
// are owned by the session and torn down with it; the gateway client and
// refresh gate come from the container and outlive it.
type Session struct {
	Engine     *engine.Engine
	Subscriber *feed.Subscriber

	cancel context.CancelFunc
}

// OpenTrip builds a session for one trip: a fresh store and engine, the feed
// subscriber bound to apply incoming changes, and an initial load. The feed
// starts streaming immediately; Close stops it.
func OpenTrip(ctx context.Context, injector do.Injector, tripID string) (*Session, error) {
	cfg := do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)
	client := do.MustInvoke[*gateway.Client](injector)
	gate := do.MustInvoke[*ratelimit.IntervalGate](injector)

	st := store.New(log.Logger)
	e := engine.New(tripID, client, st, gate, log.Logger)

	sub := feed.NewSubscriber(client, tripID,
		cfg.Sync.ReconnectMinBackoff, cfg.Sync.ReconnectMaxBackoff, log.Logger)
	applier := feed.NewApplier(st, tripID, log.Logger)
	applier.Bind(sub)

	if err := e.Load(ctx); err != nil {
		return nil, err
	}

	feedCtx, cancel := context.WithCancel(ctx)
	go sub.Run(feedCtx)

	return &Session{Engine: e, Subscriber: sub, cancel: cancel}, nil
}

// Close stops the feed connection and forgets the trip's refresh bucket.
func (s *Session) Close(injector do.Injector) {
	s.cancel()
	gate := do.MustInvoke[*ratelimit.IntervalGate](injector)
	gate.Forget(s.Engine.TripID())
}
