// Package feed maintains the long-lived change feed connection for a trip
// and applies incoming entity-change events to the entity store.
//
// The feed is the secondary sync path: best effort, at-least-once delivery,
// applied in arrival order with no buffering window. The silent refresh in
// the engine package is the coarse fallback for anything the feed misses.
package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/gateway"
)

// Handler receives change events for one entity kind.
type Handler func(domain.ChangeEvent)

// Subscriber holds one trip's feed connection and handler registry.
type Subscriber struct {
	client   *gateway.Client
	tripID   string
	deviceID string
	logger   *slog.Logger

	minBackoff time.Duration
	maxBackoff time.Duration

	mu       sync.RWMutex
	handlers map[domain.EntityKind]Handler
}

// NewSubscriber creates a subscriber for the given trip.
// Backoff bounds control the reconnect delay: doubling from min, capped at
// max, reset after any successful connection.
func NewSubscriber(client *gateway.Client, tripID string, minBackoff, maxBackoff time.Duration, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		client:     client,
		tripID:     tripID,
		deviceID:   "dev-" + uuid.NewString(),
		logger:     logger.With(slog.String("trip_id", tripID)),
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
		handlers:   make(map[domain.EntityKind]Handler),
	}
}

// On registers the handler for an entity kind. One handler per kind; a
// second registration replaces the first.
func (s *Subscriber) On(kind domain.EntityKind, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = h
}

// DeviceID returns the identity sent on connect, for log correlation.
func (s *Subscriber) DeviceID() string {
	return s.deviceID
}

// Run connects and streams events until ctx is canceled, reconnecting with
// doubling backoff on any failure. Blocks; run it in a goroutine.
func (s *Subscriber) Run(ctx context.Context) {
	backoff := s.minBackoff
	for {
		connected, err := s.stream(ctx)
		if ctx.Err() != nil {
			s.logger.Info("feed subscriber stopping")
			return
		}
		if err != nil {
			s.logger.Warn("feed connection lost", slog.String("error", err.Error()))
		}

		if connected {
			backoff = s.minBackoff
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			s.logger.Info("feed subscriber stopping")
			return
		}

		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}

// stream opens one connection and dispatches events until it breaks.
// Returns whether the connection was established.
func (s *Subscriber) stream(ctx context.Context) (bool, error) {
	req, err := s.client.NewRequest(ctx, http.MethodGet, gateway.EventsPath(s.tripID))
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Device-ID", s.deviceID)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, &connectError{status: resp.StatusCode}
	}

	s.logger.Info("feed connected", slog.String("device_id", s.deviceID))

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var eventName string
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			// Blank line terminates a frame.
			if eventName != "" {
				s.dispatch(eventName, data.String())
			}
			eventName = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, ":"):
			// Comment line, used by some proxies as keepalive.
		}
	}
	return true, scanner.Err()
}

// dispatch parses one frame and routes it to the registered handler.
// Malformed frames are logged and dropped: the feed is best effort and the
// silent refresh will eventually correct any miss.
func (s *Subscriber) dispatch(eventName, payload string) {
	if eventName == "heartbeat" || eventName == "connected" {
		return
	}

	kind, action, err := domain.ParseEventName(eventName)
	if err != nil {
		s.logger.Debug("dropping unrecognized feed event",
			slog.String("event", eventName), slog.String("error", err.Error()))
		return
	}

	var ev domain.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		s.logger.Warn("dropping malformed feed event",
			slog.String("event", eventName), slog.String("error", err.Error()))
		return
	}
	ev.Kind = kind
	ev.Action = action

	s.mu.RLock()
	handler := s.handlers[kind]
	s.mu.RUnlock()

	if handler == nil {
		return
	}
	handler(ev)
}

type connectError struct {
	status int
}

func (e *connectError) Error() string {
	return "feed connect rejected with status " + http.StatusText(e.status)
}
