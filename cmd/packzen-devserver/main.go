// Package main provides an in-memory PackZen backend for local development:
// the items REST namespace plus the per-trip SSE change feed, enough to run
// the packzen CLI and the engine tests against something live.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/packzen/packzen-client/internal/domain"
	"github.com/packzen/packzen-client/internal/id"
	"github.com/packzen/packzen-client/internal/logger"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(os.Getenv("PACKZEN_LOG_LEVEL")),
		Environment: "development",
	})

	srv := newServer(log)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Device-ID"},
		AllowCredentials: false,
	}))

	r.Route("/api/v1/trips/{tripID}", func(r chi.Router) {
		r.Get("/items", srv.listItems)
		r.Post("/items", srv.createItem)
		r.Put("/items/{itemID}", srv.updateItem)
		r.Delete("/items/{itemID}", srv.deleteItem)
		r.Get("/bags", srv.listBags)
		r.Post("/bags", srv.createBag)
		r.Get("/events", srv.events)
	})

	log.Info("PackZen devserver listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

// server holds the in-memory trip state and the feed hub.
type server struct {
	log *logger.Logger

	mu    sync.Mutex
	items map[string][]*domain.TripItem // trip id -> items in order
	bags  map[string][]*domain.Bag
	hub   map[string]map[chan []byte]struct{}
}

func newServer(log *logger.Logger) *server {
	return &server{
		log:   log,
		items: make(map[string][]*domain.TripItem),
		bags:  make(map[string][]*domain.Bag),
		hub:   make(map[string]map[chan []byte]struct{}),
	}
}

func (s *server) listItems(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	s.mu.Lock()
	items := s.items[tripID]
	out := make([]*domain.TripItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *server) createItem(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	var input domain.NewItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	now := time.Now().UTC()
	item := &domain.TripItem{
		CreatedAt:   now,
		UpdatedAt:   now,
		ID:          id.MustGenerate(id.PrefixItem),
		TripID:      tripID,
		Name:        input.Name,
		Quantity:    input.Quantity,
		Category:    input.Category,
		Notes:       input.Notes,
		BagID:       input.BagID,
		IsContainer: input.IsContainer,
	}

	s.mu.Lock()
	s.items[tripID] = append(s.items[tripID], item)
	s.mu.Unlock()

	s.broadcast(tripID, domain.ActionCreated, item)
	writeJSON(w, http.StatusCreated, item)
}

func (s *server) updateItem(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	itemID := chi.URLParam(r, "itemID")

	var body struct {
		Name            string  `json:"name"`
		Quantity        int     `json:"quantity"`
		Category        *string `json:"category"`
		Notes           *string `json:"notes"`
		BagID           *string `json:"bag_id"`
		ContainerItemID *string `json:"container_item_id"`
		IsPacked        bool    `json:"is_packed"`
		IsSkipped       bool    `json:"is_skipped"`
		IsContainer     bool    `json:"is_container"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.BagID != nil && body.ContainerItemID != nil {
		writeError(w, http.StatusUnprocessableEntity, "an item cannot be in a bag and a container at once")
		return
	}

	s.mu.Lock()
	item := s.find(tripID, itemID)
	if item == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	item.Name = body.Name
	item.Quantity = body.Quantity
	item.Category = body.Category
	item.Notes = body.Notes
	item.BagID = body.BagID
	item.ContainerItemID = body.ContainerItemID
	item.IsPacked = body.IsPacked
	item.IsSkipped = body.IsSkipped
	item.IsContainer = body.IsContainer
	item.UpdatedAt = time.Now().UTC()
	updated := item.Clone()
	s.mu.Unlock()

	s.broadcast(tripID, domain.ActionUpdated, updated)
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) deleteItem(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	itemID := chi.URLParam(r, "itemID")

	s.mu.Lock()
	var removed *domain.TripItem
	kept := s.items[tripID][:0]
	for _, item := range s.items[tripID] {
		if item.ID == itemID {
			removed = item
			continue
		}
		kept = append(kept, item)
	}
	s.items[tripID] = kept
	s.mu.Unlock()

	if removed == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	s.broadcast(tripID, domain.ActionDeleted, removed)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) listBags(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	s.mu.Lock()
	bags := s.bags[tripID]
	out := make([]*domain.Bag, len(bags))
	copy(out, bags)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *server) createBag(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	var input struct {
		Name  string         `json:"name"`
		Color string         `json:"color"`
		Type  domain.BagType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	if input.Type == "" {
		input.Type = domain.BagTypeOther
	}

	now := time.Now().UTC()
	bag := &domain.Bag{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        id.MustGenerate(id.PrefixBag),
		TripID:    tripID,
		Name:      input.Name,
		Color:     input.Color,
		Type:      input.Type,
	}

	s.mu.Lock()
	bag.SortOrder = len(s.bags[tripID])
	s.bags[tripID] = append(s.bags[tripID], bag)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, bag)
}

// events is the per-trip SSE endpoint.
func (s *server) events(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ch := make(chan []byte, 16)
	s.mu.Lock()
	if s.hub[tripID] == nil {
		s.hub[tripID] = make(map[chan []byte]struct{})
	}
	s.hub[tripID][ch] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.hub[tripID], ch)
		s.mu.Unlock()
	}()

	s.log.Info("feed client connected",
		"trip_id", tripID, "device_id", r.Header.Get("X-Device-ID"))

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case frame := <-ch:
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, "event: heartbeat\ndata: {}\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// broadcast sends one change event to every feed client on the trip.
// Slow clients drop frames rather than block a write path.
func (s *server) broadcast(tripID string, action domain.ChangeAction, item *domain.TripItem) {
	ev := domain.ChangeEvent{
		Timestamp: time.Now().UTC(),
		Kind:      domain.KindTripItem,
		Action:    action,
		ParentID:  tripID,
		EntityID:  item.ID,
		Item:      item,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Error("encode change event", "error", err)
		return
	}
	frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.EventName(), payload))

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.hub[tripID] {
		select {
		case ch <- frame:
		default:
			s.log.Warn("dropping frame for slow feed client", "trip_id", tripID)
		}
	}
}

// find must be called with the lock held.
func (s *server) find(tripID, itemID string) *domain.TripItem {
	for _, item := range s.items[tripID] {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
