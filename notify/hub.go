// Package notify fans out owner-scoped change events so independent views
// (caches, UI refresh endpoints) can react to mutations without polling.
// This is a local in-process signal, not a network protocol.
package notify

import (
	"sync"
	"time"
)

// Change describes a committed mutation to an owner's ledger.
type Change struct {
	OwnerID string    `json:"owner_id"`
	Kind    string    `json:"kind"` // "account" or "transaction"
	At      time.Time `json:"at"`
}

type subscriber struct {
	ownerID string // empty means all owners
	ch      chan Change
}

// Hub delivers Changes to registered subscribers. Publish never blocks: a
// subscriber whose buffer is full misses that event and is expected to
// re-fetch on the next one.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscribe registers interest in one owner's changes. The returned cancel
// function must be called to release the subscription.
func (h *Hub) Subscribe(ownerID string) (<-chan Change, func()) {
	return h.subscribe(ownerID)
}

// Watch registers interest in every owner's changes.
func (h *Hub) Watch() (<-chan Change, func()) {
	return h.subscribe("")
}

func (h *Hub) subscribe(ownerID string) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &subscriber{ownerID: ownerID, ch: make(chan Change, 16)}
	h.subs[id] = sub

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return sub.ch, cancel
}

// Publish delivers a change to every matching subscriber without blocking.
func (h *Hub) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if sub.ownerID != "" && sub.ownerID != c.OwnerID {
			continue
		}
		select {
		case sub.ch <- c:
		default:
		}
	}
}
