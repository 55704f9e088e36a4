// Package docstore - watch subscriptions and their fan-out registry.
// File: docstore/subscription.go
package docstore

import (
	"sync"

	"athproof/logger"
)

// snapshotBuffer bounds the per-subscription queue; a slow consumer is
// coalesced down to the latest snapshot rather than blocking writers.
const snapshotBuffer = 8

// Subscription is one standing watch. Snapshots are pushed in the order the
// store commits writes; Close is idempotent and releases the watch.
type Subscription struct {
	ch     chan Snapshot
	mu     sync.Mutex
	closed bool
	detach func()
}

func newSubscription(detach func()) *Subscription {
	return &Subscription{
		ch:     make(chan Snapshot, snapshotBuffer),
		detach: detach,
	}
}

// Snapshots is the push channel. It is closed when the subscription is.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.ch
}

// Close detaches the watch and closes the snapshot channel. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.detach != nil {
		s.detach()
	}

	s.mu.Lock()
	close(s.ch)
	s.mu.Unlock()
}

// deliver queues a snapshot. If the consumer has fallen behind, the oldest
// queued snapshot is dropped; last push wins, which matches the wholesale
// replace semantics downstream.
func (s *Subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- snap:
	default:
		select {
		case <-s.ch:
			logger.Warn.Println("[deliver] Subscription backlog full; coalescing to latest snapshot")
		default:
		}
		select {
		case s.ch <- snap:
		default:
		}
	}
}

// ------------------- watcher registry -------------------

// registry tracks open watches per collection and per document key.
type registry struct {
	mu          sync.Mutex
	collections map[string][]*Subscription
	documents   map[string][]*Subscription
}

func newRegistry() *registry {
	return &registry{
		collections: make(map[string][]*Subscription),
		documents:   make(map[string][]*Subscription),
	}
}

func docKey(collection, id string) string {
	return collection + "/" + id
}

func (r *registry) attachCollection(collection string) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sub *Subscription
	sub = newSubscription(func() { r.detachCollection(collection, sub) })
	r.collections[collection] = append(r.collections[collection], sub)
	return sub
}

func (r *registry) attachDocument(collection, id string) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := docKey(collection, id)
	var sub *Subscription
	sub = newSubscription(func() { r.detachDocument(key, sub) })
	r.documents[key] = append(r.documents[key], sub)
	return sub
}

func (r *registry) detachCollection(collection string, sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[collection] = remove(r.collections[collection], sub)
}

func (r *registry) detachDocument(key string, sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[key] = remove(r.documents[key], sub)
}

func remove(subs []*Subscription, target *Subscription) []*Subscription {
	out := subs[:0]
	for _, s := range subs {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

func (r *registry) publishCollection(collection string, snap Snapshot) {
	r.mu.Lock()
	subs := append([]*Subscription(nil), r.collections[collection]...)
	r.mu.Unlock()
	for _, sub := range subs {
		sub.deliver(snap)
	}
}

func (r *registry) publishDocument(collection, id string, snap Snapshot) {
	r.mu.Lock()
	subs := append([]*Subscription(nil), r.documents[docKey(collection, id)]...)
	r.mu.Unlock()
	for _, sub := range subs {
		sub.deliver(snap)
	}
}
