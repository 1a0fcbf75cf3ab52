package store

import "sync"

// Event is a process-wide data notification. There is no payload beyond the
// event type; listeners re-read the store.
type Event int

const (
	// EventLoaded fires after a successful load or refresh from storage.
	EventLoaded Event = iota
	// EventChanged fires after the in-memory document was replaced, either
	// by a completed mutation or by a reload from disk.
	EventChanged
)

type subscription struct {
	id int
	fn func(Event)
}

// Notifier delivers events to subscribers synchronously, in subscription
// order (FIFO by subscription time). Deterministic delivery order is part of
// the contract so listeners and tests can rely on it.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers fn and returns an unsubscribe function. fn runs on the
// publisher's goroutine and must not block.
func (n *Notifier) Subscribe(fn func(Event)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs = append(n.subs, subscription{id: id, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, sub := range n.subs {
			if sub.id == id {
				n.subs = append(n.subs[:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every subscriber in subscription order. The
// subscriber list is copied first so a callback may subscribe or
// unsubscribe without deadlocking.
func (n *Notifier) Publish(ev Event) {
	n.mu.Lock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}
