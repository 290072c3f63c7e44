// Package eventbus implements the swarm's multi-producer, multi-subscriber
// broadcast channel: publish never blocks a producer, and a subscriber
// that falls behind observes a lag count instead of stalling everyone
// else (spec.md §4.6).
package eventbus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pixelswarm/swarm/message"
)

// bufferSize is the bounded per-subscriber buffer (spec.md §4.6: 1024 slots).
const bufferSize = 1024

// Bus is a broadcast channel. The zero value is not usable; use New.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Subscription is an independent receiver. Late subscribers only see
// events published after Subscribe returns.
type Subscription struct {
	id      uint64
	bus     *Bus
	ch      chan message.Event
	dropped atomic.Int64
}

// Subscribe returns a fresh Subscription that will observe every event
// published from this point on.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{
		id:  b.nextID,
		bus: b,
		ch:  make(chan message.Event, bufferSize),
	}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe detaches the subscription; subsequent publishes will not be
// delivered to it.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.subs, s.id)
}

// Publish enqueues an event to every current subscriber. It never blocks:
// a subscriber whose buffer is full has its oldest buffered event evicted
// to make room, and its lag counter is incremented. Publish failures (no
// subscribers) are non-fatal — there is nothing to report.
func (b *Bus) Publish(ev message.Event) {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- ev:
		default:
			// Buffer full: evict the oldest event to make room, matching
			// a ring-buffer broadcast channel's lag semantics.
			select {
			case <-s.ch:
				s.dropped.Add(1)
			default:
			}
			select {
			case s.ch <- ev:
			default:
				// Raced with another publisher; count this one as dropped too.
				s.dropped.Add(1)
			}
		}
	}
}

// Recv blocks until an event is available or the context is canceled.
// Unsubscribe does not wake a Recv that is already waiting; events
// buffered before Unsubscribe can still be received. lag reports how many
// events were dropped from this subscription's buffer since the last
// successful Recv.
func (s *Subscription) Recv(ctx context.Context) (ev message.Event, lag int, err error) {
	select {
	case ev, ok := <-s.ch:
		if !ok {
			return message.Event{}, 0, context.Canceled
		}
		return ev, int(s.dropped.Swap(0)), nil
	case <-ctx.Done():
		return message.Event{}, 0, ctx.Err()
	}
}
