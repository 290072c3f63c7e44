// Package swarm implements the concurrent agent registry: per-agent
// exclusive routing and concurrent broadcast fan-out, grounded on the
// original Rust Swarm (an RwLock<HashMap<AgentId, Mutex<dyn Agent>>>>)
// generalized to Go's context/mutex/errgroup idiom.
package swarm

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pixelswarm/swarm/message"
	"github.com/pixelswarm/swarm/swarmerr"
)

// Handle is the view of an agent the Swarm needs: identity plus the
// ability to run one turn. *agent.Agent satisfies this.
type Handle interface {
	ID() message.AgentID
	Process(ctx context.Context, userText string) (message.Message, error)
}

// entry pairs a Handle with the exclusive lock that serializes turns for
// that one agent (spec.md §4.4's "per-agent exclusivity").
type entry struct {
	handle Handle
	turnMu sync.Mutex
}

// Swarm is a concurrent AgentId -> exclusive agent handle map.
type Swarm struct {
	mu     sync.RWMutex
	agents map[message.AgentID]*entry
}

// New constructs an empty Swarm.
func New() *Swarm {
	return &Swarm{agents: make(map[message.AgentID]*entry)}
}

// Add inserts an agent under the id it reports itself. A duplicate id
// overwrites the previous entry (last-writer-wins) — callers are
// expected to use fresh ids.
func (s *Swarm) Add(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[h.ID()] = &entry{handle: h}
}

// Remove deletes an agent by id, reporting whether it was present.
func (s *Swarm) Remove(id message.AgentID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[id]; !ok {
		return false
	}
	delete(s.agents, id)
	return true
}

// Get looks up an agent's handle by id.
func (s *Swarm) Get(id message.AgentID) (Handle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.agents[id]
	if !ok {
		return nil, &swarmerr.AgentNotFoundError{ID: id.String()}
	}
	return e.handle, nil
}

// Count returns the number of registered agents.
func (s *Swarm) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.agents)
}

// IDs returns a snapshot of every registered agent id.
func (s *Swarm) IDs() []message.AgentID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]message.AgentID, 0, len(s.agents))
	for id := range s.agents {
		out = append(out, id)
	}
	return out
}

// Route acquires the target agent's exclusive lock, runs its turn loop
// with msg's text, and returns the reply. A turn already in flight for
// that agent makes this call wait — by design, a single agent never
// processes two turns concurrently.
func (s *Swarm) Route(ctx context.Context, id message.AgentID, msg message.Message) (message.Message, error) {
	s.mu.RLock()
	e, ok := s.agents[id]
	s.mu.RUnlock()
	if !ok {
		return message.Message{}, &swarmerr.AgentNotFoundError{ID: id.String()}
	}

	e.turnMu.Lock()
	defer e.turnMu.Unlock()
	return e.handle.Process(ctx, msg.Text())
}

// Reply pairs a broadcast participant's id with its turn's outcome.
type Reply struct {
	AgentID message.AgentID
	Message message.Message
}

// Broadcast snapshots the current id set and dispatches msg to every
// agent concurrently; individual failures are dropped (best-effort).
// The order of replies is unspecified. Dispatch across agents runs in
// parallel, but each individual agent still serializes on its own
// per-agent lock via Route.
func (s *Swarm) Broadcast(ctx context.Context, msg message.Message) []Reply {
	ids := s.IDs()

	var mu sync.Mutex
	replies := make([]Reply, 0, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			reply, err := s.Route(gctx, id, msg)
			if err != nil {
				return nil // best-effort: drop individual failures
			}
			mu.Lock()
			replies = append(replies, Reply{AgentID: id, Message: reply})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // no dispatch error is ever returned above; nothing to check

	return replies
}
