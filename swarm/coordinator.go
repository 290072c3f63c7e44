package swarm

import (
	"context"

	"github.com/pixelswarm/swarm/eventbus"
	"github.com/pixelswarm/swarm/message"
)

// Coordinator is a thin façade over a Swarm and an Event Bus: it
// forwards routing/broadcast calls and publishes the events spec.md
// §4.5 names, but neither owns agents nor mutates their state. This
// supersedes the simpler original Rust Coordinator (which only ever
// broadcast a generic "agent_message" event) — spec.md's richer
// message_sent/broadcast_complete events are authoritative here.
type Coordinator struct {
	Swarm *Swarm
	Bus   *eventbus.Bus
}

// NewCoordinator pairs a Swarm with the Event Bus it publishes to.
func NewCoordinator(s *Swarm, bus *eventbus.Bus) *Coordinator {
	return &Coordinator{Swarm: s, Bus: bus}
}

// Route forwards to the Swarm, then publishes a message_sent event
// carrying the target id and reply text.
func (c *Coordinator) Route(ctx context.Context, target message.AgentID, msg message.Message) (message.Message, error) {
	reply, err := c.Swarm.Route(ctx, target, msg)
	if err != nil {
		return message.Message{}, err
	}
	if c.Bus != nil {
		c.Bus.Publish(message.NewEvent(message.EventMessageSent, "coordinator", map[string]any{
			"agent_id": target.String(),
			"reply":    reply.Text(),
		}))
	}
	return reply, nil
}

// Broadcast forwards to the Swarm, then publishes a
// custom("broadcast_complete") event carrying the reply count.
func (c *Coordinator) Broadcast(ctx context.Context, msg message.Message) []Reply {
	replies := c.Swarm.Broadcast(ctx, msg)
	if c.Bus != nil {
		c.Bus.Publish(message.NewEvent(message.Custom("broadcast_complete"), "coordinator", map[string]any{
			"reply_count": len(replies),
		}))
	}
	return replies
}
