package flow

import (
	"context"
	"time"

	"github.com/pixelswarm/swarm/eventbus"
	"github.com/pixelswarm/swarm/message"
)

// Heartbeat periodically publishes a heartbeat_tick event so long-idle
// swarms still produce bus traffic subscribers can use as a liveness
// signal, a supplemented feature carried over from the original Rust
// pixelcore-heartbeat::Heartbeat.
type Heartbeat struct {
	Bus      *eventbus.Bus
	Interval time.Duration
}

// NewHeartbeat constructs a Heartbeat ticking at interval.
func NewHeartbeat(bus *eventbus.Bus, interval time.Duration) *Heartbeat {
	return &Heartbeat{Bus: bus, Interval: interval}
}

// Run ticks until ctx is canceled, publishing a heartbeat_tick event
// with an RFC3339 timestamp payload on every tick.
func (h *Heartbeat) Run(ctx context.Context) {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			h.Bus.Publish(message.NewEvent(message.EventHeartbeatTick, "heartbeat", map[string]any{
				"ts": t.Format(time.RFC3339),
			}))
		}
	}
}
