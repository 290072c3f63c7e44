package flow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pixelswarm/swarm/eventbus"
	"github.com/pixelswarm/swarm/message"
	"github.com/pixelswarm/swarm/swarmobs"
)

// Monitor owns a map of per-agent Machines and drives them from an
// Event Bus subscription, generalizing the original
// pixelcore-heartbeat::FlowMonitor's tokio::spawn + recv_async loop
// into a context-scoped goroutine.
type Monitor struct {
	mu       sync.RWMutex
	machines map[message.AgentID]*Machine
	config   Config
	bus      *eventbus.Bus
	obs      swarmobs.Observer
}

// NewMonitor constructs a Monitor that will apply config to every agent
// it registers.
func NewMonitor(bus *eventbus.Bus, config Config, obs swarmobs.Observer) *Monitor {
	if obs == nil {
		obs = swarmobs.NopObserver{}
	}
	return &Monitor{
		machines: make(map[message.AgentID]*Machine),
		config:   config,
		bus:      bus,
		obs:      obs,
	}
}

// RegisterAgent inserts a fresh Machine for id, overwriting any prior one.
func (m *Monitor) RegisterAgent(id message.AgentID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.machines[id] = NewMachine(m.config)
}

// UnregisterAgent removes id's Machine, if present.
func (m *Monitor) UnregisterAgent(id message.AgentID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.machines, id)
}

// GetFlowState returns id's current classification.
func (m *Monitor) GetFlowState(id message.AgentID) (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	machine, ok := m.machines[id]
	if !ok {
		return State{}, false
	}
	return machine.State(), true
}

// DebugSnapshot returns a human-readable summary of id's current
// metrics, a supplemented feature from the original's get_metrics_debug.
func (m *Monitor) DebugSnapshot(id message.AgentID) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	machine, ok := m.machines[id]
	if !ok {
		return "", false
	}
	metrics := machine.Metrics()
	return fmt.Sprintf(
		"agent=%s state=%s completed=%d failed=%d switches=%d completion_rate=%.2f/min error_rate=%.2f flow_score=%.2f",
		id, machine.State(), metrics.TasksCompleted, metrics.TasksFailed, metrics.TaskSwitches,
		metrics.CompletionRate(), metrics.ErrorRate(), machine.FlowScore(),
	), true
}

// Run subscribes to the bus and drives every registered Machine from
// its events until ctx is canceled. Intended to be started in its own
// goroutine: `go monitor.Run(ctx)`.
func (m *Monitor) Run(ctx context.Context) {
	if m.bus == nil {
		return
	}
	sub := m.bus.Subscribe()
	defer sub.Unsubscribe()

	for {
		ev, lag, err := sub.Recv(ctx)
		if err != nil {
			return
		}
		m.obs.OnEventLag(lag)
		m.handleEvent(ev)
	}
}

// handleEvent implements the §4.8 dispatch: extract an agent id,
// locate its machine, apply the event, and publish flow_state_changed
// if the classification moved.
func (m *Monitor) handleEvent(ev message.Event) {
	id, ok := extractAgentID(ev)
	if !ok {
		return
	}

	m.mu.Lock()
	machine, ok := m.machines[id]
	if !ok {
		m.mu.Unlock()
		return
	}

	oldState := machine.State()
	switch {
	case ev.Kind.Equal(message.EventTaskStarted):
		machine.TaskStarted()
	case ev.Kind.Equal(message.EventTaskCompleted):
		machine.TaskCompleted()
	case ev.Kind.Equal(message.EventTaskFailed):
		machine.TaskFailed()
	case ev.Kind.Equal(message.EventAgentStopped):
		machine.SetIdle()
	default:
		m.mu.Unlock()
		return
	}
	newState := machine.State()
	m.mu.Unlock()

	if newState != oldState {
		m.obs.OnFlowTransition(id, oldState.String(), newState.String())
		if m.bus != nil {
			m.bus.Publish(message.NewEvent(message.Custom("flow_state_changed"), "flow-monitor", map[string]any{
				"agent_id":  id.String(),
				"old_state": oldState.String(),
				"new_state": newState.String(),
			}))
		}
	}
}

// extractAgentID implements the §4.8 step-1 extraction rule:
// payload.agent_id first, else source matching "agent:<id>".
func extractAgentID(ev message.Event) (message.AgentID, bool) {
	if raw, ok := ev.Payload["agent_id"]; ok {
		if s, ok := raw.(string); ok {
			if id, err := message.ParseAgentID(s); err == nil {
				return id, true
			}
		}
	}
	const prefix = "agent:"
	if strings.HasPrefix(ev.Source, prefix) {
		if id, err := message.ParseAgentID(strings.TrimPrefix(ev.Source, prefix)); err == nil {
			return id, true
		}
	}
	return message.AgentID{}, false
}
