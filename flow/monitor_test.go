package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelswarm/swarm/eventbus"
	"github.com/pixelswarm/swarm/message"
)

func TestMonitor_RegisterAndGetFlowState(t *testing.T) {
	bus := eventbus.New()
	mon := NewMonitor(bus, DefaultConfig(), nil)
	id := message.NewAgentID()
	mon.RegisterAgent(id)

	state, ok := mon.GetFlowState(id)
	require.True(t, ok)
	assert.Equal(t, StateIdle, state.Kind)
}

func TestMonitor_UnregisteredAgentDropsEvent(t *testing.T) {
	bus := eventbus.New()
	mon := NewMonitor(bus, DefaultConfig(), nil)
	id := message.NewAgentID()

	mon.handleEvent(message.NewEvent(message.EventTaskStarted, message.AgentSource(id), map[string]any{
		"agent_id": id.String(),
	}))
	_, ok := mon.GetFlowState(id)
	assert.False(t, ok)
}

func TestMonitor_ExtractsAgentIDFromPayloadFirst(t *testing.T) {
	id := message.NewAgentID()
	ev := message.NewEvent(message.EventTaskStarted, "agent:"+message.NewAgentID().String(), map[string]any{
		"agent_id": id.String(),
	})
	got, ok := extractAgentID(ev)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestMonitor_ExtractsAgentIDFromSourceWhenPayloadMissing(t *testing.T) {
	id := message.NewAgentID()
	ev := message.NewEvent(message.EventTaskStarted, message.AgentSource(id), nil)
	got, ok := extractAgentID(ev)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestMonitor_PublishesFlowStateChangedOnTransition(t *testing.T) {
	bus := eventbus.New()
	mon := NewMonitor(bus, DefaultConfig(), nil)
	id := message.NewAgentID()
	mon.RegisterAgent(id)

	sub := bus.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	go mon.Run(ctx)

	// Let Run subscribe and let the machine's window pass 0.1s, so that one
	// completed task gives a non-zero completion rate and leaves idle.
	time.Sleep(150 * time.Millisecond)
	bus.Publish(message.NewEvent(message.EventTaskStarted, message.AgentSource(id), map[string]any{
		"agent_id": id.String(),
	}))
	bus.Publish(message.NewEvent(message.EventTaskCompleted, message.AgentSource(id), map[string]any{
		"agent_id": id.String(),
	}))

	found := false
	deadline := time.After(time.Second)
	for !found {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for flow_state_changed")
		default:
		}
		recvCtx, recvCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		ev, _, err := sub.Recv(recvCtx)
		recvCancel()
		if err != nil {
			continue
		}
		if name, ok := ev.Kind.CustomName(); ok && name == "flow_state_changed" {
			found = true
		}
	}
	cancel()
	assert.True(t, found)
}

func TestMonitor_AgentStoppedForcesIdle(t *testing.T) {
	bus := eventbus.New()
	mon := NewMonitor(bus, DefaultConfig(), nil)
	id := message.NewAgentID()
	mon.RegisterAgent(id)

	mon.handleEvent(message.NewEvent(message.EventTaskStarted, message.AgentSource(id), map[string]any{"agent_id": id.String()}))
	mon.handleEvent(message.NewEvent(message.EventAgentStopped, message.AgentSource(id), map[string]any{"agent_id": id.String()}))

	state, ok := mon.GetFlowState(id)
	require.True(t, ok)
	assert.Equal(t, StateIdle, state.Kind)
}
