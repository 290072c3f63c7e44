// Package agent implements the turn loop: given a running agent and a
// user message, drive the provider/skill round-trip until the model
// stops requesting tools or the round bound is exhausted. Grounded on
// the original Rust ClaudeAgent.process, generalized from its single
// provider call into the bounded multi-round loop spec.md mandates.
package agent

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pixelswarm/swarm/eventbus"
	"github.com/pixelswarm/swarm/message"
	"github.com/pixelswarm/swarm/provider"
	"github.com/pixelswarm/swarm/skill"
	"github.com/pixelswarm/swarm/swarmerr"
	"github.com/pixelswarm/swarm/swarmobs"
)

// MaxToolRounds bounds how many provider/skill round-trips one Process
// call may perform before failing with ExceededToolRoundsError.
const MaxToolRounds = 10

// terminalStopReasons are the stop_reason values that end a turn even
// when tool-use blocks happen to be present (they should not be, but
// the loop does not assume that).
var terminalStopReasons = map[string]bool{
	"end_turn": true,
	"stop":     true,
}

// Agent drives one conversation: its own config, lifecycle state and
// history, plus the collaborators the turn loop calls into.
type Agent struct {
	mu      sync.Mutex
	config  message.AgentConfig
	state   message.AgentState
	history []message.Message

	Provider provider.Client
	Skills   *skill.Registry
	Bus      *eventbus.Bus
	Observer swarmobs.Observer
}

// New constructs an idle agent. Bus and Observer may be nil — a nil Bus
// means task/lifecycle events are not published; a nil Observer is
// replaced with a no-op one.
func New(config message.AgentConfig, client provider.Client, skills *skill.Registry, bus *eventbus.Bus, obs swarmobs.Observer) *Agent {
	if obs == nil {
		obs = swarmobs.NopObserver{}
	}
	return &Agent{
		config:   config,
		state:    message.AgentState{Kind: message.StateIdle},
		Provider: client,
		Skills:   skills,
		Bus:      bus,
		Observer: obs,
	}
}

// ID returns the agent's stable identifier.
func (a *Agent) ID() message.AgentID { return a.config.ID }

// Config returns the agent's immutable construction-time configuration.
func (a *Agent) Config() message.AgentConfig { return a.config }

// State returns the agent's current lifecycle state.
func (a *Agent) State() message.AgentState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// History returns a copy of the agent's transcript so far.
func (a *Agent) History() []message.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]message.Message, len(a.history))
	copy(out, a.history)
	return out
}

// Start transitions idle/stopped -> running.
func (a *Agent) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = message.AgentState{Kind: message.StateRunning}
	a.publish(message.EventAgentStarted, nil)
	return nil
}

// Stop transitions the agent to stopped; stopped is terminal-until-restart.
func (a *Agent) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = message.AgentState{Kind: message.StateStopped}
	a.publish(message.EventAgentStopped, nil)
	return nil
}

// publish emits an agent-scoped event if a Bus is attached. Must be
// called with a.mu held only when reading a.config, which never mutates.
func (a *Agent) publish(kind message.EventKind, payload map[string]any) {
	if a.Bus == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{"agent_id": a.config.ID.String()}
	} else if _, ok := payload["agent_id"]; !ok {
		payload["agent_id"] = a.config.ID.String()
	}
	a.Bus.Publish(message.NewEvent(kind, message.AgentSource(a.config.ID), payload))
}

// Process runs the turn loop described in spec.md §4.3: append the user
// message, then alternate provider calls and tool execution until the
// model stops requesting tools or MaxToolRounds is exhausted. The whole
// call is treated as one flow "task": TaskStarted fires once at entry,
// TaskCompleted/TaskFailed once at exit.
func (a *Agent) Process(ctx context.Context, userText string) (message.Message, error) {
	a.mu.Lock()
	if a.state.Kind != message.StateRunning {
		err := swarmerr.WrapAgent(swarmerr.ErrAgentNotFound, "agent '"+a.config.Name+"' is not running")
		a.mu.Unlock()
		return message.Message{}, err
	}
	a.history = append(a.history, message.UserMessage(userText))
	a.mu.Unlock()

	a.publish(message.EventTaskStarted, nil)

	reply, err := a.runRounds(ctx)

	a.mu.Lock()
	if err != nil {
		a.state = message.AgentState{Kind: message.StateError, Reason: err.Error()}
	}
	a.mu.Unlock()

	if err != nil {
		a.publish(message.EventTaskFailed, nil)
		return message.Message{}, err
	}
	a.publish(message.EventTaskCompleted, nil)
	return reply, nil
}

func (a *Agent) runRounds(ctx context.Context) (message.Message, error) {
	for round := 1; round <= MaxToolRounds; round++ {
		req := a.buildRequest()

		a.Observer.OnProviderCall(a.config.ID, a.config.Model, round)
		resp, err := a.Provider.Complete(ctx, req)
		a.Observer.OnProviderResult(a.config.ID, round, err)
		if err != nil {
			return message.Message{}, swarmerr.WrapProvider(err, "complete")
		}

		assistantMsg := message.NewBlockMessage(message.RoleAssistant, resp.Content)
		a.mu.Lock()
		a.history = append(a.history, assistantMsg)
		a.mu.Unlock()

		toolUses := assistantMsg.ToolUses()
		if len(toolUses) == 0 || terminalStopReasons[resp.StopReason] {
			return message.NewMessage(message.RoleAssistant, assistantMsg.Text()), nil
		}

		results := a.executeTools(ctx, toolUses)
		resultMsg := message.NewBlockMessage(message.RoleUser, results)
		a.mu.Lock()
		a.history = append(a.history, resultMsg)
		a.mu.Unlock()
	}
	return message.Message{}, &swarmerr.ExceededToolRoundsError{Bound: MaxToolRounds}
}

// buildRequest snapshots config + history + skills into a provider
// request, omitting the tools field entirely when the registry is empty
// or unset (spec.md §4.3 step a).
func (a *Agent) buildRequest() provider.Request {
	a.mu.Lock()
	history := make([]message.Message, len(a.history))
	copy(history, a.history)
	cfg := a.config
	a.mu.Unlock()

	req := provider.Request{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Messages:    history,
		System:      cfg.SystemPrompt,
		Temperature: cfg.Temperature,
	}
	if a.Skills != nil {
		for _, d := range a.Skills.AsTools() {
			req.Tools = append(req.Tools, provider.Tool{
				Name:        d.Name,
				Description: d.Description,
				InputSchema: d.InputSchema,
			})
		}
	}
	return req
}

// executeTools runs each tool-use in emission order (order-sensitive
// skills like storage mutations require this) and collects one
// ToolResult block per invocation, in the same order.
func (a *Agent) executeTools(ctx context.Context, toolUses []message.ContentBlock) []message.ContentBlock {
	out := make([]message.ContentBlock, 0, len(toolUses))
	for _, use := range toolUses {
		out = append(out, a.executeOne(ctx, use))
	}
	return out
}

func (a *Agent) executeOne(ctx context.Context, use message.ContentBlock) message.ContentBlock {
	a.Observer.OnSkillCall(a.config.ID, use.ToolUseName, use.ToolUseID)

	s, err := a.Skills.Get(use.ToolUseName)
	if err != nil {
		a.Observer.OnSkillResult(a.config.ID, use.ToolUseName, use.ToolUseID, true)
		return message.ToolResultBlock(use.ToolUseID, "unknown skill: "+use.ToolUseName)
	}

	if err := a.Skills.Validate(use.ToolUseName, use.ToolUseInput); err != nil {
		a.Observer.OnSkillResult(a.config.ID, use.ToolUseName, use.ToolUseID, true)
		return message.ToolResultBlock(use.ToolUseID, "error: invalid input: "+err.Error())
	}

	output, err := s.Execute(ctx, skill.Input{Name: use.ToolUseName, Args: use.ToolUseInput})
	if err != nil {
		a.Observer.OnSkillResult(a.config.ID, use.ToolUseName, use.ToolUseID, true)
		return message.ToolResultBlock(use.ToolUseID, "error: "+err.Error())
	}
	if !output.Success {
		a.Observer.OnSkillResult(a.config.ID, use.ToolUseName, use.ToolUseID, true)
		return message.ToolResultBlock(use.ToolUseID, "error: "+output.Error)
	}

	a.Observer.OnSkillResult(a.config.ID, use.ToolUseName, use.ToolUseID, false)
	raw, err := json.Marshal(output.Result)
	if err != nil {
		return message.ToolResultBlock(use.ToolUseID, "error: "+err.Error())
	}
	return message.ToolResultBlock(use.ToolUseID, string(raw))
}
