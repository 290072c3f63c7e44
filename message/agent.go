package message

// AgentConfig is immutable after agent construction.
type AgentConfig struct {
	ID           AgentID
	Name         string
	SystemPrompt string
	Model        string
	MaxTokens    int
	Temperature  float32
	Metadata     map[string]any
}

// NewAgentConfig builds a config with a fresh id and sensible defaults,
// mirroring the original Rust AgentConfig::new constructor.
func NewAgentConfig(name, systemPrompt string) AgentConfig {
	return AgentConfig{
		ID:           NewAgentID(),
		Name:         name,
		SystemPrompt: systemPrompt,
		Model:        "claude-sonnet-4-6",
		MaxTokens:    8192,
		Temperature:  0.7,
	}
}

// WithModel returns a copy of the config with Model overridden.
func (c AgentConfig) WithModel(model string) AgentConfig {
	c.Model = model
	return c
}

// AgentStateKind enumerates the agent lifecycle states.
type AgentStateKind int

const (
	StateIdle AgentStateKind = iota
	StateRunning
	StatePaused
	StateStopped
	StateError
)

func (k AgentStateKind) String() string {
	switch k {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// AgentState pairs the state kind with an optional error reason, present
// only when Kind == StateError.
type AgentState struct {
	Kind   AgentStateKind
	Reason string
}

func (s AgentState) String() string {
	if s.Kind == StateError {
		return "error(" + s.Reason + ")"
	}
	return s.Kind.String()
}

// Terminal reports whether the state requires an explicit restart to
// leave (stopped and error are terminal-until-restart per spec.md §3).
func (s AgentState) Terminal() bool {
	return s.Kind == StateStopped || s.Kind == StateError
}
