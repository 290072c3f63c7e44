package message

import (
	"time"

	"github.com/google/uuid"
)

// EventKind enumerates the bus's built-in event kinds, plus an open
// Custom(name) escape hatch for the Flow Monitor's derived events.
type EventKind struct {
	name string
}

func (k EventKind) String() string { return k.name }

// Equal reports whether two EventKind values name the same kind,
// including matching Custom names.
func (k EventKind) Equal(other EventKind) bool { return k.name == other.name }

var (
	EventAgentStarted    = EventKind{"agent_started"}
	EventAgentStopped    = EventKind{"agent_stopped"}
	EventAgentError      = EventKind{"agent_error"}
	EventMessageReceived = EventKind{"message_received"}
	EventMessageSent     = EventKind{"message_sent"}
	EventTaskStarted     = EventKind{"task_started"}
	EventTaskCompleted   = EventKind{"task_completed"}
	EventTaskFailed      = EventKind{"task_failed"}
	EventHeartbeatTick   = EventKind{"heartbeat_tick"}
)

// Custom constructs a Custom(name) event kind.
func Custom(name string) EventKind { return EventKind{"custom:" + name} }

// CustomName returns the name passed to Custom, and whether this kind is
// in fact a Custom kind.
func (k EventKind) CustomName() (string, bool) {
	const prefix = "custom:"
	if len(k.name) > len(prefix) && k.name[:len(prefix)] == prefix {
		return k.name[len(prefix):], true
	}
	return "", false
}

// Event is an immutable record published on the Event Bus.
type Event struct {
	ID        string
	Kind      EventKind
	Source    string
	Timestamp time.Time
	Payload   map[string]any
}

// NewEvent constructs an Event with a fresh id and current timestamp.
func NewEvent(kind EventKind, source string, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Source:    source,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// AgentSource formats the canonical "agent:<uuid>" event source used by
// the Flow Monitor's extraction rule.
func AgentSource(id AgentID) string { return "agent:" + id.String() }
