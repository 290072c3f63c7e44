// Package message defines the immutable wire records shared across the
// swarm: agent identifiers, conversation messages, typed content blocks
// and bus events.
package message

import (
	"time"

	"github.com/google/uuid"
)

// AgentID is an opaque, globally unique identifier for an agent, stable
// for the agent's lifetime.
type AgentID uuid.UUID

// NewAgentID generates a fresh random agent id.
func NewAgentID() AgentID { return AgentID(uuid.New()) }

func (id AgentID) String() string { return uuid.UUID(id).String() }

// ParseAgentID parses a string-uuid into an AgentID.
func ParseAgentID(s string) (AgentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AgentID{}, err
	}
	return AgentID(u), nil
}

// Role identifies who produced a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ContentType discriminates a ContentBlock's payload.
type ContentType string

const (
	ContentText       ContentType = "text"
	ContentToolUse    ContentType = "tool_use"
	ContentToolResult ContentType = "tool_result"
)

// ContentBlock is a tagged union of the three block kinds the turn loop
// deals with. Exactly one payload is populated, matching Type.
type ContentBlock struct {
	Type ContentType

	// Text payload (Type == ContentText).
	Text string

	// ToolUse payload (Type == ContentToolUse).
	ToolUseID    string
	ToolUseName  string
	ToolUseInput any // structured JSON (map[string]any, slice, scalar, or nil)

	// ToolResult payload (Type == ContentToolResult).
	ToolResultForID string
	ToolResultText  string
}

// TextBlock constructs a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentText, Text: text}
}

// ToolUseBlock constructs a tool-use content block.
func ToolUseBlock(id, name string, input any) ContentBlock {
	return ContentBlock{Type: ContentToolUse, ToolUseID: id, ToolUseName: name, ToolUseInput: input}
}

// ToolResultBlock constructs a tool-result content block.
func ToolResultBlock(toolUseID, content string) ContentBlock {
	return ContentBlock{Type: ContentToolResult, ToolResultForID: toolUseID, ToolResultText: content}
}

// Message is an immutable, once-constructed turn in a conversation.
type Message struct {
	ID        string
	Role      Role
	Content   []ContentBlock
	Timestamp time.Time
	Metadata  map[string]any
}

// NewMessage constructs a Message with a single text block — the shape
// used for plain user/assistant turns that carry no blocks.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   []ContentBlock{TextBlock(text)},
		Timestamp: time.Now(),
	}
}

// NewBlockMessage constructs a Message carrying arbitrary content blocks,
// used for assistant turns mixing text and tool-use, and for user turns
// carrying tool-result blocks.
func NewBlockMessage(role Role, blocks []ContentBlock) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   blocks,
		Timestamp: time.Now(),
	}
}

// UserMessage is a convenience constructor for a plain user turn.
func UserMessage(text string) Message { return NewMessage(RoleUser, text) }

// Text concatenates every text block's content, in order.
func (m Message) Text() string {
	var out string
	for _, b := range m.Content {
		if b.Type == ContentText {
			out += b.Text
		}
	}
	return out
}

// ToolUses returns every tool-use block in the message, in order.
func (m Message) ToolUses() []ContentBlock {
	var out []ContentBlock
	for _, b := range m.Content {
		if b.Type == ContentToolUse {
			out = append(out, b)
		}
	}
	return out
}

// HasToolUses reports whether the message carries any tool-use block.
func (m Message) HasToolUses() bool {
	for _, b := range m.Content {
		if b.Type == ContentToolUse {
			return true
		}
	}
	return false
}
