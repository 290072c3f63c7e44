package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_TextConcatenatesOnlyTextBlocks(t *testing.T) {
	m := NewBlockMessage(RoleAssistant, []ContentBlock{
		TextBlock("a"),
		ToolUseBlock("id", "fetch", nil),
		TextBlock("b"),
	})
	assert.Equal(t, "ab", m.Text())
}

func TestMessage_HasToolUses(t *testing.T) {
	withTool := NewBlockMessage(RoleAssistant, []ContentBlock{ToolUseBlock("id", "x", nil)})
	withoutTool := NewMessage(RoleUser, "hi")
	assert.True(t, withTool.HasToolUses())
	assert.False(t, withoutTool.HasToolUses())
}

func TestAgentID_ParseRoundTrip(t *testing.T) {
	id := NewAgentID()
	parsed, err := ParseAgentID(id.String())
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestAgentConfig_Defaults(t *testing.T) {
	cfg := NewAgentConfig("bot", "be helpful")
	assert.Equal(t, "claude-sonnet-4-6", cfg.Model)
	assert.Equal(t, 8192, cfg.MaxTokens)
	assert.Equal(t, float32(0.7), cfg.Temperature)
}

func TestAgentConfig_WithModelReturnsCopy(t *testing.T) {
	cfg := NewAgentConfig("bot", "")
	overridden := cfg.WithModel("gpt-x")
	assert.Equal(t, "claude-sonnet-4-6", cfg.Model, "original unaffected")
	assert.Equal(t, "gpt-x", overridden.Model)
}

func TestAgentState_TerminalStates(t *testing.T) {
	assert.True(t, AgentState{Kind: StateStopped}.Terminal())
	assert.True(t, AgentState{Kind: StateError, Reason: "x"}.Terminal())
	assert.False(t, AgentState{Kind: StateRunning}.Terminal())
}

func TestEventKind_CustomRoundTrip(t *testing.T) {
	k := Custom("flow_state_changed")
	name, ok := k.CustomName()
	assert.True(t, ok)
	assert.Equal(t, "flow_state_changed", name)

	_, ok = EventAgentStarted.CustomName()
	assert.False(t, ok)
}

func TestAgentSource_Format(t *testing.T) {
	id := NewAgentID()
	assert.Equal(t, "agent:"+id.String(), AgentSource(id))
}
