package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelswarm/swarm/message"
)

func TestToOpenAIRequest_SystemHoisted(t *testing.T) {
	req := Request{
		Model:  "gpt-x",
		System: "be helpful",
		Messages: []message.Message{
			message.UserMessage("hi"),
		},
	}
	wire := toOpenAIRequest(req)
	require.Len(t, wire.Messages, 2)
	assert.Equal(t, "system", wire.Messages[0].Role)
	assert.Equal(t, "be helpful", *wire.Messages[0].Content)
	assert.Equal(t, "user", wire.Messages[1].Role)
	assert.Equal(t, "hi", *wire.Messages[1].Content)
}

func TestFlattenMessage_ToolUseBecomesAssistantToolCalls(t *testing.T) {
	msg := message.NewBlockMessage(message.RoleAssistant, []message.ContentBlock{
		message.TextBlock("checking..."),
		message.ToolUseBlock("call_1", "fetch", map[string]any{"url": "https://x"}),
	})
	out := flattenMessage(msg)
	require.Len(t, out, 1)
	assert.Equal(t, "assistant", out[0].Role)
	require.NotNil(t, out[0].Content)
	assert.Equal(t, "checking...", *out[0].Content)
	require.Len(t, out[0].ToolCalls, 1)
	assert.Equal(t, "call_1", out[0].ToolCalls[0].ID)
	assert.Equal(t, "fetch", out[0].ToolCalls[0].Function.Name)

	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[0].ToolCalls[0].Function.Arguments), &args))
	assert.Equal(t, "https://x", args["url"])
}

func TestFlattenMessage_ToolResultsBecomeToolMessagesThenTrailingText(t *testing.T) {
	msg := message.NewBlockMessage(message.RoleUser, []message.ContentBlock{
		message.ToolResultBlock("call_1", "42"),
		message.ToolResultBlock("call_2", "done"),
		message.TextBlock("what's next?"),
	})
	out := flattenMessage(msg)
	require.Len(t, out, 3)
	assert.Equal(t, "tool", out[0].Role)
	assert.Equal(t, "call_1", out[0].ToolCallID)
	assert.Equal(t, "42", *out[0].Content)
	assert.Equal(t, "tool", out[1].Role)
	assert.Equal(t, "call_2", out[1].ToolCallID)
	assert.Equal(t, "user", out[2].Role)
	assert.Equal(t, "what's next?", *out[2].Content)
}

func TestFromOpenAIResponse_UnifiesTextAndToolCalls(t *testing.T) {
	wire := oaiResponse{
		ID:    "resp_1",
		Model: "gpt-x",
		Choices: []oaiChoice{
			{
				FinishReason: "tool_calls",
				Message: oaiMessage{
					Content: strPtr("let me check"),
					ToolCalls: []oaiToolCall{
						{ID: "call_1", Type: "function", Function: oaiToolCallFunc{Name: "fetch", Arguments: `{"url":"https://x"}`}},
					},
				},
			},
		},
		Usage: oaiUsage{PromptTokens: 10, CompletionTokens: 5},
	}
	resp := fromOpenAIResponse(wire)
	require.Len(t, resp.Content, 2)
	assert.Equal(t, message.ContentText, resp.Content[0].Type)
	assert.Equal(t, "let me check", resp.Content[0].Text)
	assert.Equal(t, message.ContentToolUse, resp.Content[1].Type)
	assert.Equal(t, "fetch", resp.Content[1].ToolUseName)
	assert.Equal(t, "tool_calls", resp.StopReason)
	assert.Equal(t, 10, resp.Usage.InputTokens)
	assert.Equal(t, 5, resp.Usage.OutputTokens)
}

func TestFromOpenAIResponse_MalformedArgumentsYieldNilInputNotError(t *testing.T) {
	wire := oaiResponse{
		Choices: []oaiChoice{
			{
				Message: oaiMessage{
					ToolCalls: []oaiToolCall{
						{ID: "call_1", Function: oaiToolCallFunc{Name: "fetch", Arguments: `not json`}},
					},
				},
			},
		},
	}
	resp := fromOpenAIResponse(wire)
	require.Len(t, resp.Content, 1)
	assert.Nil(t, resp.Content[0].ToolUseInput)
}

func strPtr(s string) *string { return &s }
