package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pixelswarm/swarm/message"
	"github.com/pixelswarm/swarm/swarmerr"
)

// OpenAICompatClient speaks dialect B: system folded into a leading
// message, tool calls carried as JSON-string arguments, bearer auth.
// Grounded on LlmRequest::to_openai / OpenAiResponse::into_llm_response
// in the original Rust pixelcore-claw types.
type OpenAICompatClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAICompat constructs a dialect-B client. No env-default
// constructor is specified for this dialect (spec.md §6), so none exists.
func NewOpenAICompat(baseURL, apiKey string) *OpenAICompatClient {
	return &OpenAICompatClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type oaiRequest struct {
	Model       string      `json:"model"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Messages    []oaiMessage `json:"messages"`
	Tools       []oaiTool   `json:"tools,omitempty"`
	Temperature *float32    `json:"temperature,omitempty"`
}

type oaiMessage struct {
	Role       string        `json:"role"`
	Content    *string       `json:"content,omitempty"`
	ToolCalls  []oaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type oaiToolCall struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Function oaiToolCallFunc `json:"function"`
}

type oaiToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type oaiTool struct {
	Type     string      `json:"type"`
	Function oaiFunction `json:"function"`
}

type oaiFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type oaiResponse struct {
	ID      string      `json:"id"`
	Model   string       `json:"model"`
	Choices []oaiChoice `json:"choices"`
	Usage   oaiUsage    `json:"usage"`
}

type oaiChoice struct {
	Message      oaiMessage `json:"message"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

type oaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Complete implements Client for dialect B.
func (c *OpenAICompatClient) Complete(ctx context.Context, req Request) (Response, error) {
	body := toOpenAIRequest(req)
	raw, err := json.Marshal(body)
	if err != nil {
		return Response{}, &swarmerr.SerializationError{Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(raw))
	if err != nil {
		return Response{}, &swarmerr.HttpError{Cause: err}
	}
	httpReq.Header.Set("authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, &swarmerr.HttpError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &swarmerr.HttpError{Cause: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60
		if v := resp.Header.Get("retry-after"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				retryAfter = parsed
			}
		}
		return Response{}, &swarmerr.RateLimitedError{RetryAfter: retryAfter}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, &swarmerr.ApiError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var wire oaiResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return Response{}, &swarmerr.SerializationError{Cause: err}
	}

	return fromOpenAIResponse(wire), nil
}

// toOpenAIRequest implements the §4.1 dialect-B translation: system
// becomes a leading system message; each message is flattened to one or
// more wire messages depending on its block content.
func toOpenAIRequest(req Request) oaiRequest {
	var messages []oaiMessage
	if req.System != "" {
		sys := req.System
		messages = append(messages, oaiMessage{Role: "system", Content: &sys})
	}

	for _, m := range req.Messages {
		messages = append(messages, flattenMessage(m)...)
	}

	tools := make([]oaiTool, 0, len(req.Tools))
	for _, t := range req.Tools {
		tools = append(tools, oaiTool{
			Type: "function",
			Function: oaiFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}

	var temp *float32
	if req.Temperature != 0 {
		t := req.Temperature
		temp = &t
	}

	return oaiRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Messages:    messages,
		Tools:       tools,
		Temperature: temp,
	}
}

// flattenMessage turns one block-structured message into the wire
// messages dialect B needs: a message with tool-use blocks becomes one
// assistant message carrying tool_calls (its text, if any, as content);
// a message with no tool-use becomes one tool-role message per
// ToolResult block followed by a trailing text message if any text
// remains, matching LlmRequest::to_openai exactly.
func flattenMessage(m message.Message) []oaiMessage {
	toolUses := m.ToolUses()
	if len(toolUses) > 0 {
		calls := make([]oaiToolCall, 0, len(toolUses))
		for _, b := range toolUses {
			args, err := json.Marshal(b.ToolUseInput)
			if err != nil {
				args = []byte("null")
			}
			calls = append(calls, oaiToolCall{
				ID:   b.ToolUseID,
				Type: "function",
				Function: oaiToolCallFunc{
					Name:      b.ToolUseName,
					Arguments: string(args),
				},
			})
		}
		msg := oaiMessage{Role: "assistant", ToolCalls: calls}
		if text := m.Text(); text != "" {
			msg.Content = &text
		}
		return []oaiMessage{msg}
	}

	var out []oaiMessage
	for _, b := range m.Content {
		if b.Type == message.ContentToolResult {
			content := b.ToolResultText
			out = append(out, oaiMessage{Role: "tool", Content: &content, ToolCallID: b.ToolResultForID})
		}
	}
	if text := m.Text(); text != "" {
		content := text
		out = append(out, oaiMessage{Role: string(m.Role), Content: &content})
	}
	return out
}

// fromOpenAIResponse implements the §4.1/§6 dialect-B response
// unification: the first choice's text (if non-empty) becomes one text
// block, followed by one ToolUse block per tool_call with its argument
// string JSON-parsed (parse failure yields a null input, never an
// error); usage fields are renamed; finish_reason passes through as
// stop_reason verbatim.
func fromOpenAIResponse(w oaiResponse) Response {
	var blocks []message.ContentBlock
	var stopReason string

	if len(w.Choices) > 0 {
		choice := w.Choices[0]
		stopReason = choice.FinishReason
		if choice.Message.Content != nil && *choice.Message.Content != "" {
			blocks = append(blocks, message.TextBlock(*choice.Message.Content))
		}
		for _, call := range choice.Message.ToolCalls {
			var input any
			if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
				input = nil
			}
			blocks = append(blocks, message.ToolUseBlock(call.ID, call.Function.Name, input))
		}
	}

	return Response{
		ID:         w.ID,
		Model:      w.Model,
		StopReason: stopReason,
		Content:    blocks,
		Usage:      Usage{InputTokens: w.Usage.PromptTokens, OutputTokens: w.Usage.CompletionTokens},
	}
}

var _ Client = (*OpenAICompatClient)(nil)

// UnsupportedProviderError is returned by driver code that dispatches on
// a provider name string not recognized by either dialect.
func UnsupportedProviderError(name string) error {
	return fmt.Errorf("%w: %s", swarmerr.ErrUnsupportedProvider, name)
}
