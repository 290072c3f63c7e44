package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/pixelswarm/swarm/message"
	"github.com/pixelswarm/swarm/swarmerr"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient speaks dialect A: block-structured requests with
// system hoisted top-level, x-api-key/anthropic-version headers, and
// responses already shaped as ContentBlocks. Grounded on the original
// Rust ClawClient.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAnthropic constructs a client with an explicit API key.
func NewAnthropic(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		baseURL:    "https://api.anthropic.com",
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// NewAnthropicFromEnv reads ANTHROPIC_API_KEY, matching ClawClient::from_env.
func NewAnthropicFromEnv() (*AnthropicClient, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY", swarmerr.ErrMissingAPIKey)
	}
	return NewAnthropic(key), nil
}

// wireRequest is the on-the-wire block-structured request body.
type wireRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Messages    []wireMessage   `json:"messages"`
	System      string          `json:"system,omitempty"`
	Tools       []wireTool      `json:"tools,omitempty"`
	Temperature *float32        `json:"temperature,omitempty"`
}

type wireMessage struct {
	Role    string       `json:"role"`
	Content []wireBlock  `json:"content"`
}

type wireBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Input     any    `json:"input,omitempty"`
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type wireTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

type wireResponse struct {
	ID         string      `json:"id"`
	Model      string      `json:"model"`
	StopReason string      `json:"stop_reason,omitempty"`
	Content    []wireBlock `json:"content"`
	Usage      wireUsage   `json:"usage"`
}

type wireUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Complete implements Client for dialect A.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	body := toWireRequest(req)
	raw, err := json.Marshal(body)
	if err != nil {
		return Response{}, &swarmerr.SerializationError{Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(raw))
	if err != nil {
		return Response{}, &swarmerr.HttpError{Cause: err}
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
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

	var wire wireResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return Response{}, &swarmerr.SerializationError{Cause: err}
	}

	return fromWireResponse(wire), nil
}

func toWireRequest(req Request) wireRequest {
	messages := make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, wireMessage{
			Role:    string(m.Role),
			Content: toWireBlocks(m.Content),
		})
	}
	tools := make([]wireTool, 0, len(req.Tools))
	for _, t := range req.Tools {
		tools = append(tools, wireTool{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
	}
	var temp *float32
	if req.Temperature != 0 {
		t := req.Temperature
		temp = &t
	}
	return wireRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Messages:    messages,
		System:      req.System,
		Tools:       tools,
		Temperature: temp,
	}
}

func toWireBlocks(blocks []message.ContentBlock) []wireBlock {
	out := make([]wireBlock, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case message.ContentText:
			out = append(out, wireBlock{Type: "text", Text: b.Text})
		case message.ContentToolUse:
			out = append(out, wireBlock{Type: "tool_use", ID: b.ToolUseID, Name: b.ToolUseName, Input: b.ToolUseInput})
		case message.ContentToolResult:
			out = append(out, wireBlock{Type: "tool_result", ToolUseID: b.ToolResultForID, Content: b.ToolResultText})
		}
	}
	return out
}

func fromWireBlocks(blocks []wireBlock) []message.ContentBlock {
	out := make([]message.ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case "text":
			out = append(out, message.TextBlock(b.Text))
		case "tool_use":
			out = append(out, message.ToolUseBlock(b.ID, b.Name, b.Input))
		case "tool_result":
			out = append(out, message.ToolResultBlock(b.ToolUseID, b.Content))
		}
	}
	return out
}

func fromWireResponse(w wireResponse) Response {
	return Response{
		ID:         w.ID,
		Model:      w.Model,
		StopReason: w.StopReason,
		Content:    fromWireBlocks(w.Content),
		Usage:      Usage{InputTokens: w.Usage.InputTokens, OutputTokens: w.Usage.OutputTokens},
	}
}

var _ Client = (*AnthropicClient)(nil)
