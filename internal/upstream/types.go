// Package upstream speaks the OpenAI Chat Completions wire protocol to the
// configured backend. Response and stream-chunk shapes come from the
// go-openai library; the outbound request envelope is defined here with
// pointer-typed sampling fields so that an explicit zero (tool-prompt mode
// forces temperature 0) survives serialization.
package upstream

import openai "github.com/sashabaranov/go-openai"

// ChatRequest is the outbound /chat/completions body.
type ChatRequest struct {
	Model         string          `json:"model"`
	Messages      []ChatMessage   `json:"messages"`
	MaxTokens     int             `json:"max_tokens"`
	Stream        bool            `json:"stream"`
	StreamOptions *StreamOptions  `json:"stream_options,omitempty"`
	Temperature   *float64        `json:"temperature,omitempty"`
	TopP          *float64        `json:"top_p,omitempty"`
	Stop          []string        `json:"stop,omitempty"`
	Tools         []openai.Tool   `json:"tools,omitempty"`
	ToolChoice    any             `json:"tool_choice,omitempty"`
}

// ChatMessage is one flat conversation entry with role system, user,
// assistant or tool.
type ChatMessage struct {
	Role       string            `json:"role"`
	Content    *string           `json:"content"`
	ToolCalls  []openai.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
}

// StreamOptions requests terminal usage on streaming responses.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// NewChatMessage returns a message with its content set.
func NewChatMessage(role, content string) ChatMessage {
	return ChatMessage{Role: role, Content: &content}
}
