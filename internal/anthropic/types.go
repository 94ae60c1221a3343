package anthropic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Content block types used in the Messages API.
const (
	BlockTypeText       = "text"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
)

// MessageRequest is an Anthropic Messages API request body.
type MessageRequest struct {
	Model         string           `json:"model"`
	MaxTokens     int              `json:"max_tokens"`
	Messages      []Message        `json:"messages"`
	System        SystemPrompt     `json:"system,omitempty"`
	Temperature   *float64         `json:"temperature,omitempty"`
	TopP          *float64         `json:"top_p,omitempty"`
	StopSequences []string         `json:"stop_sequences,omitempty"`
	Stream        bool             `json:"stream,omitempty"`
	Tools         []ToolDefinition `json:"tools,omitempty"`
	ToolChoice    *ToolChoice      `json:"tool_choice,omitempty"`
}

// Message is a single conversation turn with role "user" or "assistant".
type Message struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// MessageContent accepts both content encodings of the Messages API:
// a plain string or an ordered array of content blocks.
type MessageContent struct {
	IsString bool
	Text     string
	Blocks   []ContentBlock
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.IsString = true
		c.Text = s
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("content must be a string or an array of content blocks: %w", err)
	}
	c.Blocks = blocks
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.IsString {
		return json.Marshal(c.Text)
	}
	return json.Marshal(c.Blocks)
}

// ContentBlock is a tagged content block variant. The Type field selects
// which of the remaining fields are meaningful: text blocks carry Text,
// tool_use blocks carry ID/Name/Input, tool_result blocks carry
// ToolUseID/Content/IsError.
type ContentBlock struct {
	Type      string            `json:"type"`
	Text      string            `json:"text,omitempty"`
	ID        string            `json:"id,omitempty"`
	Name      string            `json:"name,omitempty"`
	Input     map[string]any    `json:"input,omitempty"`
	ToolUseID string            `json:"tool_use_id,omitempty"`
	Content   ToolResultContent `json:"content,omitempty"`
	IsError   bool              `json:"is_error,omitempty"`
}

// MarshalJSON emits only the fields defined for the block's type, so that
// a text block always carries its text (even empty) and never the unrelated
// tool fields.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	switch b.Type {
	case BlockTypeText:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{b.Type, b.Text})
	case BlockTypeToolUse:
		input := b.Input
		if input == nil {
			input = map[string]any{}
		}
		return json.Marshal(struct {
			Type  string         `json:"type"`
			ID    string         `json:"id"`
			Name  string         `json:"name"`
			Input map[string]any `json:"input"`
		}{b.Type, b.ID, b.Name, input})
	default:
		type plain ContentBlock
		return json.Marshal(plain(b))
	}
}

// ToolResultContent is the content of a tool_result block: either a plain
// string or a structured value (typically an array of text parts), which is
// preserved verbatim.
type ToolResultContent struct {
	IsString bool
	Text     string
	Raw      json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ToolResultContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.IsString = true
		c.Text = s
		return nil
	}
	c.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c ToolResultContent) MarshalJSON() ([]byte, error) {
	if c.IsString {
		return json.Marshal(c.Text)
	}
	if len(c.Raw) == 0 {
		return []byte(`""`), nil
	}
	return c.Raw, nil
}

// String returns the result text: the string itself, or the compact JSON
// serialization of structured content.
func (c ToolResultContent) String() string {
	if c.IsString {
		return c.Text
	}
	if len(c.Raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, c.Raw); err != nil {
		return string(c.Raw)
	}
	return buf.String()
}

// SystemPrompt accepts both system encodings: a plain string or an ordered
// array of text blocks. Each element holds one block's text.
type SystemPrompt []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *SystemPrompt) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = SystemPrompt{str}
		return nil
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("system must be a string or an array of text blocks: %w", err)
	}
	texts := make(SystemPrompt, 0, len(blocks))
	for _, b := range blocks {
		texts = append(texts, b.Text)
	}
	*s = texts
	return nil
}

// Text joins the system blocks with newline separators.
func (s SystemPrompt) Text() string {
	return strings.Join(s, "\n")
}

// ToolDefinition declares a tool the model may invoke.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolChoice selects how the model picks tools: "auto", "any", or a
// specific tool by name. The API accepts both the bare string and the
// object encodings.
type ToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *ToolChoice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Type = s
		return nil
	}
	var obj struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("tool_choice must be a string or an object: %w", err)
	}
	t.Type = obj.Type
	t.Name = obj.Name
	return nil
}
