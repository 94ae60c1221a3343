package adapter

import (
	"encoding/json"
	"iter"

	openai "github.com/sashabaranov/go-openai"

	"github.com/florianilch/claude-adapter/internal/anthropic"
)

// ChunkSource yields raw upstream SSE data payloads, one JSON document per
// step. The upstream package's ChunkStream satisfies it; tests supply
// slices.
type ChunkSource interface {
	Next() bool
	Current() []byte
	Err() error
}

// StreamConverter re-frames one upstream chunk stream as the Anthropic
// event sequence
//
//	message_start (content_block_start content_block_delta* content_block_stop)*
//	message_delta? message_stop
//
// Block indices are assigned at open time and strictly increase. State is
// scoped to a single request.
type StreamConverter struct {
	requestID string
	model     string

	blocks    []streamBlock
	toolCalls map[int]*streamToolCall
	usage     *anthropic.Usage
	failed    bool
}

type streamBlock struct {
	blockType string
	id        string
}

type streamToolCall struct {
	id   string
	name string
}

// NewStreamConverter builds a converter for one request. model is the
// client-requested name echoed in message_start.
func NewStreamConverter(requestID, model string) *StreamConverter {
	return &StreamConverter{
		requestID: requestID,
		model:     model,
		toolCalls: make(map[int]*streamToolCall),
	}
}

// Usage returns the last usage observed on the stream, or nil.
func (c *StreamConverter) Usage() *anthropic.Usage {
	return c.usage
}

// Failed reports whether the stream terminated through the error path.
func (c *StreamConverter) Failed() bool {
	return c.failed
}

// Events consumes the source and yields the Anthropic event sequence. The
// sequence always terminates with message_stop, upstream errors included;
// malformed chunks are skipped silently.
func (c *StreamConverter) Events(src ChunkSource) iter.Seq[anthropic.StreamEvent] {
	return func(yield func(anthropic.StreamEvent) bool) {
		if !yield(anthropic.NewMessageStartEvent(c.requestID, c.model)) {
			return
		}

		for src.Next() {
			raw := src.Current()

			if message, isErr := chunkError(raw); isErr {
				c.finishWithError(yield, message)
				return
			}

			var chunk openai.ChatCompletionStreamResponse
			if err := json.Unmarshal(raw, &chunk); err != nil {
				continue
			}
			if !c.processChunk(&chunk, yield) {
				return
			}
		}

		if err := src.Err(); err != nil {
			c.finishWithError(yield, err.Error())
			return
		}

		if c.usage != nil {
			if !yield(anthropic.NewMessageDeltaEvent(anthropic.StopReasonEndTurn, *c.usage)) {
				return
			}
		}
		yield(anthropic.NewMessageStopEvent())
	}
}

// processChunk translates one parsed chunk. A false return means the
// consumer stopped and iteration must end.
func (c *StreamConverter) processChunk(chunk *openai.ChatCompletionStreamResponse, yield func(anthropic.StreamEvent) bool) bool {
	if chunk.Usage != nil {
		c.usage = &anthropic.Usage{
			InputTokens:  chunk.Usage.PromptTokens,
			OutputTokens: chunk.Usage.CompletionTokens,
		}
	}

	if len(chunk.Choices) == 0 {
		return true
	}
	choice := chunk.Choices[0]

	if choice.Delta.Content != "" {
		if !c.emitTextDelta(choice.Delta.Content, yield) {
			return false
		}
	}

	for _, tc := range choice.Delta.ToolCalls {
		if !c.emitToolCallDelta(tc, yield) {
			return false
		}
	}

	if choice.FinishReason != "" && choice.FinishReason != openai.FinishReasonNull {
		for i := range c.blocks {
			if !yield(anthropic.NewContentBlockStopEvent(i)) {
				return false
			}
		}
	}

	return true
}

// emitTextDelta appends text to the last open text block, opening a new one
// when the stream position sits after a tool_use block (or at the start).
func (c *StreamConverter) emitTextDelta(text string, yield func(anthropic.StreamEvent) bool) bool {
	if len(c.blocks) == 0 || c.blocks[len(c.blocks)-1].blockType != anthropic.BlockTypeText {
		index := len(c.blocks)
		c.blocks = append(c.blocks, streamBlock{blockType: anthropic.BlockTypeText})
		if !yield(anthropic.NewContentBlockStartEvent(index, anthropic.ContentBlock{Type: anthropic.BlockTypeText})) {
			return false
		}
	}
	return yield(anthropic.NewTextDeltaEvent(len(c.blocks)-1, text))
}

// emitToolCallDelta opens a tool_use block on first sight of an upstream
// tool-call index and forwards argument fragments as input_json_delta.
func (c *StreamConverter) emitToolCallDelta(tc openai.ToolCall, yield func(anthropic.StreamEvent) bool) bool {
	tcIndex := 0
	if tc.Index != nil {
		tcIndex = *tc.Index
	}

	call, open := c.toolCalls[tcIndex]
	if !open {
		call = &streamToolCall{id: tc.ID, name: tc.Function.Name}
		c.toolCalls[tcIndex] = call

		index := len(c.blocks)
		c.blocks = append(c.blocks, streamBlock{blockType: anthropic.BlockTypeToolUse, id: tc.ID})
		block := anthropic.ContentBlock{
			Type:  anthropic.BlockTypeToolUse,
			ID:    call.id,
			Name:  call.name,
			Input: map[string]any{},
		}
		if !yield(anthropic.NewContentBlockStartEvent(index, block)) {
			return false
		}
	}

	if tc.Function.Arguments != "" {
		return yield(anthropic.NewInputJSONDeltaEvent(c.toolBlockIndex(call.id), tc.Function.Arguments))
	}
	return true
}

// toolBlockIndex locates the block opened for a tool call id, falling back
// to the last block.
func (c *StreamConverter) toolBlockIndex(id string) int {
	for i, b := range c.blocks {
		if b.blockType == anthropic.BlockTypeToolUse && b.id == id {
			return i
		}
	}
	return len(c.blocks) - 1
}

// finishWithError converts an upstream failure into a terminal error text
// block so the already-committed 200 stream still ends in valid form.
func (c *StreamConverter) finishWithError(yield func(anthropic.StreamEvent) bool, message string) {
	c.failed = true

	index := len(c.blocks)
	text := "Error: " + message
	c.blocks = append(c.blocks, streamBlock{blockType: anthropic.BlockTypeText})

	if !yield(anthropic.NewContentBlockStartEvent(index, anthropic.ContentBlock{Type: anthropic.BlockTypeText, Text: text})) {
		return
	}
	if !yield(anthropic.NewContentBlockStopEvent(index)) {
		return
	}

	usage := anthropic.Usage{}
	if c.usage != nil {
		usage = *c.usage
	}
	if !yield(anthropic.NewMessageDeltaEvent(anthropic.StopReasonError, usage)) {
		return
	}
	yield(anthropic.NewMessageStopEvent())
}

// chunkError inspects a raw chunk for a top-level error object. Only an
// object carrying a message or type field counts; free-form error scalars
// in benign payloads are ignored.
func chunkError(raw []byte) (string, bool) {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Error) == 0 {
		return "", false
	}

	var obj map[string]any
	if err := json.Unmarshal(envelope.Error, &obj); err != nil {
		return "", false
	}
	_, hasMessage := obj["message"]
	_, hasType := obj["type"]
	if !hasMessage && !hasType {
		return "", false
	}

	message := "Unknown error"
	if s, ok := obj["message"].(string); ok && s != "" {
		message = s
	}
	return message, true
}
