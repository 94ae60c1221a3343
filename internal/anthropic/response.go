package anthropic

// Stop reasons reported in MessageResponse and message_delta events.
const (
	StopReasonEndTurn      = "end_turn"
	StopReasonMaxTokens    = "max_tokens"
	StopReasonStopSequence = "stop_sequence"
	StopReasonToolUse      = "tool_use"
	StopReasonError        = "error"
)

// MessageResponse is an Anthropic Messages API response body.
type MessageResponse struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Content      []ContentBlock `json:"content"`
	Model        string         `json:"model"`
	StopReason   *string        `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        Usage          `json:"usage"`
}

// Usage is Anthropic-shaped token accounting.
type Usage struct {
	InputTokens          int  `json:"input_tokens"`
	OutputTokens         int  `json:"output_tokens"`
	CacheReadInputTokens *int `json:"cache_read_input_tokens,omitempty"`
}

// StreamEvent is one event of the Anthropic streaming protocol. EventType
// returns the SSE event name; the value itself is the data payload.
type StreamEvent interface {
	EventType() string
}

// MessageStartEvent opens every stream with a skeletal message.
type MessageStartEvent struct {
	Type    string          `json:"type"`
	Message MessageResponse `json:"message"`
}

func (MessageStartEvent) EventType() string { return "message_start" }

// NewMessageStartEvent builds the skeletal message_start payload carrying
// the request ID and echoed model with empty content and zero usage.
func NewMessageStartEvent(requestID, model string) MessageStartEvent {
	return MessageStartEvent{
		Type: "message_start",
		Message: MessageResponse{
			ID:      requestID,
			Type:    "message",
			Role:    "assistant",
			Content: []ContentBlock{},
			Model:   model,
		},
	}
}

// ContentBlockStartEvent opens a content block at a stream index.
type ContentBlockStartEvent struct {
	Type         string       `json:"type"`
	Index        int          `json:"index"`
	ContentBlock ContentBlock `json:"content_block"`
}

func (ContentBlockStartEvent) EventType() string { return "content_block_start" }

// NewContentBlockStartEvent wraps a block for emission at the given index.
func NewContentBlockStartEvent(index int, block ContentBlock) ContentBlockStartEvent {
	return ContentBlockStartEvent{Type: "content_block_start", Index: index, ContentBlock: block}
}

// ContentBlockDeltaEvent carries incremental content for an open block.
type ContentBlockDeltaEvent struct {
	Type  string     `json:"type"`
	Index int        `json:"index"`
	Delta BlockDelta `json:"delta"`
}

func (ContentBlockDeltaEvent) EventType() string { return "content_block_delta" }

// BlockDelta is either a text_delta (Text set) or an input_json_delta
// (PartialJSON set).
type BlockDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
}

// NewTextDeltaEvent emits a text fragment for the block at index.
func NewTextDeltaEvent(index int, text string) ContentBlockDeltaEvent {
	return ContentBlockDeltaEvent{
		Type:  "content_block_delta",
		Index: index,
		Delta: BlockDelta{Type: "text_delta", Text: text},
	}
}

// NewInputJSONDeltaEvent emits a tool-argument fragment for the block at
// index. Fragments are arbitrary substrings of the final JSON document and
// are concatenated by the consumer.
func NewInputJSONDeltaEvent(index int, partial string) ContentBlockDeltaEvent {
	return ContentBlockDeltaEvent{
		Type:  "content_block_delta",
		Index: index,
		Delta: BlockDelta{Type: "input_json_delta", PartialJSON: partial},
	}
}

// ContentBlockStopEvent closes the block at a stream index.
type ContentBlockStopEvent struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

func (ContentBlockStopEvent) EventType() string { return "content_block_stop" }

// NewContentBlockStopEvent closes the block at index.
func NewContentBlockStopEvent(index int) ContentBlockStopEvent {
	return ContentBlockStopEvent{Type: "content_block_stop", Index: index}
}

// MessageDeltaEvent carries the final stop reason and usage.
type MessageDeltaEvent struct {
	Type  string       `json:"type"`
	Delta MessageDelta `json:"delta"`
	Usage Usage        `json:"usage"`
}

func (MessageDeltaEvent) EventType() string { return "message_delta" }

// MessageDelta is the delta body of a message_delta event.
type MessageDelta struct {
	StopReason   string  `json:"stop_reason"`
	StopSequence *string `json:"stop_sequence"`
}

// NewMessageDeltaEvent builds the terminal message_delta payload.
func NewMessageDeltaEvent(stopReason string, usage Usage) MessageDeltaEvent {
	return MessageDeltaEvent{
		Type:  "message_delta",
		Delta: MessageDelta{StopReason: stopReason},
		Usage: usage,
	}
}

// MessageStopEvent terminates every stream.
type MessageStopEvent struct {
	Type string `json:"type"`
}

func (MessageStopEvent) EventType() string { return "message_stop" }

// NewMessageStopEvent builds the terminal message_stop payload.
func NewMessageStopEvent() MessageStopEvent {
	return MessageStopEvent{Type: "message_stop"}
}
