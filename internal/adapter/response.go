package adapter

import (
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"

	"github.com/florianilch/claude-adapter/internal/anthropic"
)

// ConvertResponse maps a buffered upstream completion to an Anthropic
// message response. requestedModel is the client's original model name,
// which is echoed regardless of what the upstream served.
func ConvertResponse(resp *openai.ChatCompletionResponse, requestedModel string) anthropic.MessageResponse {
	out := anthropic.MessageResponse{
		ID:      "msg_" + resp.ID,
		Type:    "message",
		Role:    "assistant",
		Content: []anthropic.ContentBlock{},
		Model:   requestedModel,
		Usage:   convertUsage(resp.Usage),
	}

	if len(resp.Choices) == 0 {
		return out
	}
	choice := resp.Choices[0]

	if choice.Message.Content != "" {
		out.Content = append(out.Content, anthropic.ContentBlock{
			Type: anthropic.BlockTypeText,
			Text: choice.Message.Content,
		})
	}
	for _, tc := range choice.Message.ToolCalls {
		out.Content = append(out.Content, toolCallToBlock(tc))
	}

	out.StopReason = mapFinishReason(string(choice.FinishReason))
	return out
}

// toolCallToBlock parses the tool call's argument string into a tool_use
// block. Unparseable arguments are preserved under a "raw" key instead of
// failing the request.
func toolCallToBlock(tc openai.ToolCall) anthropic.ContentBlock {
	var input map[string]any
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil || input == nil {
		input = map[string]any{"raw": tc.Function.Arguments}
	}
	return anthropic.ContentBlock{
		Type:  anthropic.BlockTypeToolUse,
		ID:    tc.ID,
		Name:  tc.Function.Name,
		Input: input,
	}
}

// mapFinishReason maps an upstream finish_reason to an Anthropic
// stop_reason. The mapping is total: any unrecognized reason becomes
// end_turn, and only an absent reason yields null.
func mapFinishReason(finishReason string) *string {
	if finishReason == "" || finishReason == "null" {
		return nil
	}
	var reason string
	switch finishReason {
	case "stop":
		reason = anthropic.StopReasonEndTurn
	case "length":
		reason = anthropic.StopReasonMaxTokens
	case "tool_calls":
		reason = anthropic.StopReasonToolUse
	case "content_filter":
		reason = anthropic.StopReasonEndTurn
	default:
		reason = anthropic.StopReasonEndTurn
	}
	return &reason
}

func convertUsage(usage openai.Usage) anthropic.Usage {
	out := anthropic.Usage{
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
	}
	if usage.PromptTokensDetails != nil {
		cached := usage.PromptTokensDetails.CachedTokens
		out.CacheReadInputTokens = &cached
	}
	return out
}
