package adapter

import (
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/florianilch/claude-adapter/internal/anthropic"
	"github.com/florianilch/claude-adapter/internal/upstream"
)

// claudeCodeIdentifier is the one piece of system prompt text that gets
// rewritten, so the model introduces the gateway rather than claiming to be
// the hosted product.
const claudeCodeIdentifier = "You are Claude Code, Anthropic's official CLI for Claude."

const adapterIdentifier = "You are Claude Code, running on Claude Adapter. " +
	"When introducing yourself, mention Claude Adapter."

// ConvertRequest builds the upstream chat request from a validated Messages
// API request. targetModel is the resolved concrete model, toolFormat the
// per-request tool format, and maxContextWindow the finite window to fit
// into (0 disables fitting).
func ConvertRequest(req *anthropic.MessageRequest, targetModel, toolFormat string, maxContextWindow int) upstream.ChatRequest {
	var messages []upstream.ChatMessage

	if system := req.System.Text(); system != "" {
		system = strings.ReplaceAll(system, claudeCodeIdentifier, adapterIdentifier)
		messages = append(messages, upstream.NewChatMessage("system", system))
	}

	if toolFormat == ToolFormatXML && len(req.Tools) > 0 {
		instructions := generateXMLToolInstructions(req.Tools)
		if len(messages) > 0 && messages[0].Role == "system" {
			if !hasXMLToolInstructions(*messages[0].Content) {
				combined := *messages[0].Content + "\n\n" + instructions
				messages[0].Content = &combined
			}
		} else {
			messages = append([]upstream.ChatMessage{upstream.NewChatMessage("system", instructions)}, messages...)
		}
	}

	dedup := newIDDedupContext()
	for _, msg := range req.Messages {
		messages = append(messages, convertMessage(msg, dedup, toolFormat)...)
	}

	maxTokens := req.MaxTokens
	// Some upstreams reject max_tokens=1 outright.
	if maxTokens == 1 {
		maxTokens = 32
	}

	if maxContextWindow > 0 {
		capTokens := max(256, maxContextWindow-contextReserveTokens)
		if maxTokens > capTokens {
			maxTokens = capTokens
		}
		maxPrompt := max(0, maxContextWindow-maxTokens-contextReserveTokens)
		messages = fitMessages(messages, maxPrompt)
	}

	out := upstream.ChatRequest{
		Model:     targetModel,
		Messages:  messages,
		MaxTokens: maxTokens,
		Stream:    req.Stream,
	}
	if req.Stream {
		out.StreamOptions = &upstream.StreamOptions{IncludeUsage: true}
	}
	if req.Temperature != nil {
		out.Temperature = req.Temperature
	}
	if toolFormat == ToolFormatXML {
		// Tool-prompt emulation needs deterministic output.
		zero := 0.0
		out.Temperature = &zero
	}
	if req.TopP != nil {
		out.TopP = req.TopP
	}
	if len(req.StopSequences) > 0 {
		out.Stop = req.StopSequences
	}
	if toolFormat == ToolFormatNative && len(req.Tools) > 0 {
		out.Tools = convertTools(req.Tools)
	}
	if toolFormat == ToolFormatNative && req.ToolChoice != nil {
		out.ToolChoice = convertToolChoice(req.ToolChoice)
	}

	return out
}

// convertMessage flattens one Anthropic message into zero or more upstream
// messages. Tool results become separate tool-role messages in native mode
// and inline <tool_output> text in XML mode; assistant tool_use blocks
// become tool_calls in native mode and inline <tool_code> text in XML mode.
func convertMessage(msg anthropic.Message, dedup *idDedupContext, toolFormat string) []upstream.ChatMessage {
	switch msg.Role {
	case "user":
		return convertUserMessage(msg, dedup, toolFormat)
	case "assistant":
		return convertAssistantMessage(msg, dedup, toolFormat)
	default:
		return nil
	}
}

func convertUserMessage(msg anthropic.Message, dedup *idDedupContext, toolFormat string) []upstream.ChatMessage {
	if msg.Content.IsString {
		return []upstream.ChatMessage{upstream.NewChatMessage("user", msg.Content.Text)}
	}

	var textParts []string
	type toolResult struct {
		id      string
		content string
	}
	var results []toolResult
	for _, block := range msg.Content.Blocks {
		switch block.Type {
		case anthropic.BlockTypeText:
			textParts = append(textParts, block.Text)
		case anthropic.BlockTypeToolResult:
			results = append(results, toolResult{id: block.ToolUseID, content: block.Content.String()})
		}
	}

	var out []upstream.ChatMessage
	if toolFormat == ToolFormatXML {
		for _, r := range results {
			textParts = append(textParts, formatXMLToolOutput(r.content))
		}
		if len(textParts) > 0 {
			out = append(out, upstream.NewChatMessage("user", strings.Join(textParts, "\n")))
		}
		return out
	}

	if len(textParts) > 0 {
		out = append(out, upstream.NewChatMessage("user", strings.Join(textParts, "\n")))
	}
	for _, r := range results {
		content := r.content
		out = append(out, upstream.ChatMessage{
			Role:       "tool",
			Content:    &content,
			ToolCallID: dedup.resolveToolResultID(r.id),
		})
	}
	return out
}

func convertAssistantMessage(msg anthropic.Message, dedup *idDedupContext, toolFormat string) []upstream.ChatMessage {
	if msg.Content.IsString {
		if isAssistantPrefill(msg.Content.Text) {
			return nil
		}
		return []upstream.ChatMessage{upstream.NewChatMessage("assistant", msg.Content.Text)}
	}

	var textParts []string
	var toolCalls []toolCallParts
	for _, block := range msg.Content.Blocks {
		switch block.Type {
		case anthropic.BlockTypeText:
			textParts = append(textParts, block.Text)
		case anthropic.BlockTypeToolUse:
			input := block.Input
			if input == nil {
				input = map[string]any{}
			}
			toolCalls = append(toolCalls, toolCallParts{
				id:   dedup.dedupToolUseID(block.ID),
				name: block.Name,
				args: marshalCompact(input),
			})
		}
	}

	if toolFormat == ToolFormatXML {
		for _, tc := range toolCalls {
			textParts = append(textParts, formatXMLToolCall(tc.name, tc.args))
		}
		if len(textParts) == 0 {
			return nil
		}
		return []upstream.ChatMessage{upstream.NewChatMessage("assistant", strings.Join(textParts, "\n"))}
	}

	content := strings.Join(textParts, "\n")
	if len(toolCalls) > 0 {
		out := upstream.ChatMessage{Role: "assistant", ToolCalls: openAIToolCalls(toolCalls)}
		if content != "" {
			out.Content = &content
		}
		return []upstream.ChatMessage{out}
	}
	if content == "" {
		return nil
	}
	return []upstream.ChatMessage{upstream.NewChatMessage("assistant", content)}
}

type toolCallParts struct {
	id   string
	name string
	args string
}

func openAIToolCalls(calls []toolCallParts) []openai.ToolCall {
	out := make([]openai.ToolCall, 0, len(calls))
	for _, tc := range calls {
		out = append(out, openai.ToolCall{
			ID:   tc.id,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.name,
				Arguments: tc.args,
			},
		})
	}
	return out
}

// prefillTokens are short assistant seeds that several upstreams reject.
var prefillTokens = map[string]struct{}{
	"{": {}, "[": {}, "```": {}, `{"`: {}, "[{": {}, "<": {},
	"<tool_code": {}, "<tool_code>": {},
}

// isAssistantPrefill reports whether a trailing assistant string is a
// prefill seed rather than real content. Upstreams do not support prefill,
// so these are dropped.
func isAssistantPrefill(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= 2 {
		return true
	}
	if _, ok := prefillTokens[trimmed]; ok {
		return true
	}
	if strings.HasPrefix(trimmed, "<tool_code") && !strings.Contains(trimmed, "</tool_code>") {
		return true
	}
	return false
}
