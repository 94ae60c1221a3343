package adapter

import "github.com/florianilch/claude-adapter/internal/upstream"

// contextReserveTokens is held back from the window for request framing.
const contextReserveTokens = 256

const truncationMarker = "\n[... truncated ...]"

// estimateTokens is a conservative characters-to-tokens heuristic of about
// 2.5 characters per token. Deterministic and dependency-free on purpose;
// fitting decisions must not vary across runs or tokenizer versions.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return max(1, (len(text)*2+1)/5)
}

// estimateMessageTokens estimates the token cost of one upstream message.
func estimateMessageTokens(msg upstream.ChatMessage) int {
	if msg.Content == nil {
		return 0
	}
	return estimateTokens(*msg.Content)
}

// truncateTextToTokens cuts text so its estimate fits maxTokens, using the
// stricter 2 chars/token ratio, and appends a visible marker.
func truncateTextToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	maxChars := maxTokens * 2
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + truncationMarker
}

// fitMessages shapes the message sequence to an estimated prompt budget.
// System messages are kept (truncating the last one when they alone blow the
// budget); the oldest non-system messages are dropped until the most recent
// suffix fits. Order within each group is preserved.
func fitMessages(messages []upstream.ChatMessage, maxPromptTokens int) []upstream.ChatMessage {
	total := 0
	for _, m := range messages {
		total += estimateMessageTokens(m)
	}
	if total <= maxPromptTokens {
		return messages
	}

	var systemMsgs, rest []upstream.ChatMessage
	for _, m := range messages {
		if m.Role == "system" {
			systemMsgs = append(systemMsgs, m)
		} else {
			rest = append(rest, m)
		}
	}

	systemTokens := 0
	for _, m := range systemMsgs {
		systemTokens += estimateMessageTokens(m)
	}
	budgetRest := max(0, maxPromptTokens-systemTokens)

	if budgetRest <= 0 && len(systemMsgs) > 0 {
		systemBudget := max(256, maxPromptTokens-512)
		var combined []upstream.ChatMessage
		running := 0
		for _, m := range systemMsgs {
			t := estimateMessageTokens(m)
			if m.Content == nil {
				combined = append(combined, m)
				running += t
				continue
			}
			if running+t <= systemBudget {
				combined = append(combined, m)
				running += t
				continue
			}
			allowed := max(0, systemBudget-running)
			truncated := truncateTextToTokens(*m.Content, allowed)
			combined = append(combined, upstream.ChatMessage{Role: m.Role, Content: &truncated})
			running += estimateTokens(truncated)
			break
		}
		budgetAfter := max(0, maxPromptTokens-running)
		return append(combined, keepSuffix(rest, budgetAfter)...)
	}

	if budgetRest <= 0 {
		if len(systemMsgs) > 0 {
			return systemMsgs
		}
		return messages[:1]
	}

	return append(systemMsgs, keepSuffix(rest, budgetRest)...)
}

// keepSuffix retains the longest trailing run of messages whose combined
// estimate fits the budget.
func keepSuffix(messages []upstream.ChatMessage, budget int) []upstream.ChatMessage {
	running := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		t := estimateMessageTokens(messages[i])
		if running+t > budget {
			break
		}
		running += t
		start = i
	}
	return messages[start:]
}
