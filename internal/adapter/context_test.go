package adapter

import (
	"strings"
	"testing"

	"github.com/florianilch/claude-adapter/internal/upstream"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"hello", 2},
		{strings.Repeat("x", 10), 4},
		{strings.Repeat("x", 1000), 400},
	}
	for _, tt := range tests {
		if got := estimateTokens(tt.text); got != tt.want {
			t.Errorf("estimateTokens(len %d) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestTruncateTextToTokens(t *testing.T) {
	if got := truncateTextToTokens("abcdef", 2); got != "abcd"+truncationMarker {
		t.Errorf("truncated = %q", got)
	}
	if got := truncateTextToTokens("short", 100); got != "short" {
		t.Errorf("fitting text altered: %q", got)
	}
	if got := truncateTextToTokens("anything", 0); got != "" {
		t.Errorf("zero budget = %q, want empty", got)
	}
}

func TestFitMessages_WithinBudget(t *testing.T) {
	msgs := []upstream.ChatMessage{
		upstream.NewChatMessage("user", "hello"),
		upstream.NewChatMessage("assistant", "hi"),
	}
	got := fitMessages(msgs, 1000)
	if len(got) != 2 {
		t.Errorf("messages dropped within budget: %d", len(got))
	}
}

func TestFitMessages_DropsOldest(t *testing.T) {
	long := strings.Repeat("x", 300) // 120 tokens
	msgs := []upstream.ChatMessage{
		upstream.NewChatMessage("user", long),
		upstream.NewChatMessage("assistant", strings.Repeat("y", 200)), // 80 tokens
	}

	got := fitMessages(msgs, 100)
	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	if got[0].Role != "assistant" {
		t.Errorf("kept %q, want the most recent message", got[0].Role)
	}
}

func TestFitMessages_SystemSurvives(t *testing.T) {
	msgs := []upstream.ChatMessage{
		upstream.NewChatMessage("system", strings.Repeat("s", 100)), // 40 tokens
		upstream.NewChatMessage("user", strings.Repeat("a", 500)),   // 200 tokens
		upstream.NewChatMessage("user", strings.Repeat("b", 100)),   // 40 tokens
	}

	got := fitMessages(msgs, 100)
	if len(got) != 2 {
		t.Fatalf("got %d messages, want system + newest user", len(got))
	}
	if got[0].Role != "system" {
		t.Errorf("first kept message = %q, want system", got[0].Role)
	}
	if !strings.HasPrefix(*got[1].Content, "b") {
		t.Errorf("kept the wrong user message: %q", *got[1].Content)
	}
}

func TestFitMessages_OversizedSystemTruncated(t *testing.T) {
	huge := strings.Repeat("s", 2000) // 800 tokens
	msgs := []upstream.ChatMessage{
		upstream.NewChatMessage("system", huge),
		upstream.NewChatMessage("user", strings.Repeat("u", 100)), // 40 tokens
	}

	got := fitMessages(msgs, 300)
	if len(got) < 1 || got[0].Role != "system" {
		t.Fatalf("system message lost: %+v", got)
	}
	system := *got[0].Content
	if !strings.HasSuffix(system, truncationMarker) {
		t.Errorf("oversized system not truncated: len %d", len(system))
	}
	if len(system) >= len(huge) {
		t.Error("system not shortened")
	}
	if got[len(got)-1].Role != "user" {
		t.Errorf("recent user message dropped: %+v", got)
	}
}

func TestFitMessages_ZeroBudgetKeepsFirst(t *testing.T) {
	msgs := []upstream.ChatMessage{
		upstream.NewChatMessage("user", "first"),
		upstream.NewChatMessage("user", "second"),
	}
	got := fitMessages(msgs, 0)
	if len(got) != 1 || *got[0].Content != "first" {
		t.Errorf("zero budget result = %+v", got)
	}
}

func TestKeepSuffix(t *testing.T) {
	msgs := []upstream.ChatMessage{
		upstream.NewChatMessage("user", strings.Repeat("a", 100)), // 40 tokens
		upstream.NewChatMessage("user", strings.Repeat("b", 100)), // 40 tokens
		upstream.NewChatMessage("user", strings.Repeat("c", 100)), // 40 tokens
	}

	got := keepSuffix(msgs, 85)
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if !strings.HasPrefix(*got[0].Content, "b") {
		t.Errorf("suffix starts at %q", *got[0].Content)
	}

	if got := keepSuffix(msgs, 10); len(got) != 0 {
		t.Errorf("tiny budget kept %d messages", len(got))
	}
}
