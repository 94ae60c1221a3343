package adapter

import (
	"strings"
	"testing"

	"github.com/florianilch/claude-adapter/internal/anthropic"
)

func TestGenerateXMLToolInstructions(t *testing.T) {
	tools := []anthropic.ToolDefinition{{
		Name:        "get_weather",
		Description: "Look up <current> weather",
		InputSchema: map[string]any{"type": "object"},
	}}

	got := generateXMLToolInstructions(tools)

	if !strings.Contains(got, "# TOOL CALLING FORMAT") {
		t.Error("contract header missing")
	}
	if !strings.Contains(got, "- **get_weather**:") {
		t.Error("tool listing missing")
	}
	if !strings.Contains(got, "Look up &lt;current&gt; weather") {
		t.Error("description not escaped")
	}
	if !strings.Contains(got, `"type": "object"`) {
		t.Error("schema not rendered")
	}
}

func TestGenerateXMLToolInstructions_NoTools(t *testing.T) {
	if got := generateXMLToolInstructions(nil); got != "" {
		t.Errorf("instructions without tools = %q", got)
	}
}

func TestHasXMLToolInstructions(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   bool
	}{
		{"full contract", "# TOOL CALLING FORMAT\nuse <tool_code> blocks", true},
		{"header only", "# TOOL CALLING FORMAT", false},
		{"tag only", "<tool_code name=\"x\">", false},
		{"plain prompt", "You are helpful.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasXMLToolInstructions(tt.prompt); got != tt.want {
				t.Errorf("hasXMLToolInstructions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatXMLToolCall(t *testing.T) {
	got := formatXMLToolCall("get_weather", `{"city":"Oslo"}`)
	want := "<tool_code name=\"get_weather\">\n{\"city\":\"Oslo\"}\n</tool_code>"
	if got != want {
		t.Errorf("formatXMLToolCall = %q, want %q", got, want)
	}
}

func TestFormatXMLToolOutput(t *testing.T) {
	got := formatXMLToolOutput("sunny")
	if got != "<tool_output>\nsunny\n</tool_output>" {
		t.Errorf("formatXMLToolOutput = %q", got)
	}
}

func TestMarshalCompact_NoHTMLEscaping(t *testing.T) {
	got := marshalCompact(map[string]any{"q": "a<b>c"})
	if got != `{"q":"a<b>c"}` {
		t.Errorf("marshalCompact = %q", got)
	}
}
