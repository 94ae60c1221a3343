package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/florianilch/claude-adapter/internal/anthropic"
)

const xmlInstructionsHeader = `
# TOOL CALLING FORMAT

You are required to use tools to fetch information or perform actions.
To invoke a tool, you MUST use the following EXACT XML format.
ANY deviation from this format will cause the tool call to fail.

<tool_code name="TOOL_NAME">
{"argument_name": "value"}
</tool_code>

## CRITICAL EXECUTION RULES:
1. **NO Markdown**: Do NOT wrap the XML in ` + "```xml or ```" + ` code blocks. Output the raw XML tags directly.
2. **Valid JSON**: The content between the tags MUST be valid, parseable JSON.
   - Use double quotes for keys and string values.
   - No trailing commas.
   - No comments using // or /*.
3. **Exact Name Match**: The ` + "`name`" + ` attribute MUST match a tool name from the "Available Tools" list exactly (case-sensitive).
4. **No Nested Content**: The JSON parameters must be the direct child of ` + "`tool_code`" + `. Do not nest another ` + "`tool` or `function`" + ` tag inside.
5. **Thinking**: If you need to think or explain your reasoning, do so in text BEFORE the ` + "`<tool_code>`" + ` block. Do NOT put thoughts inside the tool code.
6. **Multiple Tools**: You may call multiple tools in sequence by outputting multiple ` + "`<tool_code>`" + ` blocks.
7. **Tool Outputs**: Tool results will be provided to you in the following format:
<tool_output>
{result_json_or_text}
</tool_output>

## EXAMPLE (Correct):
Thinking: I need to read the file.
<tool_code name="Read">
{"file_path": "src/utils.py"}
</tool_code>

## EXAMPLES (Incorrect - DO NOT USE):
Wrapped in code blocks:
` + "```xml" + `
<tool_code name="Read">...</tool_code>
` + "```" + `

Nested tags:
<tool_code><tool name="Read">...</tool></tool_code>

Invalid JSON (keys not quoted):
<tool_code name="Read">
{file_path: "src/utils.py"}
</tool_code>

## Available Tools:

`

// generateXMLToolInstructions renders the prompt contract that drives tool
// use on backends without native function calling. Returns "" when no tools
// are declared.
func generateXMLToolInstructions(tools []anthropic.ToolDefinition) string {
	if len(tools) == 0 {
		return ""
	}

	defs := make([]string, 0, len(tools))
	for _, tool := range tools {
		schema := marshalIndented(tool.InputSchema)
		defs = append(defs, fmt.Sprintf("- **%s**: %s\n  Parameters: %s",
			tool.Name, html.EscapeString(tool.Description), schema))
	}

	return xmlInstructionsHeader + strings.Join(defs, "\n\n") + "\n"
}

// hasXMLToolInstructions reports whether a system prompt already carries the
// contract, so it is not injected twice.
func hasXMLToolInstructions(systemPrompt string) bool {
	return strings.Contains(systemPrompt, "# TOOL CALLING FORMAT") &&
		strings.Contains(systemPrompt, "<tool_code")
}

// formatXMLToolCall renders an assistant tool invocation in contract form.
func formatXMLToolCall(name, argsJSON string) string {
	return fmt.Sprintf("<tool_code name=%q>\n%s\n</tool_code>", name, argsJSON)
}

// formatXMLToolOutput renders a tool result in contract form for the
// follow-up user turn.
func formatXMLToolOutput(content string) string {
	return "<tool_output>\n" + content + "\n</tool_output>"
}

// marshalIndented serializes v as two-space-indented JSON without HTML
// escaping, matching how schemas read in a prompt.
func marshalIndented(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// marshalCompact serializes v as compact JSON without HTML escaping.
func marshalCompact(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}
