// Package adapter translates between the Anthropic Messages API and the
// OpenAI Chat Completions API in both directions: requests out, buffered
// responses and SSE streams back.
package adapter

import (
	"strings"

	"github.com/florianilch/claude-adapter/internal/anthropic"
)

// Tool invocation formats supported by the translator.
const (
	// ToolFormatNative uses the upstream's function-calling API.
	ToolFormatNative = "native"
	// ToolFormatXML drives tool use through a prompt contract for backends
	// without native function calling.
	ToolFormatXML = "xml"
)

// ModelMap holds the concrete upstream model for each Anthropic tier.
type ModelMap struct {
	Opus   string
	Sonnet string
	Haiku  string
}

// ResolveModel maps a requested Anthropic model name to the concrete
// upstream model. Tier substrings select the configured tier model; any
// other name passes through unchanged.
func ResolveModel(requested string, models ModelMap) string {
	name := strings.ToLower(requested)
	switch {
	case strings.Contains(name, "opus") && models.Opus != "":
		return models.Opus
	case strings.Contains(name, "sonnet") && models.Sonnet != "":
		return models.Sonnet
	case strings.Contains(name, "haiku") && models.Haiku != "":
		return models.Haiku
	default:
		return requested
	}
}

// DetectToolFormat picks the tool format for one request. Requests without
// tools always run in native mode so the prompt contract is never injected
// needlessly.
func DetectToolFormat(configured string, tools []anthropic.ToolDefinition) string {
	if len(tools) == 0 {
		return ToolFormatNative
	}
	if configured == ToolFormatXML {
		return ToolFormatXML
	}
	return ToolFormatNative
}
