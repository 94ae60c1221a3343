package adapter

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/florianilch/claude-adapter/internal/anthropic"
)

// convertTools maps Anthropic tool definitions to OpenAI function tools.
func convertTools(tools []anthropic.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		})
	}
	return out
}

// convertToolChoice maps an Anthropic tool_choice to the OpenAI form:
// "auto" stays "auto", "any" becomes "required", a specific tool becomes a
// function selector. Anything unrecognized falls back to "auto".
func convertToolChoice(choice *anthropic.ToolChoice) any {
	if choice == nil {
		return nil
	}
	switch choice.Type {
	case "auto":
		return "auto"
	case "any":
		return "required"
	case "tool":
		if choice.Name != "" {
			return openai.ToolChoice{
				Type:     openai.ToolTypeFunction,
				Function: openai.ToolFunction{Name: choice.Name},
			}
		}
		return "auto"
	default:
		return "auto"
	}
}

// idDedupContext rewrites duplicate tool_use ids within one request so that
// every translated tool_call_id is unique. Upstreams reject conversations
// reusing an id. State lives for a single translation only.
type idDedupContext struct {
	seen        map[string]struct{}
	idMappings  map[string][]string
	resultIndex map[string]int
}

func newIDDedupContext() *idDedupContext {
	return &idDedupContext{
		seen:        make(map[string]struct{}),
		idMappings:  make(map[string][]string),
		resultIndex: make(map[string]int),
	}
}

// dedupToolUseID returns the id to use for an assistant tool_use block.
// The first occurrence of an id keeps it; later occurrences get a fresh id
// of matching length, recorded so the corresponding tool_result can find it.
func (c *idDedupContext) dedupToolUseID(id string) string {
	if _, ok := c.seen[id]; !ok {
		c.seen[id] = struct{}{}
		c.idMappings[id] = []string{id}
		return id
	}
	replacement := c.freshID(id)
	c.seen[replacement] = struct{}{}
	c.idMappings[id] = append(c.idMappings[id], replacement)
	return replacement
}

// resolveToolResultID returns the tool_call_id for a tool_result referencing
// the original id. The N-th result for an id consumes the N-th mapping, so
// results pair with their deduplicated tool_use in order.
func (c *idDedupContext) resolveToolResultID(id string) string {
	mapping, ok := c.idMappings[id]
	if !ok || len(mapping) == 0 {
		return id
	}
	idx := c.resultIndex[id] % len(mapping)
	c.resultIndex[id]++
	return mapping[idx]
}

// freshID generates a replacement id of the same length as the original,
// preserving the vendor prefix of longer ids so the replacement still looks
// like a sibling of the original.
func (c *idDedupContext) freshID(original string) string {
	const randomizedSuffix = 8
	length := len(original)
	if length == 0 {
		length = 24
	}
	for {
		var candidate string
		if length > 11 {
			candidate = original[:length-randomizedSuffix] + anthropic.RandomToken(randomizedSuffix)
		} else {
			candidate = anthropic.RandomToken(length)
		}
		if _, taken := c.seen[candidate]; !taken && candidate != original {
			return candidate
		}
	}
}
