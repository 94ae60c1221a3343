// Package providers carries the preset catalog for known
// OpenAI-compatible upstream endpoints. Presets seed configuration
// defaults; every field can be overridden in the config file.
package providers

// Preset describes one known upstream endpoint.
type Preset struct {
	Name           string
	Label          string
	BaseURL        string
	APIKeyRequired bool
	// DefaultModels maps the three Anthropic tiers to upstream models.
	DefaultModels ModelDefaults
	// DefaultToolFormat is "native" or "xml".
	DefaultToolFormat string
	// MaxContextWindow limits request shaping; 0 means unbounded.
	MaxContextWindow int
}

// ModelDefaults holds the per-tier default model names.
type ModelDefaults struct {
	Opus   string
	Sonnet string
	Haiku  string
}

// LM Studio servers commonly run models loaded at a 4096-token context
// even when the model supports more, so fitting defaults to that.
const LMStudioDefaultContextWindow = 4096

var presets = map[string]Preset{
	"nvidia": {
		Name:           "nvidia",
		Label:          "NVIDIA NIM",
		BaseURL:        "https://integrate.api.nvidia.com/v1",
		APIKeyRequired: true,
		DefaultModels: ModelDefaults{
			Opus:   "minimaxai/minimax-m2.1",
			Sonnet: "minimaxai/minimax-m2.1",
			Haiku:  "minimaxai/minimax-m2.1",
		},
		DefaultToolFormat: "native",
	},
	"ollama": {
		Name:    "ollama",
		Label:   "Ollama",
		BaseURL: "http://localhost:11434/v1",
		DefaultModels: ModelDefaults{
			Opus:   "kimi-k2.5:cloud",
			Sonnet: "kimi-k2.5:cloud",
			Haiku:  "kimi-k2.5:cloud",
		},
		DefaultToolFormat: "native",
		MaxContextWindow:  8192,
	},
	"lmstudio": {
		Name:    "lmstudio",
		Label:   "LM Studio",
		BaseURL: "http://localhost:1234/v1",
		DefaultModels: ModelDefaults{
			Opus:   "zai-org/glm-4.7-flash",
			Sonnet: "zai-org/glm-4.7-flash",
			Haiku:  "zai-org/glm-4.7-flash",
		},
		DefaultToolFormat: "native",
		MaxContextWindow:  LMStudioDefaultContextWindow,
	},
	"deepseek": {
		Name:           "deepseek",
		Label:          "DeepSeek",
		BaseURL:        "https://api.deepseek.com/v1",
		APIKeyRequired: true,
		DefaultModels: ModelDefaults{
			Opus:   "deepseek-chat",
			Sonnet: "deepseek-chat",
			Haiku:  "deepseek-chat",
		},
		DefaultToolFormat: "native",
	},
	"custom": {
		Name:           "custom",
		Label:          "Custom OpenAI-compatible",
		BaseURL:        "https://api.openai.com/v1",
		APIKeyRequired: true,
		DefaultModels: ModelDefaults{
			Opus:   "gpt-4o",
			Sonnet: "gpt-4o",
			Haiku:  "gpt-4o-mini",
		},
		DefaultToolFormat: "native",
	},
}

// Get returns the preset for name.
func Get(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// Names returns the preset names, usable in a config validation tag.
func Names() []string {
	return []string{"nvidia", "ollama", "lmstudio", "deepseek", "custom"}
}
