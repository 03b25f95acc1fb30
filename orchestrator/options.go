package orchestrator

import (
	"time"

	"github.com/toolchat-ai/toolchat/pkg/llms"
	"github.com/toolchat-ai/toolchat/pkg/prompts"
)

// Option is a function that can be used to modify the behavior of the Orchestrator Config.
type Option func(*Config)

type Config struct {
	// SystemPrompt is prepended to every provider call. Empty means no
	// system message is sent.
	SystemPrompt string

	// Model is the model to use in an LLM call.
	Model    string
	modelSet bool

	// MaxTokens is the maximum number of tokens to generate to use in an LLM call.
	MaxTokens    int
	maxTokensSet bool

	// Temperature is the temperature for sampling to use in an LLM call, between 0 and 1.
	Temperature    float64
	temperatureSet bool

	// ToolTimeout bounds the execution of a single tool call.
	// Zero means no per-tool deadline.
	ToolTimeout time.Duration

	// CallbackHandler receives turn and tool dispatch events.
	CallbackHandler Callback
}

func NewConfig(opts ...Option) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithSystemPrompt sets the system prompt sent on every turn.
func WithSystemPrompt(prompt string) Option {
	return func(o *Config) {
		o.SystemPrompt = prompt
	}
}

// WithSystemPromptTemplate renders the template at construction and uses the
// result as the system prompt. Intended for static prompts wired at startup,
// a malformed template or missing input panics.
func WithSystemPromptTemplate(tmpl *prompts.PromptTemplate, inputs map[string]any) Option {
	return func(o *Config) {
		o.SystemPrompt = tmpl.MustFormat(inputs)
	}
}

// WithModel is an option for LLM.Call.
func WithModel(model string) Option {
	return func(o *Config) {
		o.Model = model
		o.modelSet = true
	}
}

// WithMaxTokens is an option for LLM.Call.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Config) {
		o.MaxTokens = maxTokens
		o.maxTokensSet = true
	}
}

// WithTemperature is an option for LLM.Call.
func WithTemperature(temperature float64) Option {
	return func(o *Config) {
		o.Temperature = temperature
		o.temperatureSet = true
	}
}

// WithToolTimeout bounds the execution of each tool call.
func WithToolTimeout(timeout time.Duration) Option {
	return func(o *Config) {
		o.ToolTimeout = timeout
	}
}

// WithCallback allows setting a custom Callback Handler.
func WithCallback(callbackHandler Callback) Option {
	return func(o *Config) {
		o.CallbackHandler = callbackHandler
	}
}

func (c *Config) GetCallOptions(options ...llms.CallOption) []llms.CallOption {
	var callOptions []llms.CallOption
	if c.modelSet {
		callOptions = append(callOptions, llms.WithModel(c.Model))
	}
	if c.maxTokensSet {
		callOptions = append(callOptions, llms.WithMaxTokens(c.MaxTokens))
	}
	if c.temperatureSet {
		callOptions = append(callOptions, llms.WithTemperature(c.Temperature))
	}
	callOptions = append(callOptions, options...)
	return callOptions
}
