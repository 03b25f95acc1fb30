package llms

import (
	"context"
)

//go:generate mockgen -destination=../../mocks/mockllms/llm_mock.gen.go -package mockllms github.com/toolchat-ai/toolchat/pkg/llms Model

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderGoogleAI is the type of provider.
	ProviderGoogleAI ProviderType = "GOOGLEAI"
	// ProviderMock is the type of provider, used in tests and offline runs.
	ProviderMock ProviderType = "MOCK"
)

// Model is the interface the orchestrator uses to talk to a model provider.
// A provider receives the conversation history, the new utterance and the
// tool declarations, and replies with an ordered fragment sequence.
type Model interface {
	// GetName returns the default model name used by the provider.
	GetName() string
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// GenerateContent asks the model to generate content from a sequence of
	// messages. The response fragments preserve the order in which the model
	// emitted text and tool-call requests.
	GenerateContent(ctx context.Context, messages []Message, options ...CallOption) (*ContentResponse, error)
}

// Capability is a bitmask indicating supported features of an LLM provider.
type Capability uint64

const (
	// Basic text or chat generation
	CapabilityText Capability = 1 << iota

	// Function/tool calling
	CapabilityFunctionCalling
	CapabilityMultiToolCalling

	// System prompt support
	CapabilitySystemPrompt
)

var providerCapabilities = map[ProviderType]Capability{
	ProviderGoogleAI: CapabilityText |
		CapabilitySystemPrompt |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling,

	ProviderMock: CapabilityText |
		CapabilitySystemPrompt |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling,
}

func ProviderCapabilities(pt ProviderType) Capability {
	return providerCapabilities[pt]
}

func (p ProviderType) Supports(cap Capability) bool {
	return ProviderCapabilities(p)&cap != 0
}
