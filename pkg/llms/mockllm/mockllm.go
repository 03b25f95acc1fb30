// Package mockllm provides a scripted Model for tests and offline runs.
package mockllm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/toolchat-ai/toolchat/pkg/llms"
)

// Model replays a scripted sequence of responses. Each GenerateContent call
// consumes the next response; when the script is exhausted the model echoes
// the last user message.
type Model struct {
	mu        sync.Mutex
	name      string
	responses []*llms.ContentResponse
	err       error
	calls     int
	recorded  [][]llms.Message
}

var _ llms.Model = (*Model)(nil)

// New creates a scripted model.
func New(name string) *Model {
	if name == "" {
		name = "mock-model"
	}
	return &Model{name: name}
}

// WithResponses appends responses to the script.
func (m *Model) WithResponses(responses ...*llms.ContentResponse) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
	return m
}

// WithError makes every subsequent call fail with err.
func (m *Model) WithError(err error) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Calls returns the number of GenerateContent invocations.
func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastMessages returns the message payload of the most recent call.
func (m *Model) LastMessages() []llms.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.recorded) == 0 {
		return nil
	}
	return m.recorded[len(m.recorded)-1]
}

// GetName implements the Model interface.
func (m *Model) GetName() string {
	return m.name
}

// GetProviderType implements the Model interface.
func (m *Model) GetProviderType() llms.ProviderType {
	return llms.ProviderMock
}

// GenerateContent implements the [llms.Model] interface.
func (m *Model) GenerateContent(ctx context.Context, messages []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.recorded = append(m.recorded, messages)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) > 0 {
		resp := m.responses[0]
		m.responses = m.responses[1:]
		return resp, nil
	}

	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llms.RoleUser {
			last = messages[i].GetContent()
			break
		}
	}
	return llms.TextResponse("echo: " + last), nil
}
