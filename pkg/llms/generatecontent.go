package llms

import (
	"fmt"
	"strings"
)

// Role is the type of chat message.
type Role string

const (
	// RoleUser is a message sent by the user.
	RoleUser Role = "user"
	// RoleModel is a message sent by the model.
	RoleModel Role = "model"
	// RoleSystem is the system prompt, sent once at the head of the
	// message sequence.
	RoleSystem Role = "system"
)

// Message is one message sent to a model provider. It has a role and a
// sequence of text parts; tool activity is never sent back as raw parts,
// the orchestrator folds tool results into text before they reach history.
type Message struct {
	Role  Role     `json:"role"`
	Parts []string `json:"parts"`
}

// MessageFromText creates a Message with a role and a list of text parts.
func MessageFromText(role Role, parts ...string) Message {
	return Message{
		Role:  role,
		Parts: parts,
	}
}

// GetContent joins the message parts into a single string.
func (m Message) GetContent() string {
	return strings.Join(m.Parts, "\n")
}

// Fragment is one unit of model output: either literal text or a request to
// invoke a tool. Fragments are ordered; the orchestrator resolves them
// strictly in the order the model emitted them.
type Fragment interface {
	isFragment()
}

// TextFragment is a fragment of literal reply text.
type TextFragment struct {
	Text string `json:"text"`
}

func (f TextFragment) String() string {
	return f.Text
}

func (TextFragment) isFragment() {}

// ToolCallFragment is a request by the model to invoke a named tool with a
// raw JSON argument payload.
type ToolCallFragment struct {
	// ID is the provider-assigned identifier of the call, may be empty.
	ID string `json:"id,omitempty"`
	// Name is the tool name as emitted by the model.
	Name string `json:"name"`
	// Arguments is the raw argument payload, as a JSON string.
	Arguments string `json:"arguments"`
}

func (f ToolCallFragment) String() string {
	return fmt.Sprintf("ToolCall: %s (%s), input: %s", f.ID, f.Name, f.Arguments)
}

func (ToolCallFragment) isFragment() {}

// ContentResponse is the response returned by a GenerateContent call:
// an ordered sequence of text and tool-call fragments.
type ContentResponse struct {
	Fragments []Fragment `json:"fragments"`

	// StopReason is the reason the model stopped generating output.
	StopReason string `json:"stop_reason,omitempty"`

	// GenerationInfo is arbitrary information the provider adds to the
	// response, such as token usage.
	GenerationInfo map[string]any `json:"generation_info,omitempty"`
}

// TextResponse is a helper to build a text-only response.
func TextResponse(text string) *ContentResponse {
	return &ContentResponse{
		Fragments: []Fragment{TextFragment{Text: text}},
	}
}

// ToolCalls returns the tool-call fragments of the response, in emission order.
func (r *ContentResponse) ToolCalls() []ToolCallFragment {
	var calls []ToolCallFragment
	for _, f := range r.Fragments {
		if tc, ok := f.(ToolCallFragment); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

// Text joins the text fragments of the response, ignoring tool calls.
func (r *ContentResponse) Text() string {
	var buf strings.Builder
	for _, f := range r.Fragments {
		if t, ok := f.(TextFragment); ok {
			buf.WriteString(t.Text)
		}
	}
	return buf.String()
}
