// Package prompts renders parameterized system prompts.
package prompts

import (
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
)

// PromptTemplate is a text template for a system prompt, using Go template
// syntax for its input variables, e.g. `{{.persona}}`.
type PromptTemplate struct {
	// Template is the prompt template text.
	Template string
	// InputVariables is the list of variable names the template requires.
	InputVariables []string

	parsed *template.Template
}

// New creates a PromptTemplate, parsing the template eagerly so malformed
// templates fail at construction.
func New(text string, inputVariables []string) (*PromptTemplate, error) {
	parsed, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse prompt template")
	}
	return &PromptTemplate{
		Template:       text,
		InputVariables: inputVariables,
		parsed:         parsed,
	}, nil
}

// MustNew is like New but panics on a malformed template.
func MustNew(text string, inputVariables []string) *PromptTemplate {
	t, err := New(text, inputVariables)
	if err != nil {
		panic(err)
	}
	return t
}

// Format renders the template with the given inputs. Missing required
// variables are an error.
func (t *PromptTemplate) Format(inputs map[string]any) (string, error) {
	for _, name := range t.InputVariables {
		if _, ok := inputs[name]; !ok {
			return "", errors.Newf("missing prompt input: %s", name)
		}
	}

	var buf strings.Builder
	if err := t.parsed.Execute(&buf, inputs); err != nil {
		return "", errors.Wrap(err, "failed to format prompt")
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// MustFormat is like Format but panics on failure. Intended for static
// prompts wired at startup.
func (t *PromptTemplate) MustFormat(inputs map[string]any) string {
	s, err := t.Format(inputs)
	if err != nil {
		panic(err)
	}
	return s
}
