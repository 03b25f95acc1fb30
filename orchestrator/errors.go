package orchestrator

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrEmptyUtterance is returned when the user utterance is empty or
// whitespace-only. Nothing is sent to the provider and nothing is persisted.
var ErrEmptyUtterance = errors.New("utterance must not be empty")

// ProviderError indicates the model call itself failed. The turn is aborted
// and the conversation history is left exactly as it was.
type ProviderError struct {
	Model string
	Cause error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("model %q: provider call failed: %s", e.Model, e.Cause.Error())
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsProviderFailure reports whether the error is a provider call failure.
func IsProviderFailure(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
