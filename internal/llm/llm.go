// Package llm defines the completion API the recipe recommender talks to.
// Backends live in subpackages.
package llm

import (
	"context"
	"fmt"
)

// Request is one chat completion: a system instruction and a single user
// message. JSON asks the backend to constrain output to a JSON object.
type Request struct {
	System      string
	User        string
	JSON        bool
	Temperature float32
	MaxTokens   int
}

type Completer interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Complete returns the text of the first completion choice.
	Complete(ctx context.Context, req Request) (string, error)
}

// Error is a provider failure: transport, auth, rate limiting or a reply
// that carried no completion.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
