// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"context"
	"time"
)

// Caller is implemented by *Client. Consumers depend on it so tests can
// supply canned outcomes.
type Caller interface {
	CallModel(ctx context.Context, c Call) Outcome
}

// Completer binds a Caller to one model and token so it can be handed to
// code that only needs prompt in, text out.
type Completer struct {
	Client      Caller
	ModelID     string
	Token       string
	MaxAttempts int
	Timeout     time.Duration
	Parameters  map[string]any
}

// Complete returns the model's reply to prompt. A Failure is returned as
// the error.
func (c Completer) Complete(ctx context.Context, prompt string) (string, error) {
	out := c.Client.CallModel(ctx, Call{
		ModelID:     c.ModelID,
		Input:       prompt,
		Parameters:  c.Parameters,
		Token:       c.Token,
		MaxAttempts: c.MaxAttempts,
		Timeout:     c.Timeout,
	})
	if !out.Succeeded() {
		return "", out.Failure
	}
	return out.Text, nil
}
