// Package structured obtains schema-valid JSON from a completion model by
// feeding validation failures back to it for a bounded number of retries.
package structured

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwiater/grounded/internal/apperr"
	"github.com/mwiater/grounded/internal/logging"
	"github.com/mwiater/grounded/internal/providers"
)

// DefaultMaxRetries is the number of corrective retries after the first attempt.
const DefaultMaxRetries = 2

const schemaInstruction = "Return ONLY valid JSON with keys: title, summary, keywords."

const systemInstruction = schemaInstruction + " Do not wrap the JSON in markdown or add extra text."

// Extractor drives the completion model until it returns a valid Payload.
type Extractor struct {
	completer  providers.Completer
	maxRetries int
}

// NewExtractor returns an Extractor allowing maxRetries corrections. Negative
// values are treated as zero.
func NewExtractor(completer providers.Completer, maxRetries int) *Extractor {
	return &Extractor{completer: completer, maxRetries: max(0, maxRetries)}
}

// attemptState is one step of the retry loop.
type attemptState struct {
	attempt int
	history []providers.ChatMessage
}

func initialState(prompt string) attemptState {
	return attemptState{
		history: []providers.ChatMessage{
			{Role: providers.RoleSystem, Content: systemInstruction},
			{Role: providers.RoleUser, Content: prompt},
		},
	}
}

// next builds the following attempt from the base conversation, the rejected
// reply and the reason it was rejected. ok is false once retries are spent.
func (s attemptState) next(reply string, failure error, maxRetries int) (attemptState, bool) {
	if s.attempt >= maxRetries {
		return s, false
	}
	history := make([]providers.ChatMessage, 0, 4)
	history = append(history, s.history[:2]...)
	history = append(history,
		providers.ChatMessage{Role: providers.RoleAssistant, Content: reply},
		providers.ChatMessage{Role: providers.RoleUser, Content: correctionMessage(failure)},
	)
	return attemptState{attempt: s.attempt + 1, history: history}, true
}

func correctionMessage(failure error) string {
	return fmt.Sprintf("The previous response was invalid JSON or did not match the schema. Error: %v. %s", failure, schemaInstruction)
}

// Extract asks the model for a structured payload describing prompt. Provider
// failures are returned as they happen; only parse and schema failures are
// retried.
func (e *Extractor) Extract(ctx context.Context, prompt string) (Payload, error) {
	if strings.TrimSpace(prompt) == "" {
		return Payload{}, apperr.Inputf("prompt is required")
	}

	state := initialState(prompt)
	for {
		reply, err := e.completer.Complete(ctx, state.history, 0)
		if err != nil {
			return Payload{}, err
		}

		payload, failure := Parse(reply)
		if failure == nil {
			logging.LogEvent("[STRUCTURED] valid payload on attempt %d", state.attempt+1)
			return payload, nil
		}
		logging.LogEvent("[STRUCTURED] attempt %d rejected: %v", state.attempt+1, failure)

		nextState, ok := state.next(reply, failure, e.maxRetries)
		if !ok {
			return Payload{}, apperr.Validation("structured", fmt.Errorf("structured output validation failed: %w", failure))
		}
		state = nextState
	}
}
