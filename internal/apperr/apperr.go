// internal/apperr/apperr.go
// Package apperr classifies failures so the command layer can tell configuration
// problems apart from bad input, provider trouble and schema mismatches.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a failure.
type Kind int

const (
	// KindUnknown is reported for errors that carry no classification.
	KindUnknown Kind = iota
	// KindConfig marks a missing or invalid credential or setting.
	KindConfig
	// KindInput marks an empty required argument or an empty corpus.
	KindInput
	// KindProvider marks a non-success response or timeout from a model provider.
	KindProvider
	// KindValidation marks a model response that failed the structured schema.
	KindValidation
)

// String returns the short label used in user-facing messages.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindInput:
		return "input"
	case KindProvider:
		return "provider"
	case KindValidation:
		return "validation"
	default:
		return "error"
	}
}

// Error is a classified failure. Op names the operation that failed and may be empty.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Config wraps err as a configuration failure.
func Config(op string, err error) error { return newError(KindConfig, op, err) }

// Configf builds a configuration failure from a format string.
func Configf(format string, args ...any) error {
	return &Error{Kind: KindConfig, Err: fmt.Errorf(format, args...)}
}

// Input wraps err as an input failure.
func Input(op string, err error) error { return newError(KindInput, op, err) }

// Inputf builds an input failure from a format string.
func Inputf(format string, args ...any) error {
	return &Error{Kind: KindInput, Err: fmt.Errorf(format, args...)}
}

// Provider wraps err as a provider failure.
func Provider(op string, err error) error { return newError(KindProvider, op, err) }

// Validation wraps err as a schema validation failure.
func Validation(op string, err error) error { return newError(KindValidation, op, err) }

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
