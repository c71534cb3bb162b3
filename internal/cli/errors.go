// internal/cli/errors.go
package grounded

import (
	"errors"
	"io"

	"github.com/fatih/color"

	"github.com/mwiater/grounded/internal/apperr"
	"github.com/mwiater/grounded/internal/providers"
)

var (
	errorLine = color.New(color.FgRed, color.Bold).SprintfFunc()
	hintLine  = color.New(color.FgYellow).SprintfFunc()
)

// exitCode maps an error kind to the process exit status.
func exitCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindConfig:
		return 2
	case apperr.KindInput:
		return 3
	case apperr.KindProvider:
		return 4
	case apperr.KindValidation:
		return 5
	default:
		return 1
	}
}

// reportError writes the user-facing failure message and, when useful, a hint.
func reportError(w io.Writer, err error) {
	kind := apperr.KindOf(err)
	io.WriteString(w, errorLine("Error [%s]: %v", kind, err)+"\n")

	switch {
	case providers.IsRetryable(err):
		io.WriteString(w, hintLine("The provider failure looks transient; retrying may succeed.")+"\n")
	case kind == apperr.KindConfig:
		io.WriteString(w, hintLine("Check the environment, .env file and --config settings.")+"\n")
	case kind == apperr.KindValidation:
		io.WriteString(w, hintLine("The model did not return schema-valid JSON; try rephrasing or raising --max_retries.")+"\n")
	case kind == apperr.KindProvider && errors.Is(err, providers.ErrMalformedResponse):
		io.WriteString(w, hintLine("The provider returned an unexpected response shape.")+"\n")
	}
}
