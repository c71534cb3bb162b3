// internal/cli/output.go
package grounded

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mwiater/grounded/internal/apperr"
)

// writeFormatted renders value to w as indented JSON or YAML.
func writeFormatted(w io.Writer, format string, value any) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml", "yml":
		data, err := yaml.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = io.WriteString(w, string(data))
		return err
	default:
		return apperr.Inputf("unsupported --format %q (use json or yaml)", format)
	}
}
