package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Payload is the validated result of a structured extraction.
type Payload struct {
	Title    string `json:"title" yaml:"title"`
	Summary  string `json:"summary" yaml:"summary"`
	Keywords []any  `json:"keywords" yaml:"keywords"`
}

// payloadSchema requires non-blank title and summary strings and an array of
// keywords with unconstrained element types. Extra keys are allowed.
var payloadSchema = map[string]any{
	"type":     "object",
	"required": []any{"title", "summary", "keywords"},
	"properties": map[string]any{
		"title":    map[string]any{"type": "string", "minLength": 1, "pattern": `\S`},
		"summary":  map[string]any{"type": "string", "minLength": 1, "pattern": `\S`},
		"keywords": map[string]any{"type": "array"},
	},
}

var schemaLoader = gojsonschema.NewGoLoader(payloadSchema)

// StripCodeFence removes a surrounding ``` fence, including an optional
// language tag after the opening fence.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	tagEnd := strings.IndexFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-' || r == '+')
	})
	if tagEnd < 0 {
		tagEnd = len(text)
	}
	text = text[tagEnd:]
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Parse cleans raw model output, decodes exactly one JSON value and validates
// it against the payload schema.
func Parse(raw string) (Payload, error) {
	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return Payload{}, errors.New("response is empty")
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Payload{}, fmt.Errorf("invalid JSON: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return Payload{}, errors.New("invalid JSON: unexpected content after the JSON value")
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Payload{}, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return Payload{}, fmt.Errorf("schema mismatch: %s", strings.Join(details, "; "))
	}

	obj := doc.(map[string]any)
	return Payload{
		Title:    obj["title"].(string),
		Summary:  obj["summary"].(string),
		Keywords: obj["keywords"].([]any),
	}, nil
}
