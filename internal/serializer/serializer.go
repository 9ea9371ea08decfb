// Package serializer renders a resolved search value set into its output
// representation. The rendering is decided by which resolver produced the
// values: the whole-document resolver emits the plain joined form, the
// streaming resolver emits the JSON object form.
package serializer

import (
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Format represents the output rendering for a value set.
type Format int

const (
	// FormatPlain joins the values with commas.
	FormatPlain Format = iota
	// FormatJSON wraps the values in {"values":[...]}.
	FormatJSON
)

type payload struct {
	Values []string `json:"values"`
}

// Render serializes values in the given format. Values are neither
// truncated nor reordered; an empty set renders as "" in plain format and
// {"values":[]} in JSON format.
func Render(values []string, format Format) (string, error) {
	switch format {
	case FormatJSON:
		body := payload{Values: values}
		if body.Values == nil {
			body.Values = []string{}
		}
		data, err := gojson.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("serializer: encode values: %w", err)
		}
		return string(data), nil
	case FormatPlain:
		fallthrough
	default:
		return strings.Join(values, ","), nil
	}
}
