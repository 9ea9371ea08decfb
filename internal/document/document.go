// Package document resolves search values against a fully decoded JSON
// document. It is the buffered counterpart of package stream and is meant
// for inputs small enough to hold in memory.
package document

import (
	"bytes"
	"errors"
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/theory/jsonpath"

	"github.com/jacoelho/svx/internal/expr"
)

var (
	// ErrMalformed indicates the input could not be parsed as JSON.
	ErrMalformed = errors.New("document: malformed input")

	// ErrNoValuesFound indicates a concat() path matched zero nodes.
	ErrNoValuesFound = errors.New("document: no values found")

	// ErrCountMismatch indicates concatenated paths matched differing
	// numbers of nodes and cannot be combined positionally.
	ErrCountMismatch = errors.New("document: result count mismatch")
)

// Decode parses raw input into a JSON value suitable for Resolve. Numbers
// decode as json.Number so both resolvers derive identical values from the
// same input.
func Decode(data []byte) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

// Resolve evaluates every path of spec against doc and returns the derived
// search values in document traversal order.
//
// A single path returns its matches directly; zero matches yield an empty
// result, not an error. Concatenated paths are combined positionally: the
// i-th output is the i-th match of each path in argument order, joined by
// the delimiter. Concatenation requires every path to match the same number
// of nodes in the same order; a zero-match path fails with ErrNoValuesFound
// and mismatched counts fail with ErrCountMismatch.
func Resolve(doc any, spec expr.Spec) ([]string, error) {
	if !spec.Concat {
		return selectValues(doc, spec.Paths[0])
	}

	var combined []string
	for i, path := range spec.Paths {
		values, err := selectValues(doc, path)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: path %q", ErrNoValuesFound, path)
		}

		if i == 0 {
			combined = values
			continue
		}
		if len(values) != len(combined) {
			return nil, fmt.Errorf("%w: path %q matched %d node(s), path %q matched %d",
				ErrCountMismatch, spec.Paths[0], len(combined), path, len(values))
		}
		for j, value := range values {
			combined[j] += spec.Delimiter + value
		}
	}

	return combined, nil
}

// selectValues returns the string-coerced matches of a single path in
// document traversal order.
func selectValues(doc any, path expr.Path) ([]string, error) {
	compiled, err := jsonpath.Parse(path.String())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid path %q: %v", expr.ErrInvalidExpression, path, err)
	}

	nodes := compiled.Select(doc)

	values := make([]string, 0, len(nodes))
	for _, node := range nodes {
		values = append(values, coerce(node))
	}
	return values, nil
}

// coerce converts non-string values using fmt.Sprintf.
func coerce(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
