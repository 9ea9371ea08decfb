package stream

import (
	"fmt"
	"strings"

	"github.com/jacoelho/svx/internal/expr"
)

// Accumulator combines FieldValue events into one search value per logical
// record. A record completes once every requested field name has received a
// value since the last completion; the completed value joins the fields in
// path-argument order with the spec delimiter.
type Accumulator struct {
	delimiter string
	names     []string
	wanted    map[string]struct{}
	pending   map[string]string
}

// NewAccumulator builds an accumulator for the parsed spec. Field names
// that repeat are satisfied by a single collected value.
func NewAccumulator(spec expr.Spec) *Accumulator {
	names := spec.FieldNames()
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	return &Accumulator{
		delimiter: spec.Delimiter,
		names:     names,
		wanted:    wanted,
		pending:   make(map[string]string, len(names)),
	}
}

// Feed offers one event to the current record. It returns the completed
// search value and true when the event completed a record. Events for
// fields the spec does not request are ignored; a repeated field before
// completion overwrites the buffered value.
func (a *Accumulator) Feed(ev FieldValue) (string, bool) {
	if _, ok := a.wanted[ev.Name]; !ok {
		return "", false
	}

	a.pending[ev.Name] = coerce(ev.Value)
	if len(a.pending) < len(a.wanted) {
		return "", false
	}

	parts := make([]string, len(a.names))
	for i, name := range a.names {
		parts[i] = a.pending[name]
	}
	clear(a.pending)

	return strings.Join(parts, a.delimiter), true
}

// Flush discards any buffered partial record and returns the number of
// field values dropped. A record is never emitted with missing fields.
func (a *Accumulator) Flush() int {
	dropped := len(a.pending)
	clear(a.pending)
	return dropped
}

// coerce converts non-string scalars using fmt.Sprintf. json.Number prints
// as written.
func coerce(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
