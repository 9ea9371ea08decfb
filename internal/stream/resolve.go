package stream

import (
	"context"
	"io"
	"iter"

	"github.com/jacoelho/svx/internal/expr"
)

// Resolve wires the walker to an accumulator and returns a lazy, finite
// sequence of search values in record-arrival order. The sequence is not
// restartable. A partial record buffered at end of input is discarded; a
// field that never arrives simply never completes a record.
func Resolve(ctx context.Context, r io.Reader, spec expr.Spec) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		acc := NewAccumulator(spec)

		for ev, err := range Walk(ctx, r, spec.Prefixes()) {
			if err != nil {
				yield("", err)
				return
			}
			if value, ok := acc.Feed(ev); ok {
				if !yield(value, nil) {
					return
				}
			}
		}

		acc.Flush()
	}
}
