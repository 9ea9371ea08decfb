package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/jacoelho/svx/internal/stack"
)

// ErrMalformed indicates the input token sequence is not valid JSON
// structure.
var ErrMalformed = errors.New("stream: malformed JSON structure")

type walker struct {
	tracked    map[string]struct{}
	containers *stack.Stack[frame]
	path       *stack.Stack[pathSeg]
	yield      func(FieldValue, error) bool
}

// Walk tokenizes r and returns a lazy iterator of FieldValue events for
// scalar leaves whose containment path is in prefixes. Prefixes are
// normalized dotted field paths as produced by expr.Path.Prefix; the root
// is the empty string. The sequence is finite and not restartable.
//
// The provided context cancels the walk at the next token boundary.
func Walk(ctx context.Context, r io.Reader, prefixes []string) iter.Seq2[FieldValue, error] {
	tracked := make(map[string]struct{}, len(prefixes))
	for _, prefix := range prefixes {
		tracked[prefix] = struct{}{}
	}

	dec := json.NewDecoder(r)
	dec.UseNumber() // numbers surface as written, not as float64

	return func(yield func(FieldValue, error) bool) {
		w := &walker{
			tracked:    tracked,
			containers: stack.New[frame](),
			path:       stack.NewWithCapacity[pathSeg](8),
			yield:      yield,
		}

		for {
			if ctx.Err() != nil {
				yield(FieldValue{}, ctx.Err())
				return
			}

			tok, err := dec.Token()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(FieldValue{}, err)
				return
			}

			if w.containers.IsEmpty() {
				if !w.handleRootToken(tok) {
					return
				}
				continue
			}

			top := w.containers.PeekRef()

			if top.kind == kindObj {
				if !w.handleObjectToken(tok, top) {
					return
				}
				continue
			}

			if !w.handleArrayToken(tok, top) {
				return
			}
		}
	}
}

func (w *walker) handleRootToken(tok any) bool {
	d, ok := tok.(json.Delim)
	if !ok {
		// A scalar root document has no field name to match.
		return true
	}

	switch d {
	case '{':
		w.containers.Push(frame{kind: kindObj, needKey: true})
	case '[':
		w.containers.Push(frame{kind: kindArr})
	default:
		w.yield(FieldValue{}, ErrMalformed)
		return false
	}
	w.path.Push(pathSeg{})
	return true
}

func (w *walker) handleObjectToken(tok any, top *frame) bool {
	if top.needKey {
		return w.handleObjectKey(tok, top)
	}

	w.path.Push(pathSeg{name: top.key})
	return w.handleValue(tok)
}

func (w *walker) handleObjectKey(tok any, top *frame) bool {
	if d, ok := tok.(json.Delim); ok && d == '}' {
		w.containers.Pop()
		w.path.Pop()
		w.valueDone()
		return true
	}

	key, ok := tok.(string)
	if !ok {
		w.yield(FieldValue{}, fmt.Errorf("%w: object key is not a string", ErrMalformed))
		return false
	}

	top.key = key
	top.needKey = false
	return true
}

func (w *walker) handleArrayToken(tok any, top *frame) bool {
	if d, ok := tok.(json.Delim); ok && d == ']' {
		w.containers.Pop()
		w.path.Pop()
		w.valueDone()
		return true
	}

	w.path.Push(pathSeg{isArray: true, index: top.idx})
	return w.handleValue(tok)
}

// handleValue processes the token at the just-pushed path position: it
// either opens a nested container or finishes a scalar leaf.
func (w *walker) handleValue(tok any) bool {
	if d, ok := tok.(json.Delim); ok {
		switch d {
		case '{':
			w.containers.Push(frame{kind: kindObj, needKey: true})
		case '[':
			w.containers.Push(frame{kind: kindArr})
		default:
			w.yield(FieldValue{}, fmt.Errorf("%w: unexpected delimiter", ErrMalformed))
			return false
		}
		return true
	}

	if ev, ok := w.event(tok); ok {
		if !w.yield(ev, nil) {
			return false
		}
	}
	w.path.Pop()
	w.valueDone()
	return true
}

// event maps the current scalar to a FieldValue when its containment path
// is tracked. The field name is the nearest enclosing named segment, so a
// scalar array element reports the array's field name.
func (w *walker) event(value any) (FieldValue, bool) {
	segs := w.path.ToSlice()

	i := len(segs) - 1
	for i >= 0 && (segs[i].isArray || segs[i].name == "") {
		i--
	}
	if i < 0 {
		return FieldValue{}, false
	}

	var b strings.Builder
	for _, seg := range segs[:i] {
		if seg.isArray || seg.name == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.name)
	}

	containment := b.String()
	if _, ok := w.tracked[containment]; !ok {
		return FieldValue{}, false
	}

	return FieldValue{Path: containment, Name: segs[i].name, Value: value}, true
}

func (w *walker) valueDone() {
	if w.containers.IsEmpty() {
		return
	}
	top := w.containers.PeekRef()
	if top.kind == kindArr {
		top.idx++
	}
	if top.kind == kindObj {
		top.needKey = true
	}
}
