// Package expr parses session search path specifications.
//
// A specification is either a single rooted path expression, e.g.
// "$.Clients[*].ClientID", or a concat form combining several paths with a
// delimiter:
//
//	concat(-, $.Clients[*].ClientID, $.Clients[*].ClaimID)
//
// The trailing ')' is optional. The first concat argument is the delimiter,
// used verbatim apart from surrounding whitespace; the remaining arguments
// are path expressions.
package expr

import (
	"errors"
	"fmt"
	"strings"
)

const (
	concatPrefix = "concat("
	rootAnchor   = "$"
)

var (
	// ErrInvalidArity indicates concat() was given fewer than two paths.
	ErrInvalidArity = errors.New("expr: invalid number of arguments to concat()")

	// ErrInvalidExpression indicates a path expression is missing its root
	// anchor or cannot be reduced to a leaf field name.
	ErrInvalidExpression = errors.New("expr: invalid expression")
)

// Mode selects which validation a parsed path must satisfy.
//
// Document mode requires every path to start at the document root.
// Stream mode only requires that a path reduces to a non-empty leaf field
// name plus a containment prefix, so the anchor may be omitted.
type Mode int

const (
	ModeDocument Mode = iota
	ModeStream
)

// Path is a single search path expression.
type Path string

func (p Path) String() string {
	return string(p)
}

// Rooted reports whether the path starts at the document root.
func (p Path) Rooted() bool {
	return strings.HasPrefix(string(p), rootAnchor)
}

// Leaf returns the final dotted segment of the path with any bracket suffix
// stripped. This is the field name the streaming resolver matches scalar
// values against. Empty when the path has no identifiable field name.
func (p Path) Leaf() string {
	segments := p.segments()
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// Prefix returns the containment path preceding the leaf, normalized to
// dotted field names with the root anchor and bracket selectors removed.
// It scopes which substream of the input the streaming resolver tracks.
func (p Path) Prefix() string {
	segments := p.segments()
	if len(segments) < 2 {
		return ""
	}
	return strings.Join(segments[:len(segments)-1], ".")
}

// segments splits the path on '.' into bare field names, dropping the root
// anchor and any bracket selector such as [*] or [0].
func (p Path) segments() []string {
	var segments []string
	for _, raw := range strings.Split(string(p), ".") {
		if i := strings.IndexByte(raw, '['); i >= 0 {
			raw = raw[:i]
		}
		if raw == "" || raw == rootAnchor {
			continue
		}
		segments = append(segments, raw)
	}
	return segments
}

// Spec is a parsed search path specification, immutable after Parse.
type Spec struct {
	Delimiter string
	Paths     []Path
	Concat    bool
}

// FieldNames returns the leaf field names in path-argument order.
func (s Spec) FieldNames() []string {
	names := make([]string, len(s.Paths))
	for i, p := range s.Paths {
		names[i] = p.Leaf()
	}
	return names
}

// Prefixes returns the distinct containment prefixes in first-seen order.
// Paths sharing a containment path register it once.
func (s Spec) Prefixes() []string {
	seen := make(map[string]struct{}, len(s.Paths))
	prefixes := make([]string, 0, len(s.Paths))
	for _, p := range s.Paths {
		prefix := p.Prefix()
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}

// Parse parses a search path specification.
//
// It is a pure function: no I/O, no side effects beyond the returned error.
func Parse(spec string, mode Mode) (Spec, error) {
	spec = strings.TrimSpace(spec)

	if !strings.HasPrefix(spec, concatPrefix) {
		path := Path(spec)
		if err := validatePath(path, mode); err != nil {
			return Spec{}, err
		}
		return Spec{Paths: []Path{path}}, nil
	}

	args := spec[len(concatPrefix):]
	if closing := strings.LastIndexByte(args, ')'); closing >= 0 {
		args = args[:closing]
	}

	parts := strings.Split(args, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}

	if len(parts) < 3 {
		return Spec{}, fmt.Errorf("%w: got %d argument(s) in %q", ErrInvalidArity, len(parts), spec)
	}

	paths := make([]Path, 0, len(parts)-1)
	for _, arg := range parts[1:] {
		path := Path(arg)
		if err := validatePath(path, mode); err != nil {
			return Spec{}, err
		}
		paths = append(paths, path)
	}

	return Spec{
		Delimiter: parts[0],
		Paths:     paths,
		Concat:    true,
	}, nil
}

// validatePath enforces the per-mode validity rule: document mode needs the
// root anchor, stream mode needs a leaf field name to match events against.
func validatePath(p Path, mode Mode) error {
	switch mode {
	case ModeDocument:
		if !p.Rooted() {
			return fmt.Errorf("%w: missing root symbol in %q", ErrInvalidExpression, p)
		}
	case ModeStream:
		if p.Leaf() == "" {
			return fmt.Errorf("%w: no field name in %q", ErrInvalidExpression, p)
		}
	}
	return nil
}
