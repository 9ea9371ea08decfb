package stream

// Constants for container types tracked during the walk.
const (
	kindObj containerKind = iota
	kindArr
)

// containerKind represents the type of JSON container being processed.
type containerKind uint8

// frame maintains position state for one open JSON container.
type frame struct {
	kind    containerKind
	idx     int    // current index for arrays
	needKey bool   // true if object expects a key next
	key     string // last key read for an object
}

// pathSeg is one element of the current document path. It is either an
// object field or an array index.
type pathSeg struct {
	isArray bool
	name    string // field name for objects
	index   int    // index for arrays
}

// FieldValue is a structural event: one scalar leaf encountered inside a
// tracked containment path.
type FieldValue struct {
	Path  string // normalized containment path, e.g. "Clients"
	Name  string // leaf field name, e.g. "ClientID"
	Value any
}
