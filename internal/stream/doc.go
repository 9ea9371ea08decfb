// Package stream resolves search values incrementally over a JSON input
// without materializing the document. The walker tokenizes the input with
// encoding/json and keeps O(depth) state: a container-frame stack and a
// path-segment stack. Scalar values inside a tracked containment path are
// surfaced as FieldValue events; the accumulator combines them into one
// search value per logical record.
//
// Record boundaries are implicit: a record completes once every requested
// field name has received a value since the last completion. The walker
// visits fields in document order, so within one containment path the
// arrival order is stable. If the event source ever grows an explicit
// record-boundary signal the accumulator is the place to consume it.
package stream
