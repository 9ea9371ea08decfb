package stream

import (
	"encoding/json"
	"testing"

	"github.com/jacoelho/svx/internal/expr"
)

func mustParseStream(t *testing.T, spec string) expr.Spec {
	t.Helper()

	parsed, err := expr.Parse(spec, expr.ModeStream)
	if err != nil {
		t.Fatalf("expr.Parse(%q) unexpected error: %v", spec, err)
	}
	return parsed
}

func TestAccumulatorCompletesRecords(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(mustParseStream(t, "concat(-, $.Clients[*].ClientID, $.Clients[*].ClaimID)"))

	if _, done := acc.Feed(FieldValue{Name: "ClientID", Value: "A1"}); done {
		t.Fatal("Feed() completed a record with a missing field")
	}

	value, done := acc.Feed(FieldValue{Name: "ClaimID", Value: "99"})
	if !done || value != "A1-99" {
		t.Fatalf("Feed() = %q, %v, want \"A1-99\", true", value, done)
	}

	// The next record starts from an empty buffer.
	if _, done := acc.Feed(FieldValue{Name: "ClaimID", Value: "88"}); done {
		t.Fatal("Feed() completed a record with a missing field")
	}
	value, done = acc.Feed(FieldValue{Name: "ClientID", Value: "A2"})
	if !done || value != "A2-88" {
		t.Fatalf("Feed() = %q, %v, want \"A2-88\", true", value, done)
	}
}

func TestAccumulatorOrdersByFieldArguments(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(mustParseStream(t, "concat(-, $.Clients[*].ClaimID, $.Clients[*].ClientID)"))

	acc.Feed(FieldValue{Name: "ClientID", Value: "A1"})
	value, done := acc.Feed(FieldValue{Name: "ClaimID", Value: "99"})
	if !done || value != "99-A1" {
		t.Fatalf("Feed() = %q, %v, want \"99-A1\", true", value, done)
	}
}

func TestAccumulatorIgnoresUnrequestedFields(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(mustParseStream(t, "concat(-, $.Clients[*].ClientID, $.Clients[*].ClaimID)"))

	if _, done := acc.Feed(FieldValue{Name: "Other", Value: "x"}); done {
		t.Fatal("Feed() completed a record from an unrequested field")
	}
	if got := acc.Flush(); got != 0 {
		t.Fatalf("Flush() = %d, want 0", got)
	}
}

func TestAccumulatorRepeatedFieldOverwrites(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(mustParseStream(t, "concat(-, $.Clients[*].ClientID, $.Clients[*].ClaimID)"))

	acc.Feed(FieldValue{Name: "ClientID", Value: "A1"})
	if _, done := acc.Feed(FieldValue{Name: "ClientID", Value: "A2"}); done {
		t.Fatal("Feed() completed a record with a missing field")
	}

	value, done := acc.Feed(FieldValue{Name: "ClaimID", Value: "99"})
	if !done || value != "A2-99" {
		t.Fatalf("Feed() = %q, %v, want \"A2-99\", true", value, done)
	}
}

func TestAccumulatorCoercesNumbers(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(mustParseStream(t, "concat(-, $.Clients[*].ClientID, $.Clients[*].ClaimID)"))

	acc.Feed(FieldValue{Name: "ClientID", Value: "A1"})
	value, done := acc.Feed(FieldValue{Name: "ClaimID", Value: json.Number("99")})
	if !done || value != "A1-99" {
		t.Fatalf("Feed() = %q, %v, want \"A1-99\", true", value, done)
	}
}

func TestAccumulatorSharedFieldName(t *testing.T) {
	t.Parallel()

	// Both arguments reduce to the same leaf; one value satisfies both.
	acc := NewAccumulator(mustParseStream(t, "concat(-, $.Clients[*].ClientID, $.Clients[*].ClientID)"))

	value, done := acc.Feed(FieldValue{Name: "ClientID", Value: "A1"})
	if !done || value != "A1-A1" {
		t.Fatalf("Feed() = %q, %v, want \"A1-A1\", true", value, done)
	}
}

func TestAccumulatorFlushDiscardsPartial(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(mustParseStream(t, "concat(-, $.Clients[*].ClientID, $.Clients[*].ClaimID)"))

	acc.Feed(FieldValue{Name: "ClientID", Value: "A1"})
	if got := acc.Flush(); got != 1 {
		t.Fatalf("Flush() = %d, want 1", got)
	}

	// A flushed accumulator starts clean.
	if _, done := acc.Feed(FieldValue{Name: "ClaimID", Value: "99"}); done {
		t.Fatal("Feed() completed a record after flush with a missing field")
	}
}
