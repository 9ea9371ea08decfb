package stack

import (
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	s := New[int]()

	if !s.IsEmpty() {
		t.Error("New() stack should be empty")
	}
}

func TestPushAndPop(t *testing.T) {
	s := New[int]()

	s.Push(1)
	s.Push(2)
	s.Push(3)

	if s.IsEmpty() {
		t.Error("Push() stack should not be empty")
	}

	// LIFO order
	for _, want := range []int{3, 2, 1} {
		val, ok := s.Pop()
		if !ok || val != want {
			t.Errorf("Pop() = %d, %t, want %d, true", val, ok, want)
		}
	}

	if !s.IsEmpty() {
		t.Error("stack should be empty after popping everything")
	}

	if _, ok := s.Pop(); ok {
		t.Error("Pop() on empty stack should return false")
	}
}

func TestPeekRef(t *testing.T) {
	s := NewWithCapacity[int](4)

	if ref := s.PeekRef(); ref != nil {
		t.Error("PeekRef() on empty stack should return nil")
	}

	s.Push(1)
	ref := s.PeekRef()
	if ref == nil {
		t.Fatal("PeekRef() returned nil for non-empty stack")
	}

	*ref = 42
	val, ok := s.Pop()
	if !ok || val != 42 {
		t.Errorf("PeekRef() modification not visible, got %d, want 42", val)
	}
}

func TestToSlice(t *testing.T) {
	s := New[int]()
	s.Push(1)
	s.Push(2)
	s.Push(3)

	got := s.ToSlice()
	want := []int{1, 2, 3}
	if !slices.Equal(got, want) {
		t.Errorf("ToSlice() = %v, want %v", got, want)
	}

	// The returned slice is a copy.
	got[0] = 99
	fresh := s.ToSlice()
	if fresh[0] != 1 {
		t.Errorf("ToSlice() shares backing array, got %v", fresh)
	}
}
