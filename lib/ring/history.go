// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package ring

import "iter"

// slot is one physical cell of the buffer. occupied distinguishes a
// stored zero value from an empty cell, which is what lets front == back
// mean either "full" or "empty".
type slot[T any] struct {
	value    T
	occupied bool
}

// History is a fixed-capacity circular buffer of comparable values.
//
// front is the physical index of the oldest element and back is the
// physical index where the next element will be written. When front ==
// back the buffer is either full (the slot at front is occupied) or
// empty (it is not).
type History[T comparable] struct {
	slots []slot[T]
	front int
	back  int
}

// New creates a History holding at most capacity elements. Panics if
// capacity is not positive.
func New[T comparable](capacity int) *History[T] {
	if capacity <= 0 {
		panic("ring: non-positive capacity")
	}
	return &History[T]{slots: make([]slot[T], capacity)}
}

// Capacity returns the maximum number of elements the buffer holds.
func (history *History[T]) Capacity() int { return len(history.slots) }

// IsFull reports whether the next PushBack will evict the oldest element.
func (history *History[T]) IsFull() bool {
	return history.front == history.back && history.slots[history.front].occupied
}

// IsEmpty reports whether the buffer holds no elements.
func (history *History[T]) IsEmpty() bool {
	return history.front == history.back && !history.slots[history.front].occupied
}

// Size returns the number of stored elements.
func (history *History[T]) Size() int {
	if history.IsFull() {
		return len(history.slots)
	}
	return (history.back - history.front + len(history.slots)) % len(history.slots)
}

// PushBack stores value as the newest element, evicting the oldest
// element if the buffer is full.
func (history *History[T]) PushBack(value T) {
	if history.IsFull() {
		history.front = (history.front + 1) % len(history.slots)
	}
	history.slots[history.back] = slot[T]{value: value, occupied: true}
	history.back = (history.back + 1) % len(history.slots)
}

// FindAndPushBack stores value as the newest element without creating a
// duplicate. If an equal element is already present (the most recent
// one wins), it is moved to the newest position and every other element
// keeps its relative order; the size does not change. Otherwise it
// behaves like PushBack.
func (history *History[T]) FindAndPushBack(value T) {
	if history.IsEmpty() {
		history.PushBack(value)
		return
	}

	index, found := history.SearchTowardOldest(func(candidate T) bool {
		return candidate == value
	}, history.Size()-1)
	if !found {
		history.PushBack(value)
		return
	}

	capacity := len(history.slots)
	source := (history.front + index) % capacity
	// destination is the exclusive end of the occupied run. A back of
	// zero means the run ends at the array boundary.
	destination := history.back
	if destination == 0 {
		destination = capacity
	}

	switch {
	case source == destination-1:
		// Already the newest element.
	case source < destination:
		rotateLeft(history.slots[source:destination])
	default:
		// The run from source to the newest element wraps past the end
		// of the array: shift both halves, then exchange the element
		// that fell off the end of the upper half with the one that
		// fell off the lower half.
		rotateLeft(history.slots[source:capacity])
		rotateLeft(history.slots[0:destination])
		history.slots[capacity-1], history.slots[destination-1] =
			history.slots[destination-1], history.slots[capacity-1]
	}
}

// Get returns the element at the given logical index (0 is the oldest).
// The second result is false when the index is out of range.
func (history *History[T]) Get(index int) (T, bool) {
	if index < 0 || index >= history.Size() {
		var zero T
		return zero, false
	}
	cell := history.slots[(history.front+index)%len(history.slots)]
	return cell.value, cell.occupied
}

// SearchTowardOldest scans logical indices from startAt down to 0 and
// returns the first index whose element satisfies predicate. A startAt
// past the newest element starts at the newest element.
func (history *History[T]) SearchTowardOldest(predicate func(T) bool, startAt int) (int, bool) {
	if newest := history.Size() - 1; startAt > newest {
		startAt = newest
	}
	for index := startAt; index >= 0; index-- {
		if value, ok := history.Get(index); ok && predicate(value) {
			return index, true
		}
	}
	return 0, false
}

// SearchTowardNewest scans logical indices from startAt up to the newest
// element and returns the first index whose element satisfies predicate.
// A negative startAt starts at the oldest element.
func (history *History[T]) SearchTowardNewest(predicate func(T) bool, startAt int) (int, bool) {
	if startAt < 0 {
		startAt = 0
	}
	size := history.Size()
	for index := startAt; index < size; index++ {
		if value, ok := history.Get(index); ok && predicate(value) {
			return index, true
		}
	}
	return 0, false
}

// IterFromBack returns a sequence of the stored elements from newest to
// oldest. Each range over the returned sequence starts from the newest
// element again.
func (history *History[T]) IterFromBack() iter.Seq[T] {
	return func(yield func(T) bool) {
		for index := history.Size() - 1; index >= 0; index-- {
			value, _ := history.Get(index)
			if !yield(value) {
				return
			}
		}
	}
}

func rotateLeft[T any](cells []slot[T]) {
	if len(cells) < 2 {
		return
	}
	first := cells[0]
	copy(cells, cells[1:])
	cells[len(cells)-1] = first
}
