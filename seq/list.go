package seq

import (
	"fmt"
	"iter"
	"slices"
)

// Destructor releases an element the list discards.
type Destructor[T any] func(T)

// List is a growable, index-addressed sequence of owned elements.
type List[T any] struct {
	items   []T // len(items) is the capacity; [0, count) are live
	count   int
	destroy Destructor[T]
}

// New creates an empty List. destroy may be nil when elements need no cleanup.
func New[T any](destroy Destructor[T], capacity int) *List[T] {
	if capacity < 0 {
		panic(fmt.Sprintf("seq: negative capacity %d", capacity))
	}
	return &List[T]{
		items:   make([]T, capacity),
		destroy: destroy,
	}
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return l.count
}

// Cap returns the number of elements the list holds before growing.
func (l *List[T]) Cap() int {
	return len(l.items)
}

// PushBack appends v.
func (l *List[T]) PushBack(v T) {
	if l.count == len(l.items) {
		l.grow(l.count + 1)
	}
	l.items[l.count] = v
	l.count++
}

// PushFront prepends v.
func (l *List[T]) PushFront(v T) {
	l.Insert(0, v)
}

// Insert places v at index i, shifting later elements up. i may equal Len.
func (l *List[T]) Insert(i int, v T) {
	if i < 0 || i > l.count {
		panic(fmt.Sprintf("seq: insert index %d out of range [0, %d]", i, l.count))
	}
	if l.count == len(l.items) {
		l.grow(l.count + 1)
	}
	copy(l.items[i+1:l.count+1], l.items[i:l.count])
	l.items[i] = v
	l.count++
}

// PopBack removes and returns the last element. The caller takes ownership.
func (l *List[T]) PopBack() T {
	if l.count == 0 {
		panic("seq: pop from empty list")
	}
	l.count--
	v := l.items[l.count]
	var zero T
	l.items[l.count] = zero
	return v
}

// PopFront removes and returns the first element. The caller takes ownership.
func (l *List[T]) PopFront() T {
	if l.count == 0 {
		panic("seq: pop from empty list")
	}
	return l.Take(0)
}

// At returns the element at index i.
func (l *List[T]) At(i int) T {
	l.checkIndex(i)
	return l.items[i]
}

// Front returns the first element.
func (l *List[T]) Front() T {
	return l.At(0)
}

// Back returns the last element.
func (l *List[T]) Back() T {
	return l.At(l.count - 1)
}

// Set stores v at index i and returns the element it replaced, whose ownership
// passes to the caller.
func (l *List[T]) Set(i int, v T) T {
	l.checkIndex(i)
	old := l.items[i]
	l.items[i] = v
	return old
}

// Take removes the element at index i and returns it without destroying it.
func (l *List[T]) Take(i int) T {
	l.checkIndex(i)
	v := l.items[i]
	copy(l.items[i:l.count-1], l.items[i+1:l.count])
	l.count--
	var zero T
	l.items[l.count] = zero
	return v
}

// Erase removes the element at index i and destroys it.
func (l *List[T]) Erase(i int) {
	v := l.Take(i)
	l.release(v)
}

// Resize sets the length to n. Growing leaves the new slots at their zero
// value for the caller to fill with Set; shrinking destroys every element at
// index n or above.
func (l *List[T]) Resize(n int) {
	if n < 0 {
		panic(fmt.Sprintf("seq: negative length %d", n))
	}
	if n < l.count {
		l.discard(n)
		return
	}
	if n > len(l.items) {
		l.grow(n)
	}
	l.count = n
}

// Clear destroys every element and keeps the capacity.
func (l *List[T]) Clear() {
	l.discard(0)
}

// Free destroys every element and drops the backing storage.
func (l *List[T]) Free() {
	l.Clear()
	l.items = nil
}

// Sort orders the elements by cmp, which returns a negative number when a < b,
// zero when equal and a positive number when a > b. A stable sort keeps equal
// elements in their current relative order.
func (l *List[T]) Sort(cmp func(a, b T) int, stable bool) {
	if stable {
		slices.SortStableFunc(l.items[:l.count], cmp)
		return
	}
	slices.SortFunc(l.items[:l.count], cmp)
}

// SortStable is Sort(cmp, true).
func (l *List[T]) SortStable(cmp func(a, b T) int) {
	l.Sort(cmp, true)
}

// SortUnstable is Sort(cmp, false).
func (l *List[T]) SortUnstable(cmp func(a, b T) int) {
	l.Sort(cmp, false)
}

// All returns an iterator over index/element pairs in order.
// The list must not be modified during iteration.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < l.count; i++ {
			if !yield(i, l.items[i]) {
				return
			}
		}
	}
}

// discard destroys the elements in [from, count) and truncates to from.
func (l *List[T]) discard(from int) {
	var zero T
	for i := from; i < l.count; i++ {
		v := l.items[i]
		l.items[i] = zero
		l.release(v)
	}
	l.count = from
}

func (l *List[T]) release(v T) {
	if l.destroy != nil {
		l.destroy(v)
	}
}

// grow doubles the capacity until it holds at least need elements.
func (l *List[T]) grow(need int) {
	newCap := max(len(l.items)*2, 4)
	for newCap < need {
		newCap *= 2
	}
	items := make([]T, newCap)
	copy(items, l.items[:l.count])
	l.items = items
}

func (l *List[T]) checkIndex(i int) {
	if i < 0 || i >= l.count {
		panic(fmt.Sprintf("seq: index %d out of range [0, %d)", i, l.count))
	}
}
