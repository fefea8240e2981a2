// Package seq implements the owned dynamic sequence detectors use to collect
// candidate results.
//
// A List owns its elements: a Destructor fixed at construction runs on every
// element the list discards (Erase, Clear, Free, shrinking Resize). Removal
// that hands the element back to the caller (Take, PopBack, PopFront, Set)
// transfers ownership and never runs the destructor.
//
//	blobs := seq.New(func(b *Blob) { b.Release() }, 0)
//	defer blobs.Free()
//
//	blobs.PushBack(b)
//	blobs.SortStable(func(x, y *Blob) int { return cmp.Compare(y.Score, x.Score) })
//	best := blobs.Take(0) // caller now owns best
//
// Invalid indices, and popping an empty list, are programming errors and panic.
// A List is not safe for concurrent use.
package seq
