package search

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// NoMoreDocs is the doc ID reported by an exhausted iterator.
const NoMoreDocs uint32 = math.MaxUint32

// DocIDIterator enumerates matching doc IDs of one segment in increasing
// order. A fresh iterator is already positioned on its first doc (or on
// NoMoreDocs when it has none).
type DocIDIterator interface {
	// Doc returns the current doc ID, or NoMoreDocs.
	Doc() uint32

	// Next advances to the next doc and returns it.
	// Once exhausted it keeps returning NoMoreDocs.
	Next() (uint32, error)

	// Advance moves to the first doc >= target and returns it. If the
	// iterator is already at or past target it stays put.
	Advance(target uint32) (uint32, error)

	// Cost is an upper bound on the number of docs the iterator can return.
	Cost() int64
}

// AllDocsIterator matches every doc ID in [0, maxDoc).
type AllDocsIterator struct {
	cur    uint32
	maxDoc uint32
}

// NewAllDocsIterator returns an iterator over all doc IDs of a segment
// with maxDoc documents.
func NewAllDocsIterator(maxDoc uint32) *AllDocsIterator {
	it := &AllDocsIterator{maxDoc: maxDoc}
	if maxDoc == 0 {
		it.cur = NoMoreDocs
	}
	return it
}

func (it *AllDocsIterator) Doc() uint32 { return it.cur }

func (it *AllDocsIterator) Next() (uint32, error) {
	if it.cur == NoMoreDocs {
		return NoMoreDocs, nil
	}
	it.cur++
	if it.cur >= it.maxDoc {
		it.cur = NoMoreDocs
	}
	return it.cur, nil
}

func (it *AllDocsIterator) Advance(target uint32) (uint32, error) {
	if it.cur == NoMoreDocs || target <= it.cur {
		return it.cur, nil
	}
	if target >= it.maxDoc {
		it.cur = NoMoreDocs
	} else {
		it.cur = target
	}
	return it.cur, nil
}

func (it *AllDocsIterator) Cost() int64 { return int64(it.maxDoc) }

// BitmapIterator walks the set bits of a roaring bitmap.
type BitmapIterator struct {
	it   roaring.IntPeekable
	cur  uint32
	cost int64
}

// NewBitmapIterator returns an iterator over the doc IDs set in bm. The
// bitmap must not be mutated while the iterator is in use.
func NewBitmapIterator(bm *roaring.Bitmap) *BitmapIterator {
	it := &BitmapIterator{it: bm.Iterator(), cost: int64(bm.GetCardinality())}
	it.cur = it.pull()
	return it
}

func (it *BitmapIterator) pull() uint32 {
	if !it.it.HasNext() {
		return NoMoreDocs
	}
	return it.it.Next()
}

func (it *BitmapIterator) Doc() uint32 { return it.cur }

func (it *BitmapIterator) Next() (uint32, error) {
	if it.cur == NoMoreDocs {
		return NoMoreDocs, nil
	}
	it.cur = it.pull()
	return it.cur, nil
}

func (it *BitmapIterator) Advance(target uint32) (uint32, error) {
	if it.cur == NoMoreDocs || target <= it.cur {
		return it.cur, nil
	}
	it.it.AdvanceIfNeeded(target)
	it.cur = it.pull()
	return it.cur, nil
}

func (it *BitmapIterator) Cost() int64 { return it.cost }
