package dynkv

import (
	"github.com/fwdslash/dynkv/lib/value"
)

// --------------------------------------------------------------------------
// Iterators
// --------------------------------------------------------------------------

// Iterator walks the store's entries in enumeration order. It is a cursor
// over the logical keys present when it was created; values are read lazily
// on each Next call, so an entry deleted after creation is skipped and an
// entry mutated after creation yields its current value.
//
// Iterators are finite and single-use. Call Entries again for a fresh
// cursor reflecting the store's state at that time.
type Iterator struct {
	store *storeImpl
	keys  []string
	pos   int
}

// Next returns the next readable entry. Entries whose stored text fails to
// decode are logged by the underlying read and skipped, not yielded. The
// boolean return value is false when the iterator is exhausted.
func (it *Iterator) Next() (Entry, bool) {
	for it.pos < len(it.keys) {
		key := it.keys[it.pos]
		it.pos++

		if v, ok := it.store.Get(key); ok {
			return Entry{Key: key, Value: v}, true
		}
	}
	return Entry{}, false
}

// ValueIterator walks values only, with the same semantics as Iterator.
type ValueIterator struct {
	it *Iterator
}

// Next returns the next readable value. The boolean return value is false
// when the iterator is exhausted.
func (vi *ValueIterator) Next() (value.Value, bool) {
	entry, ok := vi.it.Next()
	return entry.Value, ok
}

// --------------------------------------------------------------------------
// Interface Methods (docu see dynkv.IStore)
// --------------------------------------------------------------------------

func (s *storeImpl) Entries() *Iterator {
	return &Iterator{store: s, keys: s.Keys()}
}

func (s *storeImpl) Values() *ValueIterator {
	return &ValueIterator{it: s.Entries()}
}

func (s *storeImpl) Find(pred func(val value.Value, key string) bool) (value.Value, bool) {
	it := s.Entries()
	for entry, ok := it.Next(); ok; entry, ok = it.Next() {
		if pred(entry.Value, entry.Key) {
			return entry.Value, true
		}
	}
	return value.Null(), false
}

func (s *storeImpl) ForEach(fn func(val value.Value, key string)) {
	it := s.Entries()
	for entry, ok := it.Next(); ok; entry, ok = it.Next() {
		fn(entry.Value, entry.Key)
	}
}
