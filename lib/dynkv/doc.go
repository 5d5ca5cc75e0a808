// Package dynkv implements the chunked dynamic key-value store: a
// JSON-capable database built on top of a flat, size-constrained property
// bag. It turns the bag's short string slots into logical entries of
// unbounded size with merge semantics and iteration.
//
// The package focuses on:
//   - Transparent chunking: values whose encoded form exceeds the bag's
//     per-slot byte limit are split across numbered chunk slots plus a
//     manifest, and reassembled on read
//   - A sentinel-based public boundary: operations never fail by error or
//     panic; failures return false/absent and emit one diagnostic record
//   - Live byte accounting delegated to the bag, which stays the single
//     source of truth
//
// Key Components:
//
//   - IStore Interface: The public operation set (Get, Set, Push, Delete,
//     Reset, HasKey, Keys, Bytes, Entries, Values, Find, ForEach). One
//     store binds to one property bag for its lifetime.
//
//   - Slot Layout: A plain entry is one slot holding the encoded value. A
//     chunked entry is a manifest slot at the logical key plus chunk slots
//     "<key>#0" through "<key>#n-1". The manifest records chunk count and
//     total length, so reconstruction never depends on enumeration order
//     and inconsistencies are detected as corrupt data. Keys may not
//     contain the separator character.
//
//   - Error System: The internal taxonomy (validation, not-found,
//     serialization, corrupt-data, backend) mirrors the failure modes of
//     the layers below. All of it is recovered at the public boundary and
//     converted to sentinel returns plus a logged record naming unit,
//     operation and cause.
//
// Consistency model:
//
//	Set is all-or-nothing from the caller's point of view: after a failed
//	multi-chunk write no partial chunk slots remain. Across operations the
//	store holds no lock over its bag, so there is no cross-call atomicity:
//	Push performs a read followed by a write, and a concurrent writer on
//	the same key between the two loses its update (last write wins). Code
//	that needs stronger guarantees must serialize writers per owner itself.
package dynkv
