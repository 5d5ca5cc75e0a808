// Package host defines the boundary to the property backend: the flat,
// size-constrained, per-owner string store that holds all physical state.
//
// The package focuses on:
//   - A unified interface (PropertyBag) for per-owner slot storage
//   - Tagged owner kinds (world, actor, player-like actor)
//   - Configurable byte ceilings (Limits) with sensible defaults
//   - Typed capacity and backend errors via Error and RetCode
//   - A concurrent owner registry shared by independent call sites
//
// Key Components:
//
//   - PropertyBag Interface: The core abstraction every backend implements.
//     It offers get/set/delete by slot id, slot enumeration, clear-all and a
//     live total byte count. All implementations must be safe for
//     concurrent use; enumeration order is backend defined and only
//     guaranteed to reflect current state.
//
//   - Limits: Per-slot and per-owner byte ceilings that bags enforce on
//     every write. A write that would break a ceiling fails with a typed
//     error and leaves the bag unchanged. The higher dynkv layer relies on
//     the per-slot ceiling to decide when to chunk a value.
//
//   - Error System: A structured error mechanism using typed error codes
//     (RetCSlotTooLarge, RetCCapacityExceeded, RetCInternalError) and
//     descriptive messages, with the IsCapacity helper for the common
//     "did this fail because of a byte ceiling" question.
//
//   - Registry: A process-wide, concurrency-safe owner-id to bag mapping so
//     every handler addressing the same owner operates on the same bag.
//
// Implementations:
//
//	The package includes two implementations of the PropertyBag interface:
//
//	- In-memory bag (memhost): Mutex-guarded map with insertion-ordered
//	  enumeration and write fault injection for tests. Suitable for tests
//	  and for hosts that persist elsewhere.
//	  Available in the "github.com/fwdslash/dynkv/lib/host/memhost" package.
//
//	- bbolt bag (bolthost): One bucket per owner in a bbolt database file,
//	  with lexicographic enumeration. Suitable when slots must survive
//	  process restarts.
//	  Available in the "github.com/fwdslash/dynkv/lib/host/bolthost" package.
package host
