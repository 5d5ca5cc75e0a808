package dynkv

import (
	"fmt"

	"github.com/fwdslash/dynkv/lib/value"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Entry is one logical key/value pair as seen by API callers.
type Entry struct {
	Key   string
	Value value.Value
}

// IStore is the interface of the chunked dynamic key-value store. One store
// instance is bound to exactly one property bag (its owner) for its
// lifetime.
//
// The interface never fails by error or panic: every operation that can
// fail returns a sentinel (false or an absent flag) and emits one
// diagnostic record describing unit, operation and cause. Calling code can
// therefore use the store without defensive error handling.
//
// Single operations are synchronous and complete before returning, but the
// store holds no lock over its bag between operations: other code sharing
// the same owner may mutate slots between two calls. In particular, Push
// (a read followed by a write) is not atomic with respect to concurrent
// Push or Set calls on the same key; the later write wins.
type IStore interface {
	// Get returns the logical value stored under key. The boolean return
	// value indicates whether a value was found. It is absent when the key
	// is invalid, no slot exists, or the stored text cannot be decoded
	// (including an inconsistent chunk manifest).
	Get(key string) (value.Value, bool)
	// Set stores an object value under key, splitting it across multiple
	// slots when the encoded form exceeds the bag's per-slot byte limit.
	// From the caller's point of view the write is all-or-nothing: on any
	// failure partially written slots are removed and Set returns false.
	Set(key string, val value.Value) bool
	// Push shallow-merges val over the value currently stored under key
	// (or over an empty object if absent) and stores the result. Top-level
	// fields of val replace existing fields wholesale; nested objects are
	// never merged recursively. Inherits all Set failure semantics.
	Push(key string, val value.Value) bool
	// Delete removes the entry under key including every chunk slot that
	// belongs to it. It returns false when the key is invalid or absent.
	Delete(key string) bool
	// Reset removes every slot of the owner unconditionally.
	Reset()
	// HasKey reports whether an entry (possibly chunked) exists under key.
	// It checks slot enumeration only and never reads the value.
	HasKey(key string) bool
	// Keys returns the logical keys currently present, in the bag's
	// enumeration order. Chunk slots are collapsed into their owning
	// logical key, which is reported exactly once.
	Keys() []string
	// Bytes returns the total byte count across all of the owner's slots,
	// as reported live by the bag. It is never cached.
	Bytes() int
	// Entries returns a fresh iterator over the entries present at call
	// time. Entries whose stored text fails to decode are logged and
	// skipped, not yielded.
	Entries() *Iterator
	// Values returns a fresh iterator over values only, with the same
	// snapshot and skip semantics as Entries.
	Values() *ValueIterator
	// Find returns the first value, in Keys order, for which pred returns
	// true. The boolean return value indicates whether a match was found.
	Find(pred func(val value.Value, key string) bool) (value.Value, bool)
	// ForEach invokes fn for every entry in Keys order. It does not stop
	// early.
	ForEach(fn func(val value.Value, key string))
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the internal error type of the store. It wraps a return code
// (of type RetCode) and a message. Errors of this type never cross the
// public boundary; they are logged and converted to sentinel returns.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCValidation:
		errorCode = "Validation"
	case RetCNotFound:
		errorCode = "NotFound"
	case RetCSerialization:
		errorCode = "Serialization"
	case RetCCorruptData:
		errorCode = "CorruptData"
	case RetCBackend:
		errorCode = "Backend"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("DynKVError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Operation executed successfully.
	RetCValidation                   // 1: Argument has the wrong shape (bad key, non-object value).
	RetCNotFound                     // 2: Operation on a key with no slots.
	RetCSerialization                // 3: Value cannot be encoded.
	RetCCorruptData                  // 4: Stored text cannot be decoded or chunk manifest is inconsistent.
	RetCBackend                      // 5: The property bag rejected a physical operation.
)
