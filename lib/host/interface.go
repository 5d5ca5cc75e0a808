package host

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Owner Kinds
// --------------------------------------------------------------------------

// OwnerKind identifies what sort of entity a property bag belongs to.
// The bag's behavior does not depend on the kind; it exists so that
// diagnostics and tooling can tell owners apart.
type OwnerKind uint8

const (
	OwnerWorld OwnerKind = iota
	OwnerActor
	OwnerPlayerActor
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerWorld:
		return "World"
	case OwnerActor:
		return "Actor"
	case OwnerPlayerActor:
		return "PlayerActor"
	default:
		return "Unknown"
	}
}

// ParseOwnerKind converts a string name to an OwnerKind.
func ParseOwnerKind(s string) (OwnerKind, error) {
	switch s {
	case "world":
		return OwnerWorld, nil
	case "actor":
		return OwnerActor, nil
	case "player":
		return OwnerPlayerActor, nil
	default:
		return OwnerWorld, fmt.Errorf("invalid owner kind %q: must be one of world, actor, player", s)
	}
}

// --------------------------------------------------------------------------
// Byte Limits
// --------------------------------------------------------------------------

// Limits holds the byte ceilings a property bag enforces.
type Limits struct {
	// MaxSlotBytes is the maximum size of a single slot value.
	MaxSlotBytes int
	// MaxTotalBytes is the maximum aggregate size (slot ids plus values)
	// across all slots of one owner.
	MaxTotalBytes int
}

// DefaultLimits returns the default byte ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxSlotBytes:  32 * 1024,
		MaxTotalBytes: 128 * 1024,
	}
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// PropertyBag is the flat, size-constrained, per-owner string property store
// every backend must provide. It is the only true state in the system; the
// dynkv store delegates all physical reads and writes to it.
//
// Enumeration order is backend defined and only guaranteed to reflect the
// bag's current state at the time of the call. All implementations must be
// safe for concurrent use.
type PropertyBag interface {
	// Kind returns the kind of the owning entity.
	Kind() OwnerKind

	// Limits returns the byte ceilings this bag enforces.
	Limits() Limits

	// GetProperty returns the value stored under id. The boolean return
	// value indicates whether the slot exists.
	GetProperty(id string) (value string, ok bool)

	// SetProperty inserts or overwrites the slot under id. It returns a
	// *Error with code RetCSlotTooLarge or RetCCapacityExceeded when the
	// write would break a byte ceiling; the bag is left unchanged in that
	// case.
	SetProperty(id string, value string) error

	// DeleteProperty removes the slot under id. Removing an absent slot is
	// a no-op, not an error.
	DeleteProperty(id string) error

	// PropertyIDs returns all slot ids currently present. The order is
	// backend defined but stable for an unchanged bag.
	PropertyIDs() []string

	// TotalByteCount returns the aggregate byte count (slot ids plus
	// values) across all slots.
	TotalByteCount() int

	// ClearProperties removes every slot.
	ClearProperties() error
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCSlotTooLarge:
		errorCode = "SlotTooLarge"
	case RetCCapacityExceeded:
		errorCode = "CapacityExceeded"
	case RetCInternalError:
		errorCode = "InternalError"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("PropertyBagError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// IsCapacity reports whether err is a bag error caused by a byte ceiling
// (either the per-slot or the per-owner one).
func IsCapacity(err error) bool {
	if bagErr, ok := err.(*Error); ok {
		return bagErr.Code == RetCSlotTooLarge || bagErr.Code == RetCCapacityExceeded
	}
	return false
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Operation executed successfully.
	RetCSlotTooLarge                    // 1: A single slot value exceeds MaxSlotBytes.
	RetCCapacityExceeded                // 2: The write would exceed MaxTotalBytes.
	RetCInternalError                   // 3: Operation failed due to a backend error.
)
