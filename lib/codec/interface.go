package codec

import (
	"fmt"

	"github.com/fwdslash/dynkv/lib/value"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ICodec is the interface for all value codecs. A codec converts a
// structured value to and from its transport text representation.
// Implementations must be pure: no I/O, no retained state between calls.
type ICodec interface {
	// Encode serializes a value into its transport text.
	// It returns a *SerializationError when the value cannot be encoded
	// (non-finite numbers, structures deeper than the supported limit).
	Encode(v value.Value) ([]byte, error)
	// Decode parses transport text back into a value.
	// It returns a *CorruptDataError when the text is not valid for the
	// encoding.
	Decode(data []byte) (value.Value, error)
}

// --------------------------------------------------------------------------
// Custom Error Types
// --------------------------------------------------------------------------

// SerializationError indicates that a value cannot be represented in the
// codec's transport encoding.
type SerializationError struct {
	Msg string
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("SerializationError: %s", e.Msg)
}

// CorruptDataError indicates that stored transport text cannot be decoded.
type CorruptDataError struct {
	Msg string
}

// Error implements the error interface.
func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("CorruptDataError: %s", e.Msg)
}
