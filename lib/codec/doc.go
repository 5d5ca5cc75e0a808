// Package codec converts structured values to and from their transport text
// representation. It sits between the value model and the physical property
// slots: the dynkv store encodes every logical value through a codec before
// writing and decodes on read.
//
// The package focuses on:
//   - A small codec interface (ICodec) with a single JSON implementation
//   - Typed, testable failure outcomes instead of panics
//   - Deterministic output (object fields encode in insertion order)
//
// Key Components:
//
//   - ICodec Interface: Encode turns a value.Value into text, Decode parses
//     text back. Both directions are pure functions.
//
//   - Error System: Encode fails with *SerializationError when a value has
//     no representation in the encoding (NaN or infinite numbers, nesting
//     beyond the supported depth). Decode fails with *CorruptDataError when
//     the text is not valid JSON or contains trailing content. Callers can
//     distinguish the two with errors.As.
//
// The codec may return errors freely; it is not part of the store's
// sentinel-based public boundary. The store catches codec errors and
// converts them into its own logged, sentinel-returning contract.
package codec
