// Package value provides the structured-data model used by the dynkv store.
// It defines a tagged variant type (Value) over the six JSON-representable
// shapes: null, booleans, numbers, strings, ordered arrays and ordered
// objects.
//
// The package focuses on:
//   - A single, copyable Value type with kind predicates and typed accessors
//   - Deterministic object field order (insertion order is preserved)
//   - Deep equality (Equal) independent of field order
//   - Shallow merge semantics (Merge) for record-style updates
//
// Key Components:
//
//   - Value: The tagged variant. The zero Value is null. Scalar constructors
//     (Null, Bool, Number, Int, String) build leaves; Array and Object build
//     containers. Object fields are mutated in place via Set/Delete, so a
//     copied object Value shares its field set with the original.
//
//   - Kind: The discriminator enum. Code that needs to branch on shape can
//     switch on Value.Kind() or use the IsX predicates.
//
//   - Merge: Combines two objects by overwriting top-level fields only.
//     Nested objects are replaced wholesale, never merged recursively.
//
// Serialization to and from wire text is deliberately not part of this
// package; see the codec package for that. The String method renders a
// JSON-like form for diagnostics only.
package value
