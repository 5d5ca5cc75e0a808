// Package hosttesting provides a shared contract test suite for
// implementations of the host.PropertyBag interface.
//
// Backend packages call RunPropertyBagTests from their own tests with a
// factory producing fresh bags; the suite then exercises the full interface
// contract: get/set/delete behavior, enumeration stability, clear-all, byte
// accounting and both byte ceilings. Assertions are limited to what the
// interface promises. In particular, enumeration order is only checked for
// stability and current-state accuracy, never for a specific ordering, so
// insertion-ordered and lexicographic backends both pass.
package hosttesting
