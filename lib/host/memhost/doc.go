// Package memhost provides the in-memory implementation of the
// host.PropertyBag interface.
//
// Slots live in a mutex-guarded map with a separate insertion-order index,
// so enumeration is deterministic: ids come back in the order they were
// first written. Byte ceilings are enforced on every write, and a failing
// write leaves the bag unchanged.
//
// The bag additionally offers write fault injection (FailNextSet) so tests
// of higher layers can simulate a backend failure partway through a
// multi-slot write sequence.
package memhost
