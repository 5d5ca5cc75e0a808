// Package bolthost provides the bbolt-backed implementation of the
// host.PropertyBag interface.
//
// Each owner is one bucket in the database file, named after the owner id,
// so any number of owners can share a file. Slot enumeration follows bbolt
// cursor order (lexicographic by slot id), which satisfies the interface's
// "reflects current state" contract. Byte ceilings are checked inside the
// write transaction, so a rejected write leaves the bucket untouched.
//
// Use Open to create a bag that owns its database handle, or New to attach
// a bag to an already-open database shared with other owners.
package bolthost
