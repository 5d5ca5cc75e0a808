package value

// Merge combines two objects by overwriting top-level fields only: every
// field of overlay replaces the field of the same name in base wholesale,
// without recursing into nested objects. Fields of base that overlay does
// not name are kept. Neither input is modified; the result is a new object
// whose field order is base's order followed by overlay-only fields in
// overlay order.
//
// The merge is intentionally shallow. Entries stored through this library
// are flat records (counters, settings and the like), and replacing nested
// structures wholesale keeps the update semantics predictable.
//
// Non-object inputs degrade gracefully: if base is not an object it is
// treated as empty, and if overlay is not an object the result is a copy
// of base.
func Merge(base, overlay Value) Value {
	merged := Object()
	if base.IsObject() {
		for _, k := range base.objVal.keys {
			merged.Set(k, base.objVal.vals[k])
		}
	}
	if overlay.IsObject() {
		for _, k := range overlay.objVal.keys {
			merged.Set(k, overlay.objVal.vals[k])
		}
	}
	return merged
}
