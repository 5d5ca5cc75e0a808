package host

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry is a process-wide mapping from owner id to the PropertyBag bound
// to that owner. Independent call sites (different event handlers) that
// address the same owner must share one bag, since the bag is the source of
// truth for that owner's slots.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	bags *xsync.MapOf[string, PropertyBag]
}

// NewRegistry creates an empty owner registry.
func NewRegistry() *Registry {
	return &Registry{
		bags: xsync.NewMapOf[string, PropertyBag](),
	}
}

// Register binds a bag to an owner id, replacing any previous binding.
func (r *Registry) Register(ownerID string, bag PropertyBag) {
	r.bags.Store(ownerID, bag)
}

// Lookup returns the bag bound to an owner id.
func (r *Registry) Lookup(ownerID string) (PropertyBag, bool) {
	return r.bags.Load(ownerID)
}

// LoadOrCreate returns the bag bound to an owner id, creating and binding
// one via factory if no binding exists. Concurrent callers for the same id
// observe the same bag.
func (r *Registry) LoadOrCreate(ownerID string, factory func() PropertyBag) PropertyBag {
	bag, _ := r.bags.LoadOrCompute(ownerID, factory)
	return bag
}

// Remove drops the binding for an owner id. The bag itself is not touched.
func (r *Registry) Remove(ownerID string) {
	r.bags.Delete(ownerID)
}

// Size returns the number of registered owners.
func (r *Registry) Size() int {
	return r.bags.Size()
}
