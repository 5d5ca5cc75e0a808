package memhost

import (
	"fmt"
	"sync"

	"github.com/fwdslash/dynkv/lib/host"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures the in-memory bag during initialization.
type Options struct {
	Kind   host.OwnerKind // Kind of the owning entity
	Limits host.Limits    // Byte ceilings (zero value = DefaultLimits)
}

// DefaultOptions returns the default in-memory bag options.
func DefaultOptions() *Options {
	return &Options{
		Kind:   host.OwnerWorld,
		Limits: host.DefaultLimits(),
	}
}

// --------------------------------------------------------------------------
// In-Memory Property Bag
// --------------------------------------------------------------------------

// Bag is an in-memory property bag. Enumeration order is slot insertion
// order: overwriting an existing slot keeps its position, deleting and
// re-adding moves it to the end. That matches how a scripting host reports
// property ids and keeps iteration deterministic in tests.
type Bag struct {
	mu     sync.RWMutex
	kind   host.OwnerKind
	limits host.Limits
	slots  map[string]string
	order  []string
	total  int

	// failIn > 0 arms write fault injection: the failIn-th upcoming
	// SetProperty call fails with an internal error.
	failIn int
}

// New creates a new in-memory bag with the specified options (optional).
func New(opts *Options) *Bag {
	if opts == nil {
		opts = DefaultOptions()
	}
	limits := opts.Limits
	if limits.MaxSlotBytes == 0 && limits.MaxTotalBytes == 0 {
		limits = host.DefaultLimits()
	}
	return &Bag{
		kind:   opts.Kind,
		limits: limits,
		slots:  make(map[string]string),
	}
}

// FailNextSet arms fault injection: counting only SetProperty calls, the
// n-th one from now fails with an internal error and leaves the bag
// unchanged. n <= 0 disarms. Intended for tests that exercise rollback.
func (b *Bag) FailNextSet(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failIn = n
}

// --------------------------------------------------------------------------
// Interface Methods (docu see host.PropertyBag)
// --------------------------------------------------------------------------

func (b *Bag) Kind() host.OwnerKind {
	return b.kind
}

func (b *Bag) Limits() host.Limits {
	return b.limits
}

func (b *Bag) GetProperty(id string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.slots[id]
	return v, ok
}

func (b *Bag) SetProperty(id string, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failIn > 0 {
		b.failIn--
		if b.failIn == 0 {
			return host.NewError(host.RetCInternalError, "injected write fault")
		}
	}

	if b.limits.MaxSlotBytes > 0 && len(value) > b.limits.MaxSlotBytes {
		return host.NewError(host.RetCSlotTooLarge,
			fmt.Sprintf("slot %q value is %d bytes, limit is %d", id, len(value), b.limits.MaxSlotBytes))
	}

	newTotal := b.total + len(id) + len(value)
	if old, ok := b.slots[id]; ok {
		newTotal -= len(id) + len(old)
	}
	if b.limits.MaxTotalBytes > 0 && newTotal > b.limits.MaxTotalBytes {
		return host.NewError(host.RetCCapacityExceeded,
			fmt.Sprintf("write of slot %q would grow the bag to %d bytes, limit is %d", id, newTotal, b.limits.MaxTotalBytes))
	}

	if _, ok := b.slots[id]; !ok {
		b.order = append(b.order, id)
	}
	b.slots[id] = value
	b.total = newTotal
	return nil
}

func (b *Bag) DeleteProperty(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	old, ok := b.slots[id]
	if !ok {
		return nil
	}
	delete(b.slots, id)
	b.total -= len(id) + len(old)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

func (b *Bag) PropertyIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, len(b.order))
	copy(ids, b.order)
	return ids
}

func (b *Bag) TotalByteCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}

func (b *Bag) ClearProperties() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots = make(map[string]string)
	b.order = nil
	b.total = 0
	return nil
}
