package hosttesting

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/fwdslash/dynkv/lib/host"
)

// BagFactory is a function that creates a fresh, empty bag for one test.
// The returned limits must be the ones the bag actually enforces.
type BagFactory func() host.PropertyBag

// RunPropertyBagTests runs the shared contract test suite for a PropertyBag
// implementation.
func RunPropertyBagTests(t *testing.T, name string, factory BagFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Enumerate", func(t *testing.T) {
			testEnumerate(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("ByteCount", func(t *testing.T) {
			testByteCount(t, factory())
		})

		t.Run("SlotLimit", func(t *testing.T) {
			testSlotLimit(t, factory())
		})

		t.Run("TotalLimit", func(t *testing.T) {
			testTotalLimit(t, factory())
		})

		t.Run("ConcurrentAccess", func(t *testing.T) {
			testConcurrentAccess(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, bag host.PropertyBag) {
	if err := bag.SetProperty("alpha", "one"); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}

	got, ok := bag.GetProperty("alpha")
	if !ok {
		t.Errorf("Expected slot alpha to exist after SetProperty")
	}
	if got != "one" {
		t.Errorf("Expected value %q, got %q", "one", got)
	}

	// overwrite keeps a single slot
	if err := bag.SetProperty("alpha", "two"); err != nil {
		t.Fatalf("SetProperty overwrite failed: %v", err)
	}
	got, _ = bag.GetProperty("alpha")
	if got != "two" {
		t.Errorf("Expected overwritten value %q, got %q", "two", got)
	}
	if n := len(bag.PropertyIDs()); n != 1 {
		t.Errorf("Expected 1 slot after overwrite, got %d", n)
	}

	if _, ok := bag.GetProperty("nonexistent"); ok {
		t.Errorf("Expected nonexistent slot to return ok=false")
	}
}

func testDelete(t *testing.T, bag host.PropertyBag) {
	if err := bag.SetProperty("alpha", "one"); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}

	if err := bag.DeleteProperty("alpha"); err != nil {
		t.Errorf("DeleteProperty failed: %v", err)
	}
	if _, ok := bag.GetProperty("alpha"); ok {
		t.Errorf("Expected slot alpha to be gone after delete")
	}

	// deleting an absent slot is a no-op
	if err := bag.DeleteProperty("alpha"); err != nil {
		t.Errorf("Deleting absent slot should not fail, got %v", err)
	}
	if err := bag.DeleteProperty("never-existed"); err != nil {
		t.Errorf("Deleting unknown slot should not fail, got %v", err)
	}
}

func testEnumerate(t *testing.T, bag host.PropertyBag) {
	want := map[string]bool{"a": true, "b": true, "c": true}
	for id := range want {
		if err := bag.SetProperty(id, "v-"+id); err != nil {
			t.Fatalf("SetProperty failed: %v", err)
		}
	}

	ids := bag.PropertyIDs()
	if len(ids) != len(want) {
		t.Fatalf("Expected %d slot ids, got %d (%v)", len(want), len(ids), ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("Unexpected slot id %q in enumeration", id)
		}
	}

	// enumeration of an unchanged bag is stable
	again := bag.PropertyIDs()
	if strings.Join(ids, ",") != strings.Join(again, ",") {
		t.Errorf("Enumeration order changed without writes: %v vs %v", ids, again)
	}

	// enumeration reflects current state after a delete
	if err := bag.DeleteProperty("b"); err != nil {
		t.Fatalf("DeleteProperty failed: %v", err)
	}
	for _, id := range bag.PropertyIDs() {
		if id == "b" {
			t.Errorf("Deleted slot id still enumerated")
		}
	}
}

func testClear(t *testing.T, bag host.PropertyBag) {
	for i := 0; i < 5; i++ {
		if err := bag.SetProperty(fmt.Sprintf("key-%d", i), "value"); err != nil {
			t.Fatalf("SetProperty failed: %v", err)
		}
	}

	if err := bag.ClearProperties(); err != nil {
		t.Fatalf("ClearProperties failed: %v", err)
	}
	if n := len(bag.PropertyIDs()); n != 0 {
		t.Errorf("Expected empty enumeration after clear, got %d ids", n)
	}
	if total := bag.TotalByteCount(); total != 0 {
		t.Errorf("Expected 0 total bytes after clear, got %d", total)
	}

	// the bag stays usable after a clear
	if err := bag.SetProperty("alpha", "one"); err != nil {
		t.Errorf("SetProperty after clear failed: %v", err)
	}
}

func testByteCount(t *testing.T, bag host.PropertyBag) {
	if total := bag.TotalByteCount(); total != 0 {
		t.Fatalf("Expected empty bag to report 0 bytes, got %d", total)
	}

	if err := bag.SetProperty("ab", "1234"); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	if total := bag.TotalByteCount(); total != 6 {
		t.Errorf("Expected 6 bytes (2 id + 4 value), got %d", total)
	}

	// overwrite replaces, not accumulates
	if err := bag.SetProperty("ab", "12"); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	if total := bag.TotalByteCount(); total != 4 {
		t.Errorf("Expected 4 bytes after shrinking overwrite, got %d", total)
	}

	if err := bag.DeleteProperty("ab"); err != nil {
		t.Fatalf("DeleteProperty failed: %v", err)
	}
	if total := bag.TotalByteCount(); total != 0 {
		t.Errorf("Expected 0 bytes after delete, got %d", total)
	}
}

func testSlotLimit(t *testing.T, bag host.PropertyBag) {
	limits := bag.Limits()
	if limits.MaxSlotBytes <= 0 {
		t.Skip()
	}

	oversized := strings.Repeat("x", limits.MaxSlotBytes+1)
	err := bag.SetProperty("big", oversized)
	if err == nil {
		t.Fatalf("Expected oversized slot write to fail")
	}
	if !host.IsCapacity(err) {
		t.Errorf("Expected a capacity error, got %v", err)
	}
	if _, ok := bag.GetProperty("big"); ok {
		t.Errorf("Failed write must leave no slot behind")
	}

	// a value exactly at the limit is accepted
	exact := strings.Repeat("x", limits.MaxSlotBytes)
	if err := bag.SetProperty("big", exact); err != nil {
		t.Errorf("Expected write at the slot limit to succeed, got %v", err)
	}
}

func testTotalLimit(t *testing.T, bag host.PropertyBag) {
	limits := bag.Limits()
	if limits.MaxTotalBytes <= 0 {
		t.Skip()
	}

	// fill the bag close to the ceiling with limit-sized slots
	chunk := limits.MaxSlotBytes
	if chunk <= 0 || chunk > limits.MaxTotalBytes {
		chunk = limits.MaxTotalBytes / 2
	}
	filler := strings.Repeat("x", chunk)

	var err error
	for i := 0; err == nil && i < limits.MaxTotalBytes/chunk+2; i++ {
		err = bag.SetProperty(fmt.Sprintf("fill-%04d", i), filler)
	}
	if err == nil {
		t.Fatalf("Expected the total byte ceiling to reject a write eventually")
	}
	if !host.IsCapacity(err) {
		t.Errorf("Expected a capacity error, got %v", err)
	}
	if total := bag.TotalByteCount(); total > limits.MaxTotalBytes {
		t.Errorf("Bag reports %d bytes, above the %d ceiling", total, limits.MaxTotalBytes)
	}
}

func testConcurrentAccess(t *testing.T, bag host.PropertyBag) {
	const workers = 8
	const writes = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				id := fmt.Sprintf("w%d-k%d", w, i)
				if err := bag.SetProperty(id, "v"); err != nil {
					t.Errorf("concurrent SetProperty failed: %v", err)
					return
				}
				if _, ok := bag.GetProperty(id); !ok {
					t.Errorf("concurrent GetProperty missed slot %q", id)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if n := len(bag.PropertyIDs()); n != workers*writes {
		t.Errorf("Expected %d slots after concurrent writes, got %d", workers*writes, n)
	}
}
