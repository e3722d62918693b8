package item

import (
	"fmt"
	"sync"
)

// Inventory is the external item store the combat engine consults when a
// combatant uses a consumable. The engine reads quantities and removes one
// unit per use; all other inventory mutation belongs to the owner.
type Inventory interface {
	// Quantity returns how many units of itemID are held. Unknown ids
	// return 0.
	Quantity(itemID string) int
	// Remove consumes one unit of itemID.
	//
	// Postcondition: Returns an error and leaves the store unchanged if no
	// units are held.
	Remove(itemID string) error
}

// MemoryInventory is a map-backed Inventory for simulations and tests.
// It is safe for concurrent use.
type MemoryInventory struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryInventory creates a MemoryInventory seeded with counts. The map
// is copied; the caller keeps ownership of its argument.
func NewMemoryInventory(counts map[string]int) *MemoryInventory {
	inv := &MemoryInventory{counts: make(map[string]int, len(counts))}
	for id, n := range counts {
		if n > 0 {
			inv.counts[id] = n
		}
	}
	return inv
}

// Quantity returns how many units of itemID are held.
func (m *MemoryInventory) Quantity(itemID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[itemID]
}

// Remove consumes one unit of itemID, failing if none are held.
func (m *MemoryInventory) Remove(itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts[itemID] < 1 {
		return fmt.Errorf("no %q in inventory", itemID)
	}
	m.counts[itemID]--
	if m.counts[itemID] == 0 {
		delete(m.counts, itemID)
	}
	return nil
}

// Add stocks n units of itemID.
//
// Precondition: n must be >= 1.
func (m *MemoryInventory) Add(itemID string, n int) {
	if n < 1 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[itemID] += n
}
