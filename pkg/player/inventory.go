package player

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientItems = errors.New("insufficient items")
)

// Entry is one held item stack. AcquiredOnDay is the day the first unit of
// the stack was acquired; restocking does not move it.
type Entry struct {
	Item          string `json:"item"`
	Count         int    `json:"count"`
	AcquiredOnDay int    `json:"acquired_on_day"`
}

// Inventory holds item stacks in the order they were first acquired.
type Inventory struct {
	order   []string
	entries map[string]*Entry
}

func NewInventory() *Inventory {
	return &Inventory{entries: make(map[string]*Entry)}
}

// Add puts count units of item into the inventory. Non-positive counts are ignored.
func (inv *Inventory) Add(item string, count, day int) {
	if count <= 0 {
		return
	}
	if e, ok := inv.entries[item]; ok {
		e.Count += count
		return
	}
	inv.entries[item] = &Entry{Item: item, Count: count, AcquiredOnDay: day}
	inv.order = append(inv.order, item)
}

// Remove takes count units of item. The inventory is unchanged on error.
func (inv *Inventory) Remove(item string, count int) error {
	e, ok := inv.entries[item]
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, item)
	}
	if count > e.Count {
		return fmt.Errorf("%w: have %d %s, need %d", ErrInsufficientItems, e.Count, item, count)
	}
	if count <= 0 {
		return nil
	}
	e.Count -= count
	if e.Count == 0 {
		inv.drop(item)
	}
	return nil
}

func (inv *Inventory) drop(item string) {
	delete(inv.entries, item)
	for i, id := range inv.order {
		if id == item {
			inv.order = append(inv.order[:i], inv.order[i+1:]...)
			return
		}
	}
}

func (inv *Inventory) Has(item string, count int) bool {
	return inv.Count(item) >= count
}

func (inv *Inventory) Count(item string) int {
	if e, ok := inv.entries[item]; ok {
		return e.Count
	}
	return 0
}

func (inv *Inventory) Len() int {
	return len(inv.order)
}

// ExpireCheck removes every entry whose age exceeds its shelf life and
// returns the removed item ids in insertion order. Items without a
// shelf-life rule never expire.
func (inv *Inventory) ExpireCheck(currentDay int, shelfLife map[string]int) []string {
	var expired []string
	for _, id := range inv.order {
		life, ok := shelfLife[id]
		if !ok || life < 0 {
			continue
		}
		if currentDay-inv.entries[id].AcquiredOnDay > life {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		inv.drop(id)
	}
	return expired
}

// Entries returns copies of the held stacks in insertion order.
func (inv *Inventory) Entries() []Entry {
	out := make([]Entry, 0, len(inv.order))
	for _, id := range inv.order {
		out = append(out, *inv.entries[id])
	}
	return out
}

func (inv *Inventory) MarshalJSON() ([]byte, error) {
	return json.Marshal(inv.Entries())
}

func (inv *Inventory) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	inv.order = nil
	inv.entries = make(map[string]*Entry, len(entries))
	for _, e := range entries {
		if e.Count <= 0 {
			continue
		}
		if existing, ok := inv.entries[e.Item]; ok {
			existing.Count += e.Count
			continue
		}
		entry := e
		inv.entries[e.Item] = &entry
		inv.order = append(inv.order, e.Item)
	}
	return nil
}
