package game

import (
	"fmt"
	"strings"
)

// Inventory is an ordered list of item names.
type Inventory []string

func (inv Inventory) IndexOf(item string) int {
	for i, it := range inv {
		if it == item {
			return i
		}
	}
	return -1
}

func (inv Inventory) Contains(item string) bool {
	return inv.IndexOf(item) >= 0
}

// RemoveFirst drops the first occurrence of item.
func (inv Inventory) RemoveFirst(item string) (Inventory, bool) {
	i := inv.IndexOf(item)
	if i < 0 {
		return inv, false
	}
	out := make(Inventory, 0, len(inv)-1)
	out = append(out, inv[:i]...)
	return append(out, inv[i+1:]...), true
}

// Slots pads the inventory to n entries with nil.
func (inv Inventory) Slots(n int) []*string {
	if len(inv) > n {
		n = len(inv)
	}
	out := make([]*string, n)
	for i := range inv {
		out[i] = strPtr(inv[i])
	}
	return out
}

func IsSeed(item string) bool {
	return strings.Contains(item, "Seed")
}

// Split separates seeds from harvested crops.
func (inv Inventory) Split() (seeds, crops Inventory) {
	for _, it := range inv {
		if IsSeed(it) {
			seeds = append(seeds, it)
		} else {
			crops = append(crops, it)
		}
	}
	return seeds, crops
}

type ItemCount struct {
	Name  string
	Count int
}

// Counts groups items in first-seen order.
func (inv Inventory) Counts() []ItemCount {
	var out []ItemCount
	idx := map[string]int{}
	for _, it := range inv {
		i, ok := idx[it]
		if !ok {
			idx[it] = len(out)
			out = append(out, ItemCount{Name: it, Count: 1})
			continue
		}
		out[i].Count++
	}
	return out
}

// String renders "Carrot Seed: 2, Carrot: 1".
func (inv Inventory) String() string {
	counts := inv.Counts()
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s: %d", c.Name, c.Count)
	}
	return strings.Join(parts, ", ")
}
