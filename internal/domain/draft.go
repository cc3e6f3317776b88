package domain

import (
	"fmt"
	"sort"
)

// Draft is the editable working copy of a weekplan: an ordered recipe list per
// slot. The zero value is an empty draft. Slot cardinality is enforced by
// Assign; callers never touch the lists directly.
type Draft struct {
	slots map[SlotKey][]RecipeRef
}

// NewDraft returns an empty draft.
func NewDraft() Draft {
	return Draft{slots: make(map[SlotKey][]RecipeRef)}
}

// Assign places ref into the slot. Single-occupant slots are replaced, snack
// slots are appended to. The same recipe may appear twice in a snack slot.
func (d *Draft) Assign(key SlotKey, ref RecipeRef) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSlot, key)
	}
	if d.slots == nil {
		d.slots = make(map[SlotKey][]RecipeRef)
	}
	if key.Meal.SingleOccupant() {
		d.slots[key] = []RecipeRef{ref}
		return nil
	}
	d.slots[key] = append(d.slots[key], ref)
	return nil
}

// Remove deletes the first recipe with the given id from the slot and reports
// whether one was found.
func (d *Draft) Remove(key SlotKey, recipeID string) bool {
	list := d.slots[key]
	for i, ref := range list {
		if ref.ID != recipeID {
			continue
		}
		rest := make([]RecipeRef, 0, len(list)-1)
		rest = append(rest, list[:i]...)
		rest = append(rest, list[i+1:]...)
		if len(rest) == 0 {
			delete(d.slots, key)
		} else {
			d.slots[key] = rest
		}
		return true
	}
	return false
}

// Slot returns a copy of the recipes in the slot.
func (d Draft) Slot(key SlotKey) []RecipeRef {
	list := d.slots[key]
	if len(list) == 0 {
		return nil
	}
	out := make([]RecipeRef, len(list))
	copy(out, list)
	return out
}

// Len returns the total number of recipe placements.
func (d Draft) Len() int {
	n := 0
	for _, list := range d.slots {
		n += len(list)
	}
	return n
}

// Keys returns the occupied slots in grid order.
func (d Draft) Keys() []SlotKey {
	keys := make([]SlotKey, 0, len(d.slots))
	for k, list := range d.slots {
		if len(list) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	c := NewDraft()
	for k, list := range d.slots {
		if len(list) == 0 {
			continue
		}
		c.slots[k] = append([]RecipeRef(nil), list...)
	}
	return c
}

// Equal reports whether both drafts hold the same recipe ids in the same
// slots and order.
func (d Draft) Equal(o Draft) bool {
	dk, ok := d.Keys(), o.Keys()
	if len(dk) != len(ok) {
		return false
	}
	for i, k := range dk {
		if ok[i] != k {
			return false
		}
		a, b := d.slots[k], o.slots[k]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j].ID != b[j].ID {
				return false
			}
		}
	}
	return true
}

// Entries flattens the draft into insert requests, iterating days, then meal
// types, then list position. Sequence is the position within the slot.
func (d Draft) Entries(weekplanID string) []EntryCreate {
	out := make([]EntryCreate, 0, d.Len())
	for day := 0; day < DaysPerWeek; day++ {
		for _, meal := range MealTypes {
			for seq, ref := range d.slots[SlotKey{Day: day, Meal: meal}] {
				out = append(out, EntryCreate{
					WeekplanID: weekplanID,
					Day:        day,
					Meal:       meal,
					RecipeID:   ref.ID,
					Sequence:   seq,
				})
			}
		}
	}
	return out
}

// Slot is the serialisable form of one occupied grid cell.
type Slot struct {
	Day     int         `json:"day"`
	Meal    MealType    `json:"meal"`
	Recipes []RecipeRef `json:"recipes"`
}

// Slots lists the occupied cells in grid order.
func (d Draft) Slots() []Slot {
	keys := d.Keys()
	out := make([]Slot, 0, len(keys))
	for _, k := range keys {
		out = append(out, Slot{Day: k.Day, Meal: k.Meal, Recipes: d.Slot(k)})
	}
	return out
}

// DraftFromEntries groups persisted entries into a draft, resolving each
// recipe id through lookup. Entries with unresolved ids or out-of-grid slots
// are left out; the unresolved recipe ids are returned, each once.
func DraftFromEntries(entries []Entry, lookup func(id string) (Recipe, bool)) (Draft, []string) {
	sorted := append([]Entry(nil), entries...)
	SortEntries(sorted)

	d := NewDraft()
	var missing []string
	seen := make(map[string]bool)
	for _, e := range sorted {
		key := SlotKey{Day: e.Day, Meal: e.Meal}
		if !key.Valid() {
			continue
		}
		r, ok := lookup(e.RecipeID)
		if !ok {
			if !seen[e.RecipeID] {
				seen[e.RecipeID] = true
				missing = append(missing, e.RecipeID)
			}
			continue
		}
		// Stray extra rows in a single-occupant slot collapse to the
		// highest sequence.
		_ = d.Assign(key, r.Ref())
	}
	return d, missing
}
