package domain

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DaysPerWeek is the number of day columns in a plan; day 0 is Monday.
const DaysPerWeek = 7

// MealType names a meal row of the weekly grid.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists the meal rows in display and persistence order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// Valid reports whether m is a known meal type.
func (m MealType) Valid() bool {
	return m.order() >= 0
}

// SingleOccupant reports whether a slot of this meal type holds at most one
// recipe. Only snacks accept several.
func (m MealType) SingleOccupant() bool {
	return m != Snack
}

func (m MealType) order() int {
	for i, t := range MealTypes {
		if t == m {
			return i
		}
	}
	return -1
}

// ParseMealType validates s as a meal type.
func ParseMealType(s string) (MealType, error) {
	m := MealType(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown meal type %q", ErrInvalidSlot, s)
	}
	return m, nil
}

// SlotKey addresses one cell of the weekly grid.
type SlotKey struct {
	Day  int
	Meal MealType
}

// Valid reports whether the key is inside the grid.
func (k SlotKey) Valid() bool {
	return k.Day >= 0 && k.Day < DaysPerWeek && k.Meal.Valid()
}

func (k SlotKey) less(o SlotKey) bool {
	if k.Day != o.Day {
		return k.Day < o.Day
	}
	return k.Meal.order() < o.Meal.order()
}

func (k SlotKey) String() string {
	return fmt.Sprintf("day%d/%s", k.Day, k.Meal)
}

// Header is the persisted weekplan record that owns the entries.
type Header struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"`
	Title     string     `json:"title"`
	StartDate *time.Time `json:"startDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// DateOnly truncates t to midnight UTC of its calendar day in t's own
// location. A plan's start date carries no time of day.
func DateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	out := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &out
}

// HeaderUpdate carries the mutable header fields.
type HeaderUpdate struct {
	Title     string
	StartDate *time.Time
}

// Entry is one persisted (plan, slot, recipe) row. Sequence orders the recipes
// within a slot.
type Entry struct {
	ID         string    `json:"id"`
	WeekplanID string    `json:"weekplanId"`
	Day        int       `json:"day"`
	Meal       MealType  `json:"meal"`
	RecipeID   string    `json:"recipeId"`
	Sequence   int       `json:"sequence"`
	CreatedAt  time.Time `json:"createdAt"`
}

// EntryCreate is an insert request for an Entry.
type EntryCreate struct {
	WeekplanID string
	Day        int
	Meal       MealType
	RecipeID   string
	Sequence   int
}

// WeekplanStore is the port for weekplan persistence.
type WeekplanStore interface {
	CreateHeader(ctx context.Context, ownerID, title string, startDate *time.Time) (*Header, error)
	UpdateHeader(ctx context.Context, id string, fields HeaderUpdate) (*Header, error)
	GetHeader(ctx context.Context, id string) (*Header, error)
	ListHeadersForOwner(ctx context.Context, ownerID string) ([]Header, error)
	DeleteHeader(ctx context.Context, ownerID, id string) error
	ListEntriesForPlan(ctx context.Context, weekplanID string) ([]Entry, error)
	DeleteEntry(ctx context.Context, entryID string) error
	BulkInsertEntries(ctx context.Context, entries []EntryCreate) ([]Entry, error)
}

// EntryReplacer is implemented by stores that can swap all entries of a plan
// in one atomic step.
type EntryReplacer interface {
	ReplaceEntries(ctx context.Context, weekplanID string, entries []EntryCreate) ([]Entry, error)
}

// SortEntries orders entries by day, meal and sequence.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		ka, kb := SlotKey{a.Day, a.Meal}, SlotKey{b.Day, b.Meal}
		if ka != kb {
			return ka.less(kb)
		}
		return a.Sequence < b.Sequence
	})
}
