package checklist

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is used when an item has no usable category.
const DefaultCategory = "General"

// Id prefixes for the different item origins.
const (
	PrefixGenerated = "item"
	PrefixStatic    = "static"
	PrefixCustom    = "custom"
)

// Change is a single entry in an item's change history
type Change struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Item is one trackable requirement in a project checklist
type Item struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Checked  bool     `json:"checked"`
	Notes    string   `json:"notes"`
	Changes  []Change `json:"changes"`
}

// NewItem builds a fresh unchecked item with a unique id.
func NewItem(prefix, text, category string) Item {
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}
	return Item{
		ID:       NewID(prefix),
		Text:     strings.TrimSpace(text),
		Category: category,
		Changes:  []Change{},
	}
}

// NewID returns an opaque item identifier.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	out.Changes = make([]Change, len(it.Changes))
	copy(out.Changes, it.Changes)
	return out
}

// CloneAll deep-copies a checklist. A nil input yields an empty slice.
func CloneAll(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Find returns the index of the item with the given id, or -1.
func Find(items []Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
