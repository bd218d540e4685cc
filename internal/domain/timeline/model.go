package timeline

import "time"

// Message texts recorded by checklist mutations.
const (
	MessageCompleted   = "Item completed"
	MessageUncompleted = "Item uncompleted"
	MessageAdded       = "Item added"
	MessageRemoved     = "Item removed from checklist"
)

// Event is an immutable record of one change to a checklist item.
// ItemText is a snapshot taken when the event was created.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	ItemID    string    `json:"itemId"`
	ItemText  string    `json:"itemText"`
	Message   string    `json:"message"`
}

// NotesUpdated formats the message recorded when a note is committed.
func NotesUpdated(notes string) string {
	return `Notes updated: "` + notes + `"`
}

// Clone copies a timeline. A nil input yields an empty slice.
func Clone(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	return out
}
