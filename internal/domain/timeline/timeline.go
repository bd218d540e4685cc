package timeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TimestampLayout is the display format for event timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Sorted returns events newest first. Events sharing a timestamp keep their
// insertion order.
func Sorted(events []Event) []Event {
	out := Clone(events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Chronological returns events oldest first, ties in insertion order.
func Chronological(events []Event) []Event {
	out := Clone(events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// ExportJSON serializes the raw event sequence in chronological order.
func ExportJSON(events []Event) ([]byte, error) {
	data, err := json.MarshalIndent(Chronological(events), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal timeline: %w", err)
	}
	return data, nil
}

// ExportMarkdown renders one list entry per event, oldest first.
func ExportMarkdown(events []Event) string {
	var b strings.Builder
	for _, ev := range Chronological(events) {
		fmt.Fprintf(&b, "- **%s** — _%s_: %s\n", ev.Timestamp.Format(TimestampLayout), ev.ItemText, ev.Message)
	}
	return b.String()
}
