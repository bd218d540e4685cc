package checklist

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	embeddedJSONRe = regexp.MustCompile(`(?s)\{.*\}|\[.*\]`)
	lineRe         = regexp.MustCompile(`^\s*[-*\x{2022}]?\s*(?:\[[ xX]\]\s*)?(.*)$`)
	labelRe        = regexp.MustCompile(`^([^—:-]+)\s*[—:-]\s*(.+)$`)
	newlineRe      = regexp.MustCompile(`\r?\n`)
)

// Normalize converts model output into checklist items.
//
// Accepted shapes are a sequence of {text|requirement, category} objects, an
// object with an "items" sequence, JSON text of either (optionally embedded in
// prose), or loosely formatted list text. Every produced item gets a fresh id
// and empty tracking state. When nothing usable is found the default checklist
// is returned, so the result is never empty.
func Normalize(input any) []Item {
	items := normalize(input)
	if len(items) == 0 {
		return DefaultChecklist()
	}
	return items
}

func normalize(input any) []Item {
	switch v := input.(type) {
	case nil:
		return nil
	case string:
		return normalizeText(v)
	case json.RawMessage:
		return normalizeBytes(v)
	case []byte:
		return normalizeBytes(v)
	case []Item:
		out := make([]Item, 0, len(v))
		for _, it := range v {
			out = append(out, NewItem(PrefixGenerated, it.Text, it.Category))
		}
		return out
	}
	if seq, ok := sequenceOf(input); ok {
		return FromSequence(seq)
	}
	return nil
}

func normalizeBytes(data []byte) []Item {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return normalizeText(string(data))
	}
	if s, ok := parsed.(string); ok {
		return normalizeText(s)
	}
	return normalize(parsed)
}

func normalizeText(raw string) []Item {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		// Valid JSON is terminal: either it has a known shape or it is unusable.
		if inner, ok := parsed.(string); ok {
			return normalizeText(inner)
		}
		if seq, ok := sequenceOf(parsed); ok {
			return FromSequence(seq)
		}
		return nil
	}

	if sub, ok := ExtractJSON(s); ok {
		if err := json.Unmarshal([]byte(sub), &parsed); err == nil {
			if seq, ok := sequenceOf(parsed); ok {
				return FromSequence(seq)
			}
		}
	}

	return RecoverLines(s)
}

// ExtractSequence finds the item sequence in raw model text, trying a strict
// parse first and then the first {...} or [...] span.
func ExtractSequence(raw string) ([]any, bool) {
	s := strings.TrimSpace(raw)
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		if seq, ok := sequenceOf(parsed); ok {
			return seq, true
		}
	}
	if sub, ok := ExtractJSON(s); ok {
		if err := json.Unmarshal([]byte(sub), &parsed); err == nil {
			return sequenceOf(parsed)
		}
	}
	return nil, false
}

// ExtractJSON returns the first greedy {...} or [...] span in s.
func ExtractJSON(s string) (string, bool) {
	loc := embeddedJSONRe.FindStringIndex(s)
	if loc == nil {
		return "", false
	}
	return s[loc[0]:loc[1]], true
}

// FromSequence maps decoded JSON elements to items. Elements without usable
// text still produce an item with empty text.
func FromSequence(seq []any) []Item {
	items := make([]Item, 0, len(seq))
	for _, el := range seq {
		var text, category string
		if m, ok := el.(map[string]any); ok {
			text = stringField(m, "text")
			if text == "" {
				text = stringField(m, "requirement")
			}
			category = stringField(m, "category")
		}
		items = append(items, NewItem(PrefixGenerated, text, category))
	}
	return items
}

// RecoverLines extracts items from list-like text, one per non-empty line.
func RecoverLines(s string) []Item {
	var items []Item
	for _, line := range newlineRe.Split(s, -1) {
		text, category, ok := ParseLine(line)
		if !ok {
			continue
		}
		items = append(items, NewItem(PrefixGenerated, text, category))
	}
	return items
}

// ParseLine strips bullet and checkbox markers and splits an optional
// "label — requirement" prefix. Invalid UTF-8 becomes U+FFFD. ok is false
// when the line carries no text.
func ParseLine(line string) (text, category string, ok bool) {
	line = strings.ToValidUTF8(line, "\uFFFD")
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	body := strings.TrimSpace(m[1])
	if body == "" {
		return "", "", false
	}
	if parts := labelRe.FindStringSubmatch(body); parts != nil {
		return strings.TrimSpace(parts[2]), strings.TrimSpace(parts[1]), true
	}
	return body, DefaultCategory, true
}

func sequenceOf(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		seq := make([]any, len(t))
		for i := range t {
			seq[i] = t[i]
		}
		return seq, true
	case map[string]any:
		if items, ok := t["items"].([]any); ok {
			return items, true
		}
	}
	return nil, false
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
