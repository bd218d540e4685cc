package checklist

// StaticCategory groups the reproducibility-tracking items appended to every
// generated checklist.
const StaticCategory = "Reproducibility Tracking"

var staticTexts = []string{
	"📝 Log prompt changes (if modified from initial)",
	"🌡️ Track temperature updates (if adjusted)",
	"🔄 Record model version changes (if switched)",
	"📊 Document performance metrics (if available)",
	"📌 Note data modifications or augmentations",
	"⚙️ Track hyperparameter adjustments",
	"🧪 Document test/validation results",
}

// StaticItems returns the fixed tracking items, each with a fresh id.
func StaticItems() []Item {
	items := make([]Item, 0, len(staticTexts))
	for _, text := range staticTexts {
		items = append(items, NewItem(PrefixStatic, text, StaticCategory))
	}
	return items
}

// DefaultChecklist is the fallback used when model output has no usable items.
// Its ids are stable.
func DefaultChecklist() []Item {
	return []Item{
		{
			ID:       "default-1",
			Text:     "Document initial system prompt and configuration",
			Category: "Planning",
			Changes:  []Change{},
		},
		{
			ID:       "default-2",
			Text:     "Define evaluation metrics and baselines",
			Category: "Evaluation",
			Changes:  []Change{},
		},
	}
}
