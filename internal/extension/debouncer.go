package extension

import (
	"sort"
	"sync"
	"time"
)

// Debouncer coalesces bursts of key changes into a single flush.
type Debouncer struct {
	window  time.Duration
	keys    map[string]struct{}
	mu      sync.Mutex
	timer   *time.Timer
	onFlush func([]string)
	stopped bool
}

// NewDebouncer creates a debouncer that flushes after window of quiet.
func NewDebouncer(window time.Duration, onFlush func([]string)) *Debouncer {
	return &Debouncer{
		window:  window,
		keys:    make(map[string]struct{}),
		onFlush: onFlush,
	}
}

// Add records a changed key and restarts the quiet window.
func (d *Debouncer) Add(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.keys[key] = struct{}{}
	d.timer = time.AfterFunc(d.window, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.keys) == 0 {
		d.mu.Unlock()
		return
	}
	keys := make([]string, 0, len(d.keys))
	for k := range d.keys {
		keys = append(keys, k)
	}
	d.keys = make(map[string]struct{})
	d.timer = nil
	d.mu.Unlock()

	sort.Strings(keys)
	if d.onFlush != nil {
		d.onFlush(keys)
	}
}

// Stop discards pending keys and ignores further additions.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.keys = make(map[string]struct{})
}
