package extension

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rpggio/genai-tracker/internal/bridge"
	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
	"github.com/rpggio/genai-tracker/internal/repository"
)

// StateKey is the storage key holding the mirrored project.
const StateKey = repository.KeyState

var (
	// ErrNoProject indicates the mirror holds no current project.
	ErrNoProject = errors.New("no project selected")
	// ErrItemNotFound indicates the item is not in the mirrored checklist.
	ErrItemNotFound = errors.New("checklist item not found")
	// ErrEmptyMessage indicates an empty change message.
	ErrEmptyMessage = errors.New("change message is required")
	// ErrStaleState indicates an incoming state older than the mirror.
	ErrStaleState = errors.New("state older than mirror")
)

// MirrorState is the extension's copy of the current project, stored under
// StateKey.
type MirrorState struct {
	CurrentProjectID   *string                     `json:"currentProjectId"`
	CurrentProjectName *string                     `json:"currentProjectName"`
	Config             *project.Config             `json:"config"`
	Checklist          []checklist.Item            `json:"checklist"`
	Timeline           []timeline.Event            `json:"timeline"`
	Projects           map[string]*project.Project `json:"projects"`
	Version            int64                       `json:"version,omitempty"`
}

// ProjectID returns the mirrored project id or "".
func (s MirrorState) ProjectID() string {
	if s.CurrentProjectID == nil {
		return ""
	}
	return *s.CurrentProjectID
}

// ProjectName returns the mirrored project name or a placeholder.
func (s MirrorState) ProjectName() string {
	if s.CurrentProjectName == nil || *s.CurrentProjectName == "" {
		return "No project selected"
	}
	return *s.CurrentProjectName
}

// Mirror is the extension context: it stores the page's current project,
// applies popup edits to it, and sends updates back when storage changes.
type Mirror struct {
	area        repository.KeyValueStore
	ch          bridge.Channel
	logger      *slog.Logger
	now         func() time.Time
	unsubscribe func()

	mu sync.Mutex
}

// NewMirror creates a mirror over area. When ch is nil the mirror only edits
// storage; otherwise it subscribes to State messages on ch.
func NewMirror(area repository.KeyValueStore, ch bridge.Channel, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Mirror{
		area:   area,
		ch:     ch,
		logger: logger,
		now:    time.Now,
	}
	if ch != nil {
		m.unsubscribe = ch.Subscribe(m.handle)
	}
	return m
}

// SetClock overrides the time source.
func (m *Mirror) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Close stops receiving state messages.
func (m *Mirror) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// State returns the stored mirror state. Nothing stored yields an empty state.
func (m *Mirror) State(ctx context.Context) (MirrorState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(ctx)
}

// ApplyState stores the current project carried by a page State. Without a
// current project the mirror is cleared but keeps the project list. Missing
// fields fall back to the matching entry in the projects map.
func (m *Mirror) ApplyState(ctx context.Context, st bridge.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	projects := st.Projects
	if projects == nil {
		projects = map[string]*project.Project{}
	}

	if st.CurrentProjectID == nil || *st.CurrentProjectID == "" {
		return m.saveLocked(ctx, MirrorState{
			Projects:  projects,
			Checklist: []checklist.Item{},
			Timeline:  []timeline.Event{},
		})
	}

	current := *st.CurrentProjectID
	id := st.ProjectID
	if id == "" {
		id = current
	}
	fallback := projects[current]
	if fallback == nil {
		fallback = &project.Project{}
	}

	next := MirrorState{
		CurrentProjectID: &id,
		Projects:         projects,
		Checklist:        st.Checklist,
		Timeline:         st.Timeline,
		Config:           st.Config,
		Version:          st.Version,
	}
	name := st.ProjectName
	if name == "" {
		name = fallback.Name
	}
	if name != "" {
		next.CurrentProjectName = &name
	}
	if next.Config == nil && fallback.ID != "" {
		cfg := fallback.Config
		next.Config = &cfg
	}
	if next.Checklist == nil {
		next.Checklist = checklist.CloneAll(fallback.Checklist)
	}
	if next.Timeline == nil {
		next.Timeline = timeline.Clone(fallback.Timeline)
	}
	if next.Version == 0 {
		next.Version = fallback.Version
	}

	held, err := m.loadLocked(ctx)
	if err == nil && held.ProjectID() == id && next.Version > 0 && next.Version < held.Version {
		return ErrStaleState
	}
	return m.saveLocked(ctx, next)
}

// Toggle flips an item's checked flag and records the change.
func (m *Mirror) Toggle(ctx context.Context, itemID string) (MirrorState, error) {
	return m.edit(ctx, itemID, func(it *checklist.Item) (string, error) {
		it.Checked = !it.Checked
		if it.Checked {
			return timeline.MessageCompleted, nil
		}
		return timeline.MessageUncompleted, nil
	})
}

// LogChange records a free-text change against an item.
func (m *Mirror) LogChange(ctx context.Context, itemID, message string) (MirrorState, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return MirrorState{}, ErrEmptyMessage
	}
	return m.edit(ctx, itemID, func(*checklist.Item) (string, error) {
		return message, nil
	})
}

func (m *Mirror) edit(ctx context.Context, itemID string, fn func(*checklist.Item) (string, error)) (MirrorState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.loadLocked(ctx)
	if err != nil {
		return MirrorState{}, err
	}
	if st.ProjectID() == "" {
		return MirrorState{}, ErrNoProject
	}
	idx := checklist.Find(st.Checklist, itemID)
	if idx < 0 {
		return MirrorState{}, ErrItemNotFound
	}

	it := &st.Checklist[idx]
	msg, err := fn(it)
	if err != nil {
		return MirrorState{}, err
	}
	ts := m.now().UTC().Truncate(time.Second)
	it.Changes = append(it.Changes, checklist.Change{Message: msg, Timestamp: ts})
	st.Timeline = append(st.Timeline, timeline.Event{
		Timestamp: ts,
		ItemID:    it.ID,
		ItemText:  it.Text,
		Message:   msg,
	})
	st.Version++

	if err := m.saveLocked(ctx, st); err != nil {
		return MirrorState{}, err
	}
	return st, nil
}

// Changed sends the stored project back to the page as an Update. It is the
// storage-change notification handler and also runs once at startup.
func (m *Mirror) Changed(ctx context.Context) error {
	if m.ch == nil {
		return nil
	}
	st, err := m.State(ctx)
	if err != nil {
		return err
	}
	if st.ProjectID() == "" {
		return nil
	}
	return bridge.Send(ctx, m.ch, bridge.Update{
		ProjectID: st.ProjectID(),
		Checklist: nonNilItems(st.Checklist),
		Timeline:  nonNilEvents(st.Timeline),
		Version:   st.Version,
	})
}

func (m *Mirror) handle(ctx context.Context, data []byte) {
	msg, err := bridge.Decode(data)
	if err != nil {
		if !errors.Is(err, bridge.ErrForeign) {
			m.logger.Warn("dropping invalid state", "error", err)
		}
		return
	}
	st, ok := msg.(bridge.State)
	if !ok {
		return
	}
	if err := m.ApplyState(ctx, st); err != nil {
		if errors.Is(err, ErrStaleState) {
			m.logger.Debug("ignoring stale state", "version", st.Version)
			return
		}
		m.logger.Warn("failed to store state", "error", err)
	}
}

func (m *Mirror) loadLocked(ctx context.Context) (MirrorState, error) {
	data, err := m.area.Get(ctx, StateKey)
	if errors.Is(err, repository.ErrNotFound) {
		return MirrorState{Checklist: []checklist.Item{}, Timeline: []timeline.Event{}}, nil
	}
	if err != nil {
		return MirrorState{}, err
	}
	var st MirrorState
	if err := json.Unmarshal(data, &st); err != nil {
		m.logger.Warn("mirror state unreadable, starting empty", "error", err)
		return MirrorState{Checklist: []checklist.Item{}, Timeline: []timeline.Event{}}, nil
	}
	return st, nil
}

func (m *Mirror) saveLocked(ctx context.Context, st MirrorState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding mirror state: %w", err)
	}
	return m.area.Put(ctx, StateKey, data)
}

func nonNilItems(items []checklist.Item) []checklist.Item {
	if items == nil {
		return []checklist.Item{}
	}
	return items
}

func nonNilEvents(events []timeline.Event) []timeline.Event {
	if events == nil {
		return []timeline.Event{}
	}
	return events
}
