package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
)

// Message tags. The page publishes state, the extension publishes updates.
const (
	SourcePage      = "genai-tracker"
	SourceExtension = "genai-extension"
	TypeState       = "state"
	TypeUpdate      = "update"
)

var (
	// ErrForeign marks a message with an unrecognized source/type pair.
	ErrForeign = errors.New("foreign message")
	// ErrMalformed marks a recognized message whose payload is invalid.
	ErrMalformed = errors.New("malformed message")
)

// Envelope is the wire form of every message.
type Envelope struct {
	Source string          `json:"source"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// Message is either a State or an Update.
type Message interface {
	tags() (source, typ string)
}

// State is the page's full store snapshot plus the current project's fields.
type State struct {
	CurrentProjectID *string                     `json:"currentProjectId"`
	Projects         map[string]*project.Project `json:"projects"`
	ProjectID        string                      `json:"projectId,omitempty"`
	ProjectName      string                      `json:"projectName,omitempty"`
	Config           *project.Config             `json:"config,omitempty"`
	Checklist        []checklist.Item            `json:"checklist"`
	Timeline         []timeline.Event            `json:"timeline"`
	Version          int64                       `json:"version,omitempty"`
}

// Update is one project's checklist and timeline edited in the extension.
type Update struct {
	ProjectID string           `json:"projectId"`
	Checklist []checklist.Item `json:"checklist"`
	Timeline  []timeline.Event `json:"timeline"`
	Version   int64            `json:"version,omitempty"`
}

func (State) tags() (string, string)  { return SourcePage, TypeState }
func (Update) tags() (string, string) { return SourceExtension, TypeUpdate }

// StateFromSnapshot builds the state message published after a page mutation.
func StateFromSnapshot(snap project.Snapshot) State {
	st := State{Projects: snap.Projects}
	if st.Projects == nil {
		st.Projects = map[string]*project.Project{}
	}
	cur, ok := snap.Current()
	if !ok {
		return st
	}
	id := cur.ID
	cfg := cur.Config
	st.CurrentProjectID = &id
	st.ProjectID = id
	st.ProjectName = cur.Name
	st.Config = &cfg
	st.Checklist = checklist.CloneAll(cur.Checklist)
	st.Timeline = timeline.Clone(cur.Timeline)
	st.Version = cur.Version
	return st
}

// Encode wraps a message in its tagged envelope.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding message data: %w", err)
	}
	source, typ := m.tags()
	return json.Marshal(Envelope{Source: source, Type: typ, Data: data})
}

// Decode parses and validates an envelope. Unrecognized tags yield
// ErrForeign; recognized messages with invalid payloads yield ErrMalformed.
func Decode(raw []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, ErrForeign
	}

	switch {
	case env.Source == SourcePage && env.Type == TypeState:
		var st State
		if err := decodeData(env.Data, &st); err != nil {
			return nil, err
		}
		if err := validateState(st); err != nil {
			return nil, err
		}
		return st, nil
	case env.Source == SourceExtension && env.Type == TypeUpdate:
		if err := requireFields(env.Data, "projectId", "checklist", "timeline"); err != nil {
			return nil, err
		}
		var up Update
		if err := decodeData(env.Data, &up); err != nil {
			return nil, err
		}
		if up.ProjectID == "" {
			return nil, fmt.Errorf("%w: empty projectId", ErrMalformed)
		}
		if err := validateItems(up.Checklist); err != nil {
			return nil, err
		}
		return up, nil
	default:
		return nil, ErrForeign
	}
}

func decodeData(data json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: missing data", ErrMalformed)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func requireFields(data json.RawMessage, fields ...string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			return fmt.Errorf("%w: missing %s", ErrMalformed, f)
		}
	}
	return nil
}

func validateState(st State) error {
	if st.CurrentProjectID == nil || *st.CurrentProjectID == "" {
		return nil
	}
	if err := validateItems(st.Checklist); err != nil {
		return err
	}
	for id, p := range st.Projects {
		if p == nil {
			return fmt.Errorf("%w: empty project %s", ErrMalformed, id)
		}
		if err := validateItems(p.Checklist); err != nil {
			return err
		}
	}
	return nil
}

func validateItems(items []checklist.Item) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ID == "" {
			return fmt.Errorf("%w: item without id", ErrMalformed)
		}
		if seen[it.ID] {
			return fmt.Errorf("%w: duplicate item id %s", ErrMalformed, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}
