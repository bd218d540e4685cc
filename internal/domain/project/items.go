package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
)

// Mutation is an edit applied to a single checklist item.
type Mutation interface {
	isMutation()
}

// Toggle flips the item's checked flag.
type Toggle struct{}

// EditNotes replaces the item's draft notes without recording anything.
type EditNotes struct {
	Notes string
}

// CommitNotes records the draft notes as a change and clears them. A
// non-empty Notes replaces the draft first.
type CommitNotes struct {
	Notes string
}

// LogMessage records a free-text change against the item.
type LogMessage struct {
	Message string
}

// Remove deletes the item, recording its text in the timeline.
type Remove struct{}

func (Toggle) isMutation()      {}
func (EditNotes) isMutation()   {}
func (CommitNotes) isMutation() {}
func (LogMessage) isMutation()  {}
func (Remove) isMutation()      {}

// AddCustomItem prepends a user-authored item to a project's checklist.
func (s *Store) AddCustomItem(ctx context.Context, projectID, text, category string) (*checklist.Item, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyItemText
	}

	var out checklist.Item
	err := s.mutate(ctx, func() error {
		p, err := s.resolveLocked(projectID)
		if err != nil {
			return err
		}
		it := checklist.NewItem(checklist.PrefixCustom, text, category)
		p.Checklist = append([]checklist.Item{it}, p.Checklist...)
		s.recordLocked(p, 0, timeline.MessageAdded)
		p.Version++
		out = p.Checklist[0].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MutateItem applies m to one item of a project.
func (s *Store) MutateItem(ctx context.Context, projectID, itemID string, m Mutation) (*Project, error) {
	if edit, ok := m.(EditNotes); ok {
		return s.editNotes(projectID, itemID, edit.Notes)
	}

	var out *Project
	err := s.mutate(ctx, func() error {
		p, err := s.resolveLocked(projectID)
		if err != nil {
			return err
		}
		idx := checklist.Find(p.Checklist, itemID)
		if idx < 0 {
			return ErrItemNotFound
		}

		switch m := m.(type) {
		case Toggle:
			p.Checklist[idx].Checked = !p.Checklist[idx].Checked
			msg := timeline.MessageUncompleted
			if p.Checklist[idx].Checked {
				msg = timeline.MessageCompleted
			}
			s.recordLocked(p, idx, msg)
		case CommitNotes:
			if m.Notes != "" {
				p.Checklist[idx].Notes = m.Notes
			}
			notes := p.Checklist[idx].Notes
			if strings.TrimSpace(notes) == "" {
				out = p.Clone()
				return errUnchanged
			}
			s.recordLocked(p, idx, timeline.NotesUpdated(notes))
			p.Checklist[idx].Notes = ""
		case LogMessage:
			msg := strings.TrimSpace(m.Message)
			if msg == "" {
				return ErrEmptyMessage
			}
			s.recordLocked(p, idx, msg)
		case Remove:
			s.recordLocked(p, idx, timeline.MessageRemoved)
			p.Checklist = append(p.Checklist[:idx], p.Checklist[idx+1:]...)
		default:
			return fmt.Errorf("unsupported mutation %T", m)
		}
		p.Version++
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) editNotes(projectID, itemID, notes string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.resolveLocked(projectID)
	if err != nil {
		return nil, err
	}
	idx := checklist.Find(p.Checklist, itemID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	p.Checklist[idx].Notes = notes
	return p.Clone(), nil
}

// recordLocked appends a change to the item's history and an event to the
// project timeline, capturing the item text at this moment.
func (s *Store) recordLocked(p *Project, idx int, msg string) {
	ts := s.timestamp()
	it := &p.Checklist[idx]
	it.Changes = append(it.Changes, checklist.Change{Message: msg, Timestamp: ts})
	p.Timeline = append(p.Timeline, timeline.Event{
		Timestamp: ts,
		ItemID:    it.ID,
		ItemText:  it.Text,
		Message:   msg,
	})
}
