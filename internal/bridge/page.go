package bridge

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rpggio/genai-tracker/internal/domain/project"
)

// PageEndpoint connects the project store to a channel: it publishes a State
// after every store mutation and applies incoming Updates.
type PageEndpoint struct {
	store       *project.Store
	ch          Channel
	logger      *slog.Logger
	unsubscribe func()
}

// NewPageEndpoint subscribes to ch and installs itself as the store's
// broadcaster.
func NewPageEndpoint(store *project.Store, ch Channel, logger *slog.Logger) *PageEndpoint {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &PageEndpoint{store: store, ch: ch, logger: logger}
	e.unsubscribe = ch.Subscribe(e.handle)
	store.SetBroadcaster(e)
	return e
}

// Broadcast publishes a snapshot as a State message.
func (e *PageEndpoint) Broadcast(ctx context.Context, snap project.Snapshot) error {
	return Send(ctx, e.ch, StateFromSnapshot(snap))
}

// Publish sends the current store snapshot, e.g. after a peer connects.
func (e *PageEndpoint) Publish(ctx context.Context) error {
	return e.Broadcast(ctx, e.store.Snapshot())
}

// SendSnapshot sends the current store snapshot to a single peer.
func (e *PageEndpoint) SendSnapshot(ctx context.Context, peer Channel) error {
	return Send(ctx, peer, StateFromSnapshot(e.store.Snapshot()))
}

// Close stops receiving updates.
func (e *PageEndpoint) Close() {
	e.unsubscribe()
}

func (e *PageEndpoint) handle(ctx context.Context, data []byte) {
	msg, err := Decode(data)
	if err != nil {
		if !errors.Is(err, ErrForeign) {
			e.logger.Warn("dropping invalid update", "error", err)
		}
		return
	}
	up, ok := msg.(Update)
	if !ok {
		return
	}

	err = e.store.ApplyUpdate(ctx, project.Update{
		ProjectID: up.ProjectID,
		Checklist: up.Checklist,
		Timeline:  up.Timeline,
		Version:   up.Version,
	})
	switch {
	case err == nil:
		e.logger.Debug("applied extension update", "project_id", up.ProjectID, "version", up.Version)
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, project.ErrStaleUpdate):
		e.logger.Debug("ignoring extension update", "project_id", up.ProjectID, "reason", err)
	default:
		e.logger.Warn("failed to apply extension update", "project_id", up.ProjectID, "error", err)
	}
}
