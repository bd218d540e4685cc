package bridge

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
)

// Hub is the page-side Channel for extension processes connecting over a
// listener. Posts fan out to every connected peer.
type Hub struct {
	logger *slog.Logger

	mu       sync.Mutex
	links    map[*Link]func()
	handlers map[int]Handler
	nextID   int
	greet    func(ctx context.Context, peer Channel) error
}

// NewHub creates a hub with no peers.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		logger:   logger,
		links:    make(map[*Link]func()),
		handlers: make(map[int]Handler),
	}
}

// Serve accepts peers until ctx is cancelled or the listener fails.
func (h *Hub) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		h.Attach(ctx, NewLink(ctx, conn, h.logger))
		h.logger.Info("extension connected", "remote", conn.RemoteAddr().String())
	}
}

// OnConnect registers fn to run for each newly attached peer. The peer is
// already receiving broadcasts, so nothing posted after fn reads state is lost.
func (h *Hub) OnConnect(fn func(ctx context.Context, peer Channel) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.greet = fn
}

// Attach adds a peer and detaches it when its stream closes.
func (h *Hub) Attach(ctx context.Context, l *Link) {
	unsubscribe := l.Subscribe(h.dispatch)

	h.mu.Lock()
	h.links[l] = unsubscribe
	greet := h.greet
	h.mu.Unlock()

	if greet != nil {
		if err := greet(ctx, l); err != nil {
			h.logger.Warn("failed to greet extension", "error", err)
		}
	}

	go func() {
		select {
		case <-l.Done():
		case <-ctx.Done():
			l.Close()
		}
		h.mu.Lock()
		if unsub, ok := h.links[l]; ok {
			unsub()
			delete(h.links, l)
		}
		h.mu.Unlock()
		h.logger.Debug("extension disconnected")
	}()
}

// Peers returns the number of connected peers.
func (h *Hub) Peers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.links)
}

// Post sends data to every peer. Per-peer failures are logged.
func (h *Hub) Post(ctx context.Context, data []byte) error {
	h.mu.Lock()
	links := make([]*Link, 0, len(h.links))
	for l := range h.links {
		links = append(links, l)
	}
	h.mu.Unlock()

	for _, l := range links {
		if err := l.Post(ctx, data); err != nil {
			h.logger.Warn("failed to post to extension", "error", err)
		}
	}
	return nil
}

// Subscribe registers h for envelopes received from any peer.
func (h *Hub) Subscribe(fn Handler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.handlers[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.handlers, id)
	}
}

func (h *Hub) dispatch(ctx context.Context, data []byte) {
	h.mu.Lock()
	handlers := make([]Handler, 0, len(h.handlers))
	for _, fn := range h.handlers {
		handlers = append(handlers, fn)
	}
	h.mu.Unlock()

	for _, fn := range handlers {
		fn(ctx, data)
	}
}
