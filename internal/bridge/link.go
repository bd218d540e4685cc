package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
)

// MethodMessage is the JSON-RPC notification carrying one envelope.
const MethodMessage = "bridge/message"

// maxPending bounds envelopes held while a link has no subscriber.
const maxPending = 16

// Link is a Channel over a byte stream between two processes. Posts are
// JSON-RPC notifications, so there is no reply or delivery acknowledgement.
type Link struct {
	conn   *jsonrpc2.Conn
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[int]Handler
	nextID   int
	pending  [][]byte
}

// NewLink starts reading from rwc. The link closes when rwc does.
func NewLink(ctx context.Context, rwc io.ReadWriteCloser, logger *slog.Logger) *Link {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l := &Link{
		logger:   logger,
		handlers: make(map[int]Handler),
	}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	l.conn = jsonrpc2.NewConn(ctx, stream, &linkHandler{link: l})
	return l
}

// Post sends data to the peer.
func (l *Link) Post(ctx context.Context, data []byte) error {
	return l.conn.Notify(ctx, MethodMessage, json.RawMessage(data))
}

// Subscribe registers h for envelopes received from the peer. Envelopes that
// arrived before the first subscriber are delivered to it.
func (l *Link) Subscribe(h Handler) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.handlers[id] = h
	backlog := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, data := range backlog {
		h(context.Background(), data)
	}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.handlers, id)
	}
}

// Done is closed when the underlying stream is gone.
func (l *Link) Done() <-chan struct{} {
	return l.conn.DisconnectNotify()
}

// Close shuts the link down.
func (l *Link) Close() error {
	return l.conn.Close()
}

type linkHandler struct {
	link *Link
}

func (h *linkHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Method != MethodMessage || req.Params == nil {
		h.link.logger.Debug("ignoring bridge request", "method", req.Method)
		if !req.Notif {
			_ = conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeMethodNotFound,
				Message: "method not found: " + req.Method,
			})
		}
		return
	}

	data := []byte(*req.Params)

	h.link.mu.Lock()
	if len(h.link.handlers) == 0 {
		if len(h.link.pending) < maxPending {
			h.link.pending = append(h.link.pending, data)
		}
		h.link.mu.Unlock()
		return
	}
	handlers := make([]Handler, 0, len(h.link.handlers))
	for _, fn := range h.link.handlers {
		handlers = append(handlers, fn)
	}
	h.link.mu.Unlock()

	for _, fn := range handlers {
		fn(ctx, data)
	}
}
