package bridge

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when posting to a closed channel.
var ErrClosed = errors.New("channel closed")

// Handler receives raw envelopes posted on a channel.
type Handler func(ctx context.Context, data []byte)

// Channel is a fire-and-forget broadcast medium shared by both contexts.
// Delivery order between posts is not guaranteed.
type Channel interface {
	Post(ctx context.Context, data []byte) error
	Subscribe(h Handler) (unsubscribe func())
}

// Send encodes m and posts it on ch.
func Send(ctx context.Context, ch Channel, m Message) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return ch.Post(ctx, data)
}

// Bus is an in-process Channel. Every post is delivered to every subscriber,
// including the poster, on its own goroutine.
type Bus struct {
	mu       sync.Mutex
	handlers map[int]Handler
	nextID   int
	closed   bool
	wg       sync.WaitGroup
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Post delivers a copy of data to all current subscribers asynchronously.
func (b *Bus) Post(ctx context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for _, h := range b.handlers {
		msg := append([]byte(nil), data...)
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			h(context.WithoutCancel(ctx), msg)
		}(h)
	}
	return nil
}

// Subscribe registers h until the returned function is called.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Wait blocks until all in-flight deliveries have returned.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// Close rejects further posts and waits for in-flight deliveries.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}
