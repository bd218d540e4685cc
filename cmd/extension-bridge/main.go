package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rpggio/genai-tracker/internal/bridge"
	"github.com/rpggio/genai-tracker/internal/config"
	"github.com/rpggio/genai-tracker/internal/extension"
	"github.com/rpggio/genai-tracker/internal/logging"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, closer := logging.New(os.Stderr, cfg.Log.Level, "TRACKER_LOG_PATH")
	defer closer.Close()

	if cfg.Sync.Addr == "" || cfg.Sync.Addr == "off" {
		logger.Error("extension sync is disabled; set TRACKER_SYNC_ADDR")
		os.Exit(1)
	}

	area, err := extension.NewArea(cfg.Extension.Dir)
	if err != nil {
		logger.Error("failed to open storage area", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b := &extensionBridge{area: area, logger: logger}

	watcher, err := extension.NewWatcher(area.Dir(), cfg.Extension.Debounce(), b.storageChanged, logger)
	if err != nil {
		logger.Error("failed to watch storage area", "error", err)
		os.Exit(1)
	}
	if err := watcher.Start(ctx); err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	defer watcher.Stop()

	b.run(ctx, cfg.Sync.Addr)
	logger.Info("shutting down")
}

// extensionBridge keeps one mirror connected to the tracker, reconnecting
// with backoff when the link drops.
type extensionBridge struct {
	area   *extension.Area
	logger *slog.Logger

	mu     sync.Mutex
	mirror *extension.Mirror
}

func (b *extensionBridge) run(ctx context.Context, addr string) {
	backoff := minBackoff
	for ctx.Err() == nil {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			b.logger.Debug("tracker unavailable", "addr", addr, "error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff
		b.serve(ctx, conn)
	}
}

func (b *extensionBridge) serve(ctx context.Context, conn net.Conn) {
	link := bridge.NewLink(ctx, conn, b.logger)
	defer link.Close()

	mirror := extension.NewMirror(b.area, link, b.logger)
	defer mirror.Close()

	b.mu.Lock()
	b.mirror = mirror
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.mirror = nil
		b.mu.Unlock()
	}()

	b.logger.Info("connected to tracker", "addr", conn.RemoteAddr().String())

	// Forward whatever the popup changed while disconnected.
	if err := mirror.Changed(ctx); err != nil {
		b.logger.Warn("failed to send stored state", "error", err)
	}

	select {
	case <-ctx.Done():
	case <-link.Done():
		b.logger.Info("disconnected from tracker")
	}
}

func (b *extensionBridge) storageChanged(ctx context.Context, key string) {
	if key != extension.StateKey {
		return
	}
	b.mu.Lock()
	mirror := b.mirror
	b.mu.Unlock()
	if mirror == nil {
		return
	}
	if err := mirror.Changed(ctx); err != nil {
		b.logger.Warn("failed to send update", "error", err)
	}
}
