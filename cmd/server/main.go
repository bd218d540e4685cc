package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/genai-tracker/internal/bridge"
	"github.com/rpggio/genai-tracker/internal/config"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/generate"
	"github.com/rpggio/genai-tracker/internal/logging"
	"github.com/rpggio/genai-tracker/internal/mcp"
	"github.com/rpggio/genai-tracker/internal/sqlite"
	"github.com/rpggio/genai-tracker/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	logger, logCloser := logging.New(logWriter, cfg.Log.Level, "TRACKER_LOG_PATH")
	defer logCloser.Close()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	llm := generate.NewClient(cfg.LLM.ClientConfig(), logger)
	var generator project.Generator = llm
	if cfg.LLM.Endpoint != "" {
		generator = generate.NewHTTPClient(cfg.LLM.Endpoint, cfg.LLM.Timeout())
	}

	store := project.NewStore(sqlite.NewStateRepository(sqlite.NewKVStore(db)), generator, logger)
	store.Load(context.Background())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	hub := bridge.NewHub(logger)
	page := bridge.NewPageEndpoint(store, hub, logger)
	defer page.Close()
	hub.OnConnect(page.SendSnapshot)
	go serveSync(ctx, logger, hub, cfg.Sync.Addr)

	mcpServer := mcp.NewServer(mcp.Config{Store: store, Logger: logger})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(ctx, logger, mcpServer)
		return
	}
	runHTTPMode(ctx, logger, transport.Options{
		Store:     store,
		Generator: llm,
		Auth:      transport.TokenMiddleware(cfg.Server.Token),
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(r *http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
		),
		Logger: logger,
	}, cfg.Server.Host, cfg.Server.Port)
}

// serveSync accepts extension bridges. A failed listener leaves the server
// running without extension sync.
func serveSync(ctx context.Context, logger *slog.Logger, hub *bridge.Hub, addr string) {
	if addr == "" || addr == "off" {
		logger.Info("extension sync disabled")
		return
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Warn("extension sync unavailable", "addr", addr, "error", err)
		return
	}
	logger.Info("extension sync listening", "addr", ln.Addr().String())
	if err := hub.Serve(ctx, ln); err != nil {
		logger.Error("extension sync stopped", "error", err)
	}
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, opts transport.Options, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
