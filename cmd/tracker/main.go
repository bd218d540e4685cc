package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpggio/genai-tracker/internal/cli"
	"github.com/rpggio/genai-tracker/internal/config"
	"github.com/rpggio/genai-tracker/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, closer := logging.New(os.Stderr, "warn", "TRACKER_LOG_PATH")
	app := cli.NewApp(cfg)
	app.Logger = logger

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, app, os.Args[1:])
	cancel()
	closer.Close()
	os.Exit(code)
}
