package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eventloom/eventloom/internal/config"
	"github.com/eventloom/eventloom/internal/daemon"
	"github.com/eventloom/eventloom/internal/engine"
	"github.com/eventloom/eventloom/internal/notify"
	"github.com/eventloom/eventloom/internal/storage"
	"github.com/eventloom/eventloom/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "eventloom failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := storage.MigrateUp(repo.DB()); err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(cfg.DispatcherBuffer)
	dispatcher.Start()
	defer dispatcher.Stop()

	eng := engine.New(repo, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reevaluator, err := daemon.New(eng, cfg.ReevaluateInterval)
	if err != nil {
		return err
	}
	if err := reevaluator.Start(ctx); err != nil {
		return err
	}
	defer reevaluator.Stop()

	program := tea.NewProgram(update.NewModel(eng, dispatcher.C()))
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
