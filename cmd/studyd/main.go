package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"studyd/internal/planner"
	"studyd/internal/storage"
	"studyd/internal/update"
)

func main() {
	configPath := flag.String("config", "studyd.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := update.LoadRuntimeConfigFile(update.DefaultRuntimeConfig(), *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "studyd: %v\n", err)
		os.Exit(1)
	}
	cfg = update.RuntimeConfigFromEnv(cfg)

	repo, err := storage.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "studyd: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	p := planner.New(repo, time.Duration(cfg.PollIntervalSeconds)*time.Second, cfg.EventBuffer)
	if err := p.Load(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "studyd: load state: %v\n", err)
		os.Exit(1)
	}

	p.Engine().Start()
	defer p.Engine().Stop()

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}

	program := tea.NewProgram(update.NewModel(p, notifier, cfg))
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "studyd failed: %v\n", err)
		os.Exit(1)
	}
}
