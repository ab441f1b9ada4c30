// parley - a terminal client for the parley chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/parley-chat/parley-tui/internal/agents"
	"github.com/parley-chat/parley-tui/internal/api"
	"github.com/parley-chat/parley-tui/internal/config"
	"github.com/parley-chat/parley-tui/internal/logging"
	"github.com/parley-chat/parley-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "version" || os.Args[1] == "--version") {
		fmt.Printf("parley %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "parley requires an interactive terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(logPath, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("parley starting",
		zap.String("version", Version),
		zap.String("server", cfg.Server.BaseURL))

	client := api.NewClient(cfg.Server.Token, log).WithBaseURL(cfg.Server.BaseURL)

	agentsDir, err := cfg.AgentsDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store, err := agents.NewStore(agentsDir, log)
	if err != nil {
		// Agent editing degrades gracefully; the chat still works.
		log.Warn("agent store unavailable", zap.Error(err))
		store = nil
	}

	m := chat.New(cfg, log, client, store, Version)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	// Agent files edited outside the TUI show up without a restart.
	if store != nil {
		if err := store.Watch(func() {
			p.Send(chat.AgentsReloadedMsg{})
		}); err != nil {
			log.Warn("agent watcher unavailable", zap.Error(err))
		}
		defer store.Close()
	}

	if _, err := p.Run(); err != nil {
		log.Error("program exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error running parley: %v\n", err)
		os.Exit(1)
	}
}
