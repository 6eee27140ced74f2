// Package main is the entry point for the ctxwatch TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/k-lindqvist/ctxwatch/internal/app"
	"github.com/k-lindqvist/ctxwatch/internal/config"
	"github.com/k-lindqvist/ctxwatch/internal/services"
	"github.com/k-lindqvist/ctxwatch/internal/ui/tabs/history"
	"github.com/k-lindqvist/ctxwatch/internal/ui/tabs/info"
	"github.com/k-lindqvist/ctxwatch/internal/ui/tabs/sessions"
	"github.com/k-lindqvist/ctxwatch/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize the service manager. This starts transcript watching
	// and snapshot recording in the background.
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 4. Initialize tabs with shared state and services
	state := model.GetState()
	tabs := []app.Tab{
		sessions.New(state, svcManager), // Tab 0: Sessions - live usage per session
		history.New(state, svcManager),  // Tab 1: History - recorded snapshots
		info.New(state, cfg),            // Tab 2: Info - configuration and app info
	}
	model.SetTabs(tabs)

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 6. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 7. Run the TUI program. Blocks until the user quits or an error occurs.
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`ctxwatch - Context window monitor for AI coding sessions

Usage:
  ctxwatch [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Sessions, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  w               Pin a context window size for the selected model
  t               Cycle the history time range
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  CTXWATCH_DB_PATH            SQLite database path
  CTXWATCH_MODEL_CACHE_PATH   Pinned window cache path
  CTXWATCH_CLAUDE_DIR         Claude Code transcript directory
  CTXWATCH_CODEX_DIR          Codex session directory
  CTXWATCH_GEMINI_DIR         Gemini CLI session directory
  CTXWATCH_POLL_INTERVAL      Transcript polling interval (default: 5s)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/ctxwatch/.env
  - ~/.ctxwatch/.env`)
}
