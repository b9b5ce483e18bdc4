// Package main is the entry point for the Medica bottleneck dashboard.
// It runs the terminal dashboard by default, or a headless analysis or
// HTTP server when given a subcommand.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/medica-bottleneck-tui/internal/app"
	"github.com/j-veylop/medica-bottleneck-tui/internal/config"
	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
	"github.com/j-veylop/medica-bottleneck-tui/internal/server"
	"github.com/j-veylop/medica-bottleneck-tui/internal/services"
	"github.com/j-veylop/medica-bottleneck-tui/internal/services/analysis"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/tabs/finance"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/tabs/history"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/tabs/info"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/tabs/scenario"
	"github.com/j-veylop/medica-bottleneck-tui/internal/version"
)

func main() {
	command := ""
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "-v", "--version":
		fmt.Println(version.Info())
		os.Exit(0)
	case "-h", "--help", "help":
		printUsage()
		os.Exit(0)
	}

	if err := run(command); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run(command string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.SetLevel(cfg.LogLevel)
	closeLog, err := setupLogOutput(cfg, command == "")
	if err != nil {
		return err
	}
	defer closeLog()

	switch command {
	case "":
		return runTUI(cfg)
	case "analyze":
		return runAnalyze(cfg)
	case "serve":
		return runServe(cfg)
	default:
		return fmt.Errorf("unknown command %q (see --help)", command)
	}
}

// setupLogOutput points logs at LOG_PATH when set. The TUI owns the
// terminal, so without a log file its logs are dropped.
func setupLogOutput(cfg *config.Config, tui bool) (func(), error) {
	if cfg.LogPath == "" {
		if tui {
			logger.SetOutput(io.Discard)
		}
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(f)
	return func() { _ = f.Close() }, nil
}

func newManager(cfg *config.Config, watch bool) (*services.Manager, func(), error) {
	mgr, err := services.NewManager(cfg, services.Options{Watch: watch})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return mgr, func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}, nil
}

// runAnalyze analyzes the current simulation output once and prints the summary.
func runAnalyze(cfg *config.Config) error {
	mgr, closeMgr, err := newManager(cfg, false)
	if err != nil {
		return err
	}
	defer closeMgr()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := mgr.RunAnalysis(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Print(analysis.Summary(res))
	return nil
}

// runServe serves the HTTP API and re-analyzes whenever new output lands.
func runServe(cfg *config.Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is empty")
	}

	mgr, closeMgr, err := newManager(cfg, true)
	if err != nil {
		return err
	}
	defer closeMgr()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(cfg.HTTPAddr, mgr).Run(ctx)
}

// runTUI runs the terminal dashboard.
func runTUI(cfg *config.Config) error {
	mgr, closeMgr, err := newManager(cfg, true)
	if err != nil {
		return err
	}
	defer closeMgr()

	model := app.NewModel(mgr)

	state := model.GetState()
	tabs := []app.Tab{
		scenario.New(state, "standard"),
		scenario.New(state, "custom"),
		finance.New(state),
		history.New(state),
		info.New(state, cfg),
	}
	model.SetTabs(tabs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Medica Bottleneck TUI - bottleneck analysis for Medica Scientific simulations

Usage:
  mbt [command] [flags]

Commands:
  (none)          Run the terminal dashboard and watch the output directory
  analyze         Analyze the simulation output once and print the summary
  serve           Serve the dashboard API and re-analyze on new output

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-5             Switch between tabs (Standard, Custom, Finance, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  a               Analyze now
  j/k, Up/Down    Select a chart series
  c               Focus the next chart
  Esc             Show all series
  r               Reload dashboard and history
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  OUTPUT_DIR              Parsed simulation output (default: output)
  DASHBOARD_PATH          Dashboard JSON path
  DATABASE_PATH           SQLite run history path
  ANALYSIS_CONFIG_PATH    YAML thresholds, weights and scenarios
  WATCH_DEBOUNCE          Delay before re-analyzing new output (default: 500ms)
  LOAD_CONCURRENCY        Parallel day-file loads (default: 8)
  NOTIFICATIONS           Desktop notifications on verdict changes (default: true)
  HTTP_ADDR               Address for the serve command (default: :3001)
  LOG_PATH                Log file (the dashboard discards logs without one)
  LOG_LEVEL               debug, info, warn or error

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/medica-bottleneck/.env
  - ~/.medica-bottleneck/.env
  - Parent directory`)
}
