package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"admissions-service/common/logger"
	"admissions-service/internal/app"
	"admissions-service/internal/config"
	"admissions-service/internal/intake"
	"admissions-service/internal/tui"
	"admissions-service/internal/wizard"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

const logFile = "intake-cli.log"

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the TUI, so logs go to a file.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", logFile, err)
		os.Exit(1)
	}
	defer f.Close()

	log := logger.NewWithOptions(logger.Options{
		Format: logger.FormatJSON,
		Level:  cfg.Log.Level,
		Writer: f,
	}).With("service", "intake-cli", "version", app.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := intake.NewHTTPClient(cfg.API.BaseURL, cfg.API.Timeout(), log)
	pipeline := intake.NewPipeline(client, log, intake.WithCompensation(cfg.Intake.Compensate))
	w := wizard.New(client, pipeline, log)

	log.Info("intake cli started", "api", cfg.API.BaseURL, "compensate", cfg.Intake.Compensate)

	p := tea.NewProgram(tui.New(ctx, w), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
