package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"semcheck/internal/config"
	"semcheck/internal/domain"
	"semcheck/internal/gateway"
	"semcheck/internal/logging"
	"semcheck/internal/tui"
	"semcheck/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, modeName string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/semcheck/config.yaml if not provided)")
	flag.StringVar(&modeName, "mode", "", "Analysis mode: compare or check (default from ui.start_mode)")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: semcheck [--config=config.yaml] [--mode=compare|check] [file1 [file2]]")
		fmt.Fprintln(flag.CommandLine.Output(), "Without files an interactive terminal UI starts.")
		flag.PrintDefaults()
	}
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if modeName == "" {
		modeName = cfg.UI.StartMode
	}
	mode, ok := domain.ParseMode(modeName)
	if !ok {
		log.Fatalf("unknown mode: %s", modeName)
	}

	client, err := gateway.NewClient(gateway.Config{
		BaseURL:           cfg.Gateway.BaseURL,
		Timeout:           cfg.Gateway.Timeout(),
		RequestsPerSecond: cfg.Gateway.RequestsPerSecond,
		MaxUploadBytes:    cfg.Gateway.MaxUploadBytes(),
	})
	if err != nil {
		log.Fatalf("gateway init failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if files := flag.Args(); len(files) > 0 {
		logging.InitWriter(os.Stderr, cfg.Log.Level)
		code := runHeadless(ctx, client, mode, files, os.Stdout, os.Stderr)
		cancel()
		os.Exit(code)
	}

	if err := logging.Init(logging.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}
	defer logging.Close()

	wf := workflow.New(client, mode)
	m := tui.New(ctx, wf, probe(ctx, client, cfg.Gateway.BaseURL))
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logging.Error("program exited", "err", err)
		log.Fatal(err)
	}
}

// probe checks the scoring service once so the first screen can say
// whether it is up.
func probe(ctx context.Context, client *gateway.Client, baseURL string) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	st, err := client.Status(ctx)
	if err != nil {
		logging.Warn("scoring service probe failed", "url", baseURL, "err", err)
		return fmt.Sprintf("Scoring service not reachable at %s.", baseURL)
	}
	logging.Info("scoring service reachable", "url", baseURL, "device", st.Device)
	return fmt.Sprintf("Connected to scoring service (device: %s).", st.Device)
}
