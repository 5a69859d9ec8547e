package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/sift-cli/sift/internal/config"
	"github.com/sift-cli/sift/internal/drive"
	"github.com/sift-cli/sift/internal/log"
	"github.com/sift-cli/sift/internal/service"
	"github.com/sift-cli/sift/internal/store"
	"github.com/sift-cli/sift/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func main() {
	// Handle version flag
	var showVersion bool
	var resetCache bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&resetCache, "reset-cache", false, "delete cached triage state and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("sift %s\n", Version)
		return
	}

	if resetCache {
		if err := config.ClearCache(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Cache cleared.")
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting sift", "version", Version)

	// Check if configured
	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	// Create drive client
	client, err := drive.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create drive client: %w", err)
	}

	// Open the triage store
	triageStore, err := store.NewTriageStateStore(config.GetCachePath())
	if err != nil {
		return fmt.Errorf("failed to open triage store: %w", err)
	}
	defer triageStore.Close()

	// Create services
	resolver := service.NewURLResolver(client, time.Duration(cfg.Drive.URLTTLMinutes)*time.Minute, logger)
	exporter := service.NewExporter(client, resolver, logger,
		cfg.Export.ChunkSize, cfg.Export.Concurrency, cfg.Export.OutputDir)

	// Create TUI model
	model := tui.NewModel(client, triageStore, resolver, exporter, logger,
		cfg.Triage.PageSize, cfg.Triage.HideProcessed)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial setup when no drive token is configured
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to sift!")
	fmt.Println()
	fmt.Println("sift needs a Microsoft Graph access token with Files.ReadWrite scope.")
	fmt.Println("You can obtain one from https://developer.microsoft.com/graph/graph-explorer")
	fmt.Println()

	// Loop until a token validates against the drive
	for {
		fmt.Print("Paste your access token (input hidden): ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}

		token := strings.TrimSpace(string(raw))
		if token == "" {
			fmt.Println("Token cannot be empty. Please try again.")
			continue
		}

		cfg.Drive.Token = token

		fmt.Println()
		if err := verifyDriveWithSpinner(cfg, logger); err != nil {
			fmt.Printf("\n✗ Could not access the drive: %v\n", err)
			fmt.Println("Please check the token and try again.")
			fmt.Println()
			cfg.Drive.Token = ""
			continue
		}
		break
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run sift again to start triaging.")

	return nil
}

// verifyDriveWithSpinner lists the drive's folders to prove the token works
func verifyDriveWithSpinner(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := drive.NewClient(cfg, logger)
	if err != nil {
		return err
	}

	type result struct {
		count int
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		folders, err := client.GetFolders(ctx)
		resultCh <- result{len(folders), err}
	}()

	frame := 0
	fmt.Printf("\r%s Checking drive access...", spinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if res.err != nil {
				return res.err
			}
			fmt.Printf("✓ Drive reachable (%d folders)\n", res.count)
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking drive access...", spinnerFrames[frame%len(spinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("drive check timed out")
		}
	}
}
