package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zhouzirui/mindbff/backend/internal/app"
	"github.com/zhouzirui/mindbff/backend/internal/config"
	"github.com/zhouzirui/mindbff/backend/internal/tui"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mindbff",
		Short: "Your mental wellness companion",
		Long: `mindBFF is a companion for talking things through, journaling
with AI reflections and tracking how you feel over the week.

Run without a subcommand to open the interactive companion.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; the environment wins either way
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runCompanion(cfg)
		},
	}

	addKeys(root)
	addAffirmation(root)
	addMood(root)
	addProgress(root)
	return root
}

func runCompanion(cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the companion needs an interactive terminal, see `mindbff --help` for one-shot commands")
	}
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	// the terminal belongs to the UI, so logs go to a file
	logFile, err := tea.LogToFile(filepath.Join(cfg.Storage.DataDir, "mindbff.log"), "mindbff")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	companion, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := companion.Close(); err != nil {
			log.Printf("[mindbff] close: %v", err)
		}
	}()

	model, err := tui.New(tui.Deps{
		Settings:  companion.Settings,
		Navigator: companion.Navigator,
		Chat:      companion.Chat,
		Journal:   companion.Journal,
		Mood:      companion.Mood,
		Progress:  companion.Progress,
		Voice:     companion.Voice,
		Durable:   companion.History.Durable(),
		Now:       time.Now,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// withApp loads configuration and builds the companion for one-shot commands.
func withApp(fn func(*app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	companion, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer companion.Close()
	return fn(companion)
}
