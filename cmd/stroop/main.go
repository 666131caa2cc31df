// Package main provides the CLI entrypoint for stroop.
package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/stroop/internal/config"
	"github.com/verte-zerg/stroop/internal/generator"
	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/palette"
	"github.com/verte-zerg/stroop/internal/session"
	"github.com/verte-zerg/stroop/internal/tui"
)

var (
	runUser       string
	runType       string
	runDifficulty string
	runTrials     int
	runSeed       int64

	storeBackend string
	storePath    string
	logLevel     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stroop",
		Short:         "Stroop color-word reaction test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	rootCmd.Flags().StringVar(&runUser, "user", "", "profile name")
	rootCmd.Flags().StringVar(&runType, "type", config.DefaultType, "test type: classic, reverse, neutral or emotional")
	rootCmd.Flags().StringVar(&runDifficulty, "difficulty", config.DefaultDifficulty, "difficulty: easy, medium, hard or expert")
	rootCmd.Flags().IntVar(&runTrials, "trials", config.DefaultTrials, fmt.Sprintf("trials per session (1-%d)", session.MaxTrials))
	rootCmd.Flags().Int64Var(&runSeed, "seed", 0, "seed for reproducible trial sequences")

	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", config.DefaultBackend, "profile store: sqlite, json or memory")
	rootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "profile store path (default under $XDG_DATA_HOME/stroop)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &runUser, fileCfg.Session.User)
	applyStringConfig(cmd, "type", &runType, fileCfg.Session.Type)
	applyStringConfig(cmd, "difficulty", &runDifficulty, fileCfg.Session.Difficulty)
	applyIntConfig(cmd, "trials", &runTrials, fileCfg.Session.Trials)

	cfg, err := buildSessionConfig(runUser, runType, runDifficulty, runTrials)
	if err != nil {
		return err
	}

	a, err := setup(cmd, fileCfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	gen := generator.NewSeeded()
	if cmd.Flags().Changed("seed") {
		gen = generator.NewWithSeed(runSeed)
	}
	m := tui.NewModel(cfg, tui.Deps{
		Store:     a.store,
		Generator: gen,
		Metrics:   a.metrics,
		Log:       a.log.Named("tui"),
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// buildSessionConfig parses and validates the resolved test settings.
func buildSessionConfig(user, testType, difficulty string, trials int) (model.SessionConfig, error) {
	tt, err := palette.ParseTestType(testType)
	if err != nil {
		return model.SessionConfig{}, fmt.Errorf("invalid --type: %w", err)
	}
	d, err := palette.ParseDifficulty(difficulty)
	if err != nil {
		return model.SessionConfig{}, fmt.Errorf("invalid --difficulty: %w", err)
	}
	cfg := model.SessionConfig{
		User:       strings.TrimSpace(user),
		TestType:   tt,
		Difficulty: d,
		Trials:     trials,
	}
	if err := session.ValidateConfig(cfg); err != nil {
		if cfg.User == "" {
			return model.SessionConfig{}, fmt.Errorf("%w (set --user, STROOP_SESSION_USER or [session] user)", err)
		}
		return model.SessionConfig{}, err
	}
	return cfg, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
