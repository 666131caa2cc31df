package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/stroop/internal/config"
	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/stats"
	"github.com/verte-zerg/stroop/internal/statsui"
	"github.com/verte-zerg/stroop/internal/store"
)

const defaultCurveWindow = 5

var (
	statsUser        string
	statsPlain       bool
	statsLast        int
	statsCurveWindow int

	exportFormat string
	exportOutput string
	exportUser   string
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsUser, "user", "", "profile name")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &statsUser, fileCfg.Session.User)
	if strings.TrimSpace(statsUser) == "" {
		return fmt.Errorf("--user must not be empty")
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	cfg := model.StatsConfig{
		User:        strings.TrimSpace(statsUser),
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	plain := statsPlain || !term.IsTerminal(int(os.Stdout.Fd()))
	a, err := setup(cmd, fileCfg, !plain)
	if err != nil {
		return err
	}
	defer a.close()

	if plain {
		ctx := context.Background()
		report := stats.NewReport(cfg, a.loadProfiles(ctx)[cfg.User])
		return stats.RenderReport(cmd.OutOrStdout(), report, cfg.CurveWindow)
	}
	m := statsui.NewModel(a.store, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List known users",
		Args:  cobra.NoArgs,
		RunE:  runUsersCmd,
	}
}

func runUsersCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a, err := setup(cmd, fileCfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	profiles := a.loadProfiles(context.Background())
	if len(profiles) == 0 {
		logErrf("No users yet. Run: stroop --user <name>\n")
		return nil
	}
	return writeUsers(cmd.OutOrStdout(), profiles)
}

func writeUsers(w io.Writer, profiles model.Profiles) error {
	names := profiles.Names()
	sort.Strings(names)
	for _, name := range names {
		p := profiles[name]
		if _, err := fmt.Fprintf(w, "%-20s %4d tests  %5.1f%% avg  %5.1f%% best\n",
			name, p.TotalTests, p.AvgAccuracy, p.BestAccuracy); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export profiles as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", "", "json or yaml (default: from --output extension, else json)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&exportUser, "user", "", "export a single profile")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a, err := setup(cmd, fileCfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	profiles := a.loadProfiles(context.Background())
	if exportUser != "" {
		p, ok := profiles[exportUser]
		if !ok {
			return fmt.Errorf("unknown user %q", exportUser)
		}
		profiles = model.Profiles{exportUser: p}
	}

	format := exportFormat
	if format == "" {
		format = store.FormatForPath(exportOutput)
	}
	if exportOutput == "" {
		return store.Export(cmd.OutOrStdout(), profiles, format)
	}
	return writeExport(exportOutput, profiles, format)
}

func writeExport(path string, profiles model.Profiles, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()
	return store.Export(f, profiles, format)
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import profiles from a JSON or YAML export",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a, err := setup(cmd, fileCfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	imported, err := readImport(args[0])
	if err != nil {
		return err
	}
	profiles := a.loadProfiles(ctx)
	replaced := store.Merge(profiles, imported)
	if err := a.store.Save(ctx, profiles); err != nil {
		a.metrics.StoreFailed("save")
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	sort.Strings(replaced)
	out := fmt.Sprintf("Imported %d profiles", len(imported))
	if len(replaced) > 0 {
		out += fmt.Sprintf(" (replaced: %s)", strings.Join(replaced, ", "))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

func readImport(path string) (model.Profiles, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() {
		// Best-effort close of a read-only file.
		_ = f.Close()
	}()
	profiles, err := store.Import(f, store.FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return profiles, nil
}
