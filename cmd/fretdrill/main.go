// Package main provides the CLI entrypoint for fretdrill.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fretdrill/fretdrill/internal/adaptive"
	"github.com/fretdrill/fretdrill/internal/config"
	"github.com/fretdrill/fretdrill/internal/deadline"
	"github.com/fretdrill/fretdrill/internal/deck"
	"github.com/fretdrill/fretdrill/internal/model"
	"github.com/fretdrill/fretdrill/internal/statsui"
	"github.com/fretdrill/fretdrill/internal/store"
	"github.com/fretdrill/fretdrill/internal/tui"
)

const (
	defaultTuning       = "standard"
	defaultMaxFret      = 12
	defaultRoundSeconds = 60
	defaultCurveWindow  = 10
)

var (
	practiceTuning        string
	practiceMaxFret       int
	practiceRoundSeconds  int
	practiceIntervals     bool
	practiceTriads        bool
	practiceStrings       []int
	practiceAutoRecommend bool

	statsSince       string
	statsLast        int
	statsCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fretdrill",
		Short:         "Adaptive fretboard drill trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceTuning, "tuning", defaultTuning, "tuning name (standard, dropd)")
	rootCmd.Flags().IntVar(&practiceMaxFret, "max-fret", defaultMaxFret, "highest fret to drill")
	rootCmd.Flags().IntVar(&practiceRoundSeconds, "round-seconds", defaultRoundSeconds, "round length in seconds (0 = unlimited)")
	rootCmd.Flags().BoolVar(&practiceIntervals, "intervals", false, "include interval questions")
	rootCmd.Flags().BoolVar(&practiceTriads, "triads", false, "include triad spelling questions")
	rootCmd.Flags().IntSliceVar(&practiceStrings, "strings", nil, "string indices to drill (0 = lowest); empty = recommended")
	rootCmd.Flags().BoolVar(&practiceAutoRecommend, "auto-recommend", true, "let recommendations switch enabled strings between rounds")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCalibrateCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func loadPracticeConfig(cmd *cobra.Command) (model.PracticeConfig, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.PracticeConfig{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "tuning", &practiceTuning, fileCfg.Practice.Tuning)
	applyIntConfig(cmd, "max-fret", &practiceMaxFret, fileCfg.Practice.MaxFret)
	applyIntConfig(cmd, "round-seconds", &practiceRoundSeconds, fileCfg.Practice.RoundSeconds)
	applyBoolConfig(cmd, "intervals", &practiceIntervals, fileCfg.Practice.Intervals)
	applyBoolConfig(cmd, "triads", &practiceTriads, fileCfg.Practice.Triads)
	applyBoolConfig(cmd, "auto-recommend", &practiceAutoRecommend, fileCfg.Practice.AutoRecommend)
	if !cmd.Flags().Changed("strings") && fileCfg.Practice.Strings != nil {
		practiceStrings = *fileCfg.Practice.Strings
	}

	cfg := model.PracticeConfig{
		Tuning:        practiceTuning,
		MaxFret:       practiceMaxFret,
		RoundSeconds:  practiceRoundSeconds,
		Intervals:     practiceIntervals,
		Triads:        practiceTriads,
		Strings:       practiceStrings,
		AutoRecommend: practiceAutoRecommend,
	}
	if err := validateConfig(cfg); err != nil {
		return model.PracticeConfig{}, config.FileConfig{}, err
	}
	return cfg, fileCfg, nil
}

// openLearner wires the store, selector, and deadline tracker, applying
// file overrides and the stored calibration baseline to the adaptive
// config.
func openLearner(fileCfg config.FileConfig) (*store.Store, *adaptive.Selector, *deadline.Tracker, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	adaptiveCfg := config.ApplyAdaptive(adaptive.DefaultConfig(), fileCfg.Adaptive)
	baseline, err := st.GetBaseline()
	if err != nil {
		logErrf("failed to load baseline: %v\n", err)
	} else if baseline > 0 {
		adaptiveCfg = adaptive.RescaleConfig(adaptiveCfg, baseline)
	}
	deadlineCfg := config.ApplyDeadline(deadline.DefaultConfig(), fileCfg.Deadline)
	sel := adaptive.NewSelector(st, adaptiveCfg)
	tr := deadline.NewTracker(st, adaptiveCfg, deadlineCfg)
	return st, sel, tr, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, fileCfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	st, sel, tr, err := openLearner(fileCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	d := deck.New(cfg)
	if err := st.Preload(d.Candidates(nil)); err != nil {
		logErrf("failed to preload stats: %v\n", err)
	}

	m := tui.NewModel(cfg, st, sel, tr, d, false)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newCalibrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate",
		Short: "Measure your motor baseline",
		Args:  cobra.NoArgs,
		RunE:  runCalibrateCmd,
	}
}

func runCalibrateCmd(cmd *cobra.Command, _ []string) error {
	cfg, fileCfg, err := loadPracticeConfig(cmd.Root())
	if err != nil {
		return err
	}
	st, sel, tr, err := openLearner(fileCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	d := deck.New(cfg)
	m := tui.NewModel(cfg, st, sel, tr, d, true)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	statsCfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	cfg, fileCfg, err := loadPracticeConfig(cmd.Root())
	if err != nil {
		return err
	}
	st, sel, _, err := openLearner(fileCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	d := deck.New(cfg)
	if err := st.Preload(d.Candidates(nil)); err != nil {
		logErrf("failed to preload stats: %v\n", err)
	}

	m := statsui.NewModel(st, sel, d, statsCfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# fretdrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# tuning = %q          # Tuning name (standard, dropd)
# max-fret = %d              # Highest fret to drill
# round-seconds = %d         # Round length in seconds (0 = unlimited)
# intervals = false          # Include interval questions
# triads = false             # Include triad spelling questions
# strings = [0, 1]           # String indices to drill (0 = lowest)
# auto-recommend = true      # Let recommendations switch enabled strings

[adaptive]
# min-time = 500.0               # Fastest plausible response, ms
# automaticity-target = 1500.0   # Response time considered fluent, ms
# automaticity-threshold = 0.7   # Mastery cutoff
# expansion-threshold = 0.66     # Mastered/seen ratio unlocking new strings

[deadline]
# decrease-factor = 0.85     # Deadline shrink on correct answers
# increase-factor = 1.4      # Deadline growth on wrong answers
`,
		defaultTuning,
		defaultMaxFret,
		defaultRoundSeconds,
	)
}

func validateConfig(cfg model.PracticeConfig) error {
	if cfg.MaxFret < 1 || cfg.MaxFret > 24 {
		return fmt.Errorf("--max-fret must be between 1 and 24")
	}
	if cfg.RoundSeconds < 0 {
		return fmt.Errorf("--round-seconds must be >= 0")
	}
	for _, s := range cfg.Strings {
		if s < 0 || s > 5 {
			return fmt.Errorf("--strings indices must be between 0 and 5")
		}
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
