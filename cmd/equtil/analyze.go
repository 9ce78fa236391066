package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/goodtune/equtil/internal/config"
	"github.com/goodtune/equtil/internal/equipment"
	"github.com/goodtune/equtil/internal/metrics"
	"github.com/goodtune/equtil/internal/sessionlog"
	"github.com/goodtune/equtil/internal/storage"
	"github.com/goodtune/equtil/internal/usage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	analyzeDay             string
	analyzeFormat          string
	analyzeInputFormat     string
	analyzeLocation        string
	analyzeNoColor         bool
	analyzeMetricsTextfile string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] [FILE...]",
	Short: "Report minutes spent at each concurrency level per equipment category",
	Long: `Analyze reads sessions from session log files (YAML, JSON, CSV or
MessagePack) or, with --day, from the Redis session store, and prints for
each equipment category how many minutes had exactly N machines in use.`,
	Example: `  equtil analyze sessions.yaml
  equtil analyze --format json monday.csv tuesday.csv
  equtil -c equtil.yaml analyze --day 2022-01-01`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDay, "day", "", "Analyze sessions stored in Redis for this day (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "Output format: text or json (overrides output.format)")
	analyzeCmd.Flags().StringVar(&analyzeInputFormat, "input-format", "", "Session log format (default: inferred from extension)")
	analyzeCmd.Flags().StringVar(&analyzeLocation, "location", "", "Time zone for timestamps without an offset (overrides input.location)")
	analyzeCmd.Flags().BoolVar(&analyzeNoColor, "no-color", false, "Disable colored output")
	analyzeCmd.Flags().StringVar(&analyzeMetricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this textfile (overrides metrics.textfile)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyAnalyzeFlags(cmd, cfg)

	logger := setupLogger(cfg.Logging)

	var sessions []equipment.Session
	if analyzeDay != "" {
		if len(args) > 0 {
			return fmt.Errorf("--day cannot be combined with session log files")
		}
		sessions, err = loadStoredSessions(cfg.Storage, analyzeDay, logger)
	} else {
		if len(args) == 0 {
			return fmt.Errorf("no session log files given (or use --day)")
		}
		sessions, err = loadSessionLogs(cfg.Input, args, logger)
	}
	if err != nil {
		return err
	}

	return analyze(cmd.OutOrStdout(), cfg, sessions, logger)
}

func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = analyzeFormat
	}
	if flags.Changed("input-format") {
		cfg.Input.Format = analyzeInputFormat
	}
	if flags.Changed("location") {
		cfg.Input.Location = analyzeLocation
	}
	if analyzeNoColor {
		cfg.Output.Color = false
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = analyzeMetricsTextfile
	}
}

// analyze runs the analysis, records metrics and writes the report.
func analyze(out io.Writer, cfg *config.Config, sessions []equipment.Session, logger zerolog.Logger) error {
	started := time.Now()
	results, err := usage.NewAnalyzer(logger).Analyze(sessions)
	if err != nil {
		return err
	}
	metrics.Record(sessions, results, time.Since(started))

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("failed to write metrics textfile: %w", err)
		}
		logger.Debug().Str("path", cfg.Metrics.Textfile).Msg("Metrics textfile written")
	}

	switch cfg.Output.Format {
	case "json":
		return usage.WriteJSON(out, results)
	case "text":
		return usage.WriteText(out, results, cfg.Output.Color && !color.NoColor)
	default:
		return fmt.Errorf("invalid output format: %q (must be text or json)", cfg.Output.Format)
	}
}

// loadSessionLogs decodes every file in order and concatenates the sessions.
func loadSessionLogs(cfg config.InputConfig, paths []string, logger zerolog.Logger) ([]equipment.Session, error) {
	loc, err := cfg.LoadLocation()
	if err != nil {
		return nil, fmt.Errorf("invalid input location: %w", err)
	}

	registry := sessionlog.NewRegistry()
	var sessions []equipment.Session
	for _, path := range paths {
		loaded, err := registry.Load(path, cfg.Format, loc)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("path", path).Int("sessions", len(loaded)).Msg("Session log loaded")
		sessions = append(sessions, loaded...)
	}
	return sessions, nil
}

// loadStoredSessions reads one day of sessions from the session store.
func loadStoredSessions(cfg config.StorageConfig, day string, logger zerolog.Logger) ([]equipment.Session, error) {
	if _, err := time.Parse(storage.DayLayout, day); err != nil {
		return nil, fmt.Errorf("invalid day %q: want YYYY-MM-DD", day)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	ctx, cancel := storageContext(cfg)
	defer cancel()

	stored, err := store.Sessions().ListByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for %s: %w", day, err)
	}
	logger.Debug().Str("day", day).Int("sessions", len(stored)).Msg("Stored sessions loaded")

	return storage.Sessions(stored), nil
}
