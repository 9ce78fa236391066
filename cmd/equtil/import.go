package main

import (
	"errors"
	"fmt"

	"github.com/goodtune/equtil/internal/config"
	"github.com/goodtune/equtil/internal/storage"
	"github.com/spf13/cobra"
)

var importInputFormat string

var importCmd = &cobra.Command{
	Use:   "import [flags] FILE...",
	Short: "Store sessions from session log files in Redis",
	Long: `Import decodes session log files and adds every session to the Redis
session store, indexed by the day it started. Session IDs are derived from
equipment, category and times, so sessions already stored are skipped and
importing a file again changes nothing.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importInputFormat, "input-format", "", "Session log format (default: inferred from extension)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("input-format") {
		cfg.Input.Format = importInputFormat
	}

	logger := setupLogger(cfg.Logging)

	// Decode everything first so a malformed file stores nothing.
	sessions, err := loadSessionLogs(cfg.Input, args, logger)
	if err != nil {
		return err
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	ctx, cancel := storageContext(cfg.Storage)
	defer cancel()

	days := make(map[string]int)
	added, skipped := 0, 0
	for _, s := range sessions {
		stored, err := store.Sessions().Add(ctx, storage.StoredSession{Session: s})
		if errors.Is(err, storage.ErrExists) {
			logger.Debug().Str("equipment", s.Equipment.Name).Time("start", s.Start).Msg("Session already stored")
			skipped++
			continue
		}
		if err != nil {
			return err
		}
		added++
		days[stored.Day()]++
	}

	for day, n := range days {
		logger.Info().Str("day", day).Int("sessions", n).Msg("Sessions imported")
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d session(s) across %d day(s), skipped %d already stored\n", added, len(days), skipped)
	return nil
}
