package main

import (
	"fmt"

	"github.com/goodtune/equtil/internal/config"
	"github.com/goodtune/equtil/internal/sessionlog"
	"github.com/spf13/cobra"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:     "export [flags] DAY",
	Short:   "Write a day of stored sessions as a session log",
	Example: `  equtil export --output-format csv 2022-01-01 > 2022-01-01.csv`,
	Args:    cobra.ExactArgs(1),
	RunE:    runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "output-format", "yaml", "Session log format: yaml, json, csv or msgpack")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	sessions, err := loadStoredSessions(cfg.Storage, args[0], logger)
	if err != nil {
		return err
	}

	return sessionlog.NewRegistry().Encode(cmd.OutOrStdout(), exportFormat, sessions)
}
