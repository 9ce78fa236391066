package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/goodtune/equtil/internal/config"
	"github.com/goodtune/equtil/internal/storage"
	"github.com/spf13/cobra"
)

var daysCmd = &cobra.Command{
	Use:   "days",
	Short: "Inspect and manage stored session days",
	Long:  `Inspect and manage the days held in the Redis session store.`,
}

var daysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List days that have stored sessions",
	Args:  cobra.NoArgs,
	RunE:  runDaysList,
}

var daysShowCmd = &cobra.Command{
	Use:   "show DAY",
	Short: "Show the stored sessions of a day",
	Example: `  equtil days show 2022-01-01
  equtil days show --id 5f1c0f52-2b6e-4d8e-9a51-0d1f3c6f4b1e`,
	Args: cobra.RangeArgs(0, 1),
	RunE: runDaysShow,
}

var daysPurgeCmd = &cobra.Command{
	Use:   "purge DAY",
	Short: "Delete every stored session of a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runDaysPurge,
}

var daysShowID string

func init() {
	daysShowCmd.Flags().StringVar(&daysShowID, "id", "", "Show a single session by ID instead of a day")

	daysCmd.AddCommand(daysListCmd)
	daysCmd.AddCommand(daysShowCmd)
	daysCmd.AddCommand(daysPurgeCmd)
	rootCmd.AddCommand(daysCmd)
}

// withSessionStore loads configuration, opens the store and runs fn with
// a bounded context.
func withSessionStore(fn func(cfg *config.Config, sessions storage.SessionStore) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	return fn(cfg, store.Sessions())
}

func runDaysList(cmd *cobra.Command, args []string) error {
	return withSessionStore(func(cfg *config.Config, sessions storage.SessionStore) error {
		ctx, cancel := storageContext(cfg.Storage)
		defer cancel()

		days, err := sessions.ListDays(ctx)
		if err != nil {
			return fmt.Errorf("failed to list days: %w", err)
		}
		for _, day := range days {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), day)
		}
		return nil
	})
}

func runDaysShow(cmd *cobra.Command, args []string) error {
	if (daysShowID == "") == (len(args) == 0) {
		return fmt.Errorf("give either a DAY or --id")
	}

	return withSessionStore(func(cfg *config.Config, sessions storage.SessionStore) error {
		ctx, cancel := storageContext(cfg.Storage)
		defer cancel()

		var stored []storage.StoredSession
		if daysShowID != "" {
			s, err := sessions.Get(ctx, daysShowID)
			if err != nil {
				return fmt.Errorf("session %s: %w", daysShowID, err)
			}
			stored = append(stored, *s)
		} else {
			day := args[0]
			if _, err := time.Parse(storage.DayLayout, day); err != nil {
				return fmt.Errorf("invalid day %q: want YYYY-MM-DD", day)
			}
			var err error
			stored, err = sessions.ListByDay(ctx, day)
			if err != nil {
				return fmt.Errorf("failed to list sessions for %s: %w", day, err)
			}
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		for _, s := range stored {
			_, _ = bold.Fprintf(out, "%s\n", s.ID)
			_, _ = fmt.Fprintf(out, "\t%s (%s)\t%s - %s\t%s\n",
				s.Session.Equipment.Name,
				s.Session.Equipment.Category,
				s.Session.Start.Format(time.RFC3339),
				s.Session.End.Format(time.RFC3339),
				s.Session.Duration())
		}
		return nil
	})
}

func runDaysPurge(cmd *cobra.Command, args []string) error {
	day := args[0]
	if _, err := time.Parse(storage.DayLayout, day); err != nil {
		return fmt.Errorf("invalid day %q: want YYYY-MM-DD", day)
	}

	return withSessionStore(func(cfg *config.Config, sessions storage.SessionStore) error {
		ctx, cancel := storageContext(cfg.Storage)
		defer cancel()

		deleted, err := sessions.DeleteDay(ctx, day)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d session(s) from %s\n", deleted, day)
		return nil
	})
}
