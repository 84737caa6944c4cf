package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/cadence/internal/config"
	"github.com/hyperengineering/cadence/internal/store"
)

var (
	statsDBOverride string
	statsJSONOutput bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Long:  "Print habit, routine, and review counts without running the server.",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsDBOverride, "db", "",
		"Database path (overrides config and CADENCE_DB_PATH)")
	statsCmd.Flags().BoolVar(&statsJSONOutput, "json", false,
		"Output in JSON format")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dbPath := statsDBOverride
	if dbPath == "" {
		// Stats runs against the local database only, so the server's
		// auth key requirement does not apply.
		cfg, err := config.LoadOffline()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		dbPath = cfg.Database.Path
	}

	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	stats, err := db.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}

	if statsJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"habits":   stats.HabitCount,
			"routines": stats.RoutineCount,
			"reviews":  stats.ReviewCount,
		})
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "HABITS\tROUTINES\tREVIEWS")
	fmt.Fprintf(w, "%d\t%d\t%d\n", stats.HabitCount, stats.RoutineCount, stats.ReviewCount)
	w.Flush()

	return nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
