package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/policyscan/internal/config"
	"github.com/nao1215/policyscan/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored analyses and statistics",
		Long: `History lists recent analyses from the local database.

Examples:
  # Last 20 analyses
  policyscan history

  # Per-company averages and the overall dashboard
  policyscan history --stats --dashboard

  # Drop expired cache entries
  policyscan history --cleanup`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit, "Number of analyses to show")
	cmd.Flags().Bool("stats", false, "Show per-company statistics")
	cmd.Flags().Bool("dashboard", false, "Show overall statistics")
	cmd.Flags().Bool("cleanup", false, "Remove expired cache entries")
	addReportFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyReportFlags(cmd, cfg)

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	stats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return err
	}
	dashboard, err := cmd.Flags().GetBool("dashboard")
	if err != nil {
		return err
	}
	cleanup, err := cmd.Flags().GetBool("cleanup")
	if err != nil {
		return err
	}

	if limit <= 0 {
		return fmt.Errorf("invalid limit %d: must be positive", limit)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	s, err := newSession(cmd.Context(), cmd, cfg, sessionOptions{store: true})
	defer s.Close()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db := s.store

	if cleanup {
		n, err := db.CleanupExpiredCache(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.errOut, "Removed %d expired cache entries\n", n)
		if !stats && !dashboard {
			return nil
		}
	}

	w, closeOutput, err := s.reportWriter()
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // report file is closed on exit

	if stats || dashboard {
		out := &report.Stats{}
		if dashboard {
			if out.Dashboard, err = db.DashboardStats(ctx); err != nil {
				return err
			}
		}
		if stats {
			if out.Platforms, err = db.PlatformStats(ctx); err != nil {
				return err
			}
		}
		_, err = w.WriteStats(out)
		return err
	}

	entries, err := db.History(ctx, limit)
	if err != nil {
		return err
	}
	_, err = w.WriteHistory(entries)
	return err
}
