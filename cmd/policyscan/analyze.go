package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/policyscan/internal/config"
	"github.com/nao1215/policyscan/internal/model"
	"github.com/nao1215/policyscan/internal/pipeline"
	"github.com/nao1215/policyscan/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [domain]...",
		Short: "Find and analyze a website's privacy policy",
		Long: `Analyze finds the privacy policy of each domain, scores it and explains
what is harmful about it.

Discovery tries, in order: a known policy URL for the domain, privacy links
on the home page, conventional paths such as /privacy, and footer links.
When no policy can be retrieved, a generic assessment is printed instead.

Results are saved to the local database and reused for 24 hours.

Examples:
  # Analyze a single site
  policyscan analyze example.com

  # Analyze several sites, 8 at a time
  policyscan analyze --batch 8 example.com example.org example.net

  # Markdown report written to a file
  policyscan analyze --markdown -o reports/example.md example.com

  # Fetch through an existing Tor proxy
  policyscan analyze --external-tor 127.0.0.1:9050 example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Tor connection flags
	cmd.Flags().Bool("tor", false,
		"Fetch through an embedded Tor daemon")
	cmd.Flags().StringP("external-tor", "e", "",
		"Fetch through an existing Tor SOCKS proxy (e.g., 127.0.0.1:9050)")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Time budget for finding and retrieving one policy")
	cmd.Flags().Duration("attempt-timeout", config.DefaultAttemptTimeout,
		"Timeout for each page request")
	cmd.Flags().String("user-agent", "",
		"User-Agent header (default: a desktop browser)")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of domains analyzed concurrently")

	// Persistence flags
	cmd.Flags().Bool("no-cache", false,
		"Ignore and do not update cached results")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"How long results are reused")
	cmd.Flags().Bool("no-save", false,
		"Do not record results in the database")

	addReportFlags(cmd)

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAnalyzeConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Cancellation also covers the embedded Tor bootstrap.
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := newSession(ctx, cmd, cfg, sessionOptions{network: true, store: true})
	defer s.Close()
	if err != nil {
		return err
	}

	return runAnalyze(ctx, s)
}

// buildAnalyzeConfig creates a Config from the analyze flags.
func buildAnalyzeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	if len(args) == 0 {
		return nil, config.ErrNoTarget
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	cfg.UseTor, err = cmd.Flags().GetBool("tor")
	if err != nil {
		return nil, err
	}
	cfg.TorProxyAddress, err = cmd.Flags().GetString("external-tor")
	if err != nil {
		return nil, err
	}
	cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout")
	if err != nil {
		return nil, err
	}
	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.AttemptTimeout, err = cmd.Flags().GetDuration("attempt-timeout")
	if err != nil {
		return nil, err
	}
	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}
	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL, err = cmd.Flags().GetDuration("cache-ttl")
	if err != nil {
		return nil, err
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	cfg.UseCache = !noCache

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	applyReportFlags(cmd, cfg)
	cfg.Targets = args

	return cfg, nil
}

// runAnalyze analyzes every target, concurrently when there is more than one.
func runAnalyze(ctx context.Context, s *session) error {
	w, closeOutput, err := s.reportWriter()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeOutput(); err != nil {
			s.logger.Error("failed to close report file", "error", err)
		}
	}()

	targets := s.cfg.Targets
	if len(targets) == 1 {
		res, err := s.orchestrator.AnalyzeDomain(ctx, targets[0])
		if err != nil {
			return fmt.Errorf("analysis of %s failed: %w", targets[0], err)
		}
		_, err = w.Write(res)
		return err
	}

	return runBatchAnalyze(ctx, s, w)
}

// runBatchAnalyze analyzes targets through a BatchProcessor and writes each
// report as soon as it is ready.
func runBatchAnalyze(ctx context.Context, s *session, w report.Writer) error {
	targets := s.cfg.Targets
	if reportFormat(s.cfg) == report.FormatSimple {
		fmt.Fprintf(s.out, "Analyzing %d domains (concurrency: %d)...\n\n", len(targets), s.cfg.BatchSize)
	}
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(s.orchestrator,
		pipeline.WithConcurrency(s.cfg.BatchSize),
		pipeline.WithBatchLogger(s.logger),
	)

	var (
		mu     sync.Mutex
		done   int
		failed []error
	)
	err := bp.ProcessBatchWithCallback(ctx, targets, func(r pipeline.BatchResult, _ int) {
		mu.Lock()
		defer mu.Unlock()

		done++
		if r.Err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", r.Domain, r.Err))
			return
		}
		if reportFormat(s.cfg) == report.FormatSimple {
			fmt.Fprintf(s.out, "[%d/%d] %s\n", done, len(targets), resultLabel(r.Result))
		}
		if _, err := w.Write(r.Result); err != nil {
			s.logger.Error("report failed", "domain", r.Domain, "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.logger.Info("batch analysis completed",
		"domains", len(targets),
		"failed", len(failed),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)
	printSessionSummary(ctx, s)
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d domains could not be analyzed: %w", len(failed), len(targets), errors.Join(failed...))
	}
	return nil
}

// printSessionSummary prints what this run added to the store. Only the
// simple format gets it, so JSON and Markdown output stay parseable.
func printSessionSummary(ctx context.Context, s *session) {
	if s.store == nil || reportFormat(s.cfg) != report.FormatSimple {
		return
	}
	us, err := s.store.GetUserSession(ctx, s.sessionID)
	if err != nil {
		s.logger.Warn("failed to read session", "session", s.sessionID, "error", err)
		return
	}
	if us == nil {
		return
	}
	fmt.Fprintf(s.out, "\nSession: %d analyses of %s\n", us.TotalAnalyses, strings.Join(us.PlatformsAnalyzed, ", "))
}

// resultLabel is a one-line summary used in progress output.
func resultLabel(res *model.AnalysisResult) string {
	return fmt.Sprintf("%s: %d%% risk (%s)", res.CompanyName, res.RiskPercent(), res.RiskLevel())
}
