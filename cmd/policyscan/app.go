package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/policyscan/internal/analyzer"
	"github.com/nao1215/policyscan/internal/config"
	"github.com/nao1215/policyscan/internal/crawler"
	"github.com/nao1215/policyscan/internal/database"
	"github.com/nao1215/policyscan/internal/httpclient"
	"github.com/nao1215/policyscan/internal/llm"
	seclog "github.com/nao1215/policyscan/internal/log"
	"github.com/nao1215/policyscan/internal/metrics"
	"github.com/nao1215/policyscan/internal/pipeline"
	"github.com/nao1215/policyscan/internal/report"
	"github.com/nao1215/policyscan/internal/tor"
)

// getBoolFlag reads a flag from the command or, failing that, from the
// root's persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// loadConfig builds a Config from the global flags, the configuration
// file and the environment. Command-specific flags are applied by callers.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")
	cfg.MetricsFile = getStringFlag(cmd, "metrics-file")
	cfg.ConfigFilePath = getStringFlag(cmd, "config")
	if dir := getStringFlag(cmd, "data-dir"); dir != "" {
		cfg.DBDir = dir
	}

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	file, err := config.Load(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyFile(file)
	cfg.ApplyEnv()

	return cfg, nil
}

// addReportFlags registers the output format flags shared by commands
// that print reports.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Also write the report to this file (creates directories if needed)")
}

func applyReportFlags(cmd *cobra.Command, cfg *config.Config) {
	cfg.JSONReport = getBoolFlag(cmd, "json")
	cfg.MarkdownReport = getBoolFlag(cmd, "markdown")
	cfg.ReportFile = getStringFlag(cmd, "output")
}

// reportFormat maps the --json and --markdown flags to a report.Format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatSimple
	}
}

// newLogger creates the secure logger selected by the global flags.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return seclog.New(w, seclog.Options{Verbose: cfg.Verbose, JSON: cfg.LogJSON})
}

// newAnalyzer applies rule and platform overrides from the config file.
func newAnalyzer(f *config.File) *analyzer.Analyzer {
	var opts []analyzer.Option
	if f != nil {
		if f.Rules != nil {
			opts = append(opts, analyzer.WithRules(*f.Rules))
		}
		if len(f.Platforms) > 0 {
			opts = append(opts, analyzer.WithPlatforms(f.Platforms...))
		}
	}
	return analyzer.New(opts...)
}

// newBackend returns the configured model client, or nil when none is set.
func newBackend(cfg *config.Config) (*llm.OpenAIClient, error) {
	if !cfg.Model.Enabled() {
		return nil, nil
	}
	client, err := llm.NewOpenAIClient(cfg.Model.Endpoint,
		llm.WithModel(cfg.Model.Name),
		llm.WithAPIKey(cfg.Model.APIKey),
		llm.WithMaxTokens(cfg.Model.MaxTokens),
		llm.WithTemperature(cfg.Model.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return client, nil
}

// session holds everything one command invocation opens, so it can all be
// released in one place.
type session struct {
	cfg          *config.Config
	logger       *slog.Logger
	out          io.Writer
	errOut       io.Writer
	store        *database.ResultDB
	sessionID    string
	recorder     *metrics.Recorder
	orchestrator *pipeline.Orchestrator
	embeddedTor  *tor.EmbeddedTor
}

// sessionOptions selects which resources a command needs.
type sessionOptions struct {
	// network builds a policy fetcher, through Tor if requested.
	network bool

	// store opens the result database.
	store bool
}

// newSession opens the resources a command needs and wires them into an
// Orchestrator. Close must be called even when an error is returned.
func newSession(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts sessionOptions) (*session, error) {
	s := &session{
		cfg:       cfg,
		logger:    newLogger(cfg, cmd.ErrOrStderr()),
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
		recorder:  metrics.NewRecorder(),
		sessionID: uuid.NewString(),
	}
	slog.SetDefault(s.logger)

	orchOpts := []pipeline.OrchestratorOption{
		pipeline.WithOrchestratorLogger(s.logger),
		pipeline.WithMetrics(s.recorder),
		pipeline.WithSessionID(s.sessionID),
	}
	if !cfg.UseCache {
		orchOpts = append(orchOpts, pipeline.WithCacheTTL(0))
	} else {
		orchOpts = append(orchOpts, pipeline.WithCacheTTL(cfg.CacheTTL))
	}

	if opts.store && cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return s, fmt.Errorf("failed to open database: %w", err)
		}
		s.store = db
		orchOpts = append(orchOpts, pipeline.WithStore(db))
		s.logger.Debug("database opened", "path", db.Path())
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return s, err
	}
	if backend != nil {
		orchOpts = append(orchOpts, pipeline.WithBackend(backend))
		s.logger.Debug("model backend enabled", "endpoint", cfg.Model.Endpoint, "model", backend.Model())
	}

	if opts.network {
		client, err := s.httpClient(ctx)
		if err != nil {
			return s, err
		}
		fetcherOpts := []crawler.FetcherOption{
			crawler.WithKnownURLs(cfg.File.KnownURLs),
			crawler.WithAttemptTimeout(cfg.AttemptTimeout),
			crawler.WithBudget(cfg.Timeout),
			crawler.WithMaxBodySize(cfg.MaxBodySize),
			crawler.WithLogger(s.logger),
			crawler.WithObserver(s.recorder),
		}
		if cfg.UserAgent != "" {
			fetcherOpts = append(fetcherOpts, crawler.WithUserAgent(cfg.UserAgent))
		}
		orchOpts = append(orchOpts, pipeline.WithLocator(crawler.NewPolicyFetcher(client, fetcherOpts...)))
	}

	s.orchestrator = pipeline.NewOrchestrator(newAnalyzer(cfg.File), orchOpts...)
	return s, nil
}

// httpClient returns a direct client, or one that goes through an external
// Tor proxy or an embedded Tor daemon.
func (s *session) httpClient(ctx context.Context) (*http.Client, error) {
	cfg := s.cfg
	switch {
	case cfg.TorProxyAddress != "":
		client, err := tor.NewClient(cfg.TorProxyAddress, cfg.AttemptTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if err := client.CheckConnection(ctx).Error(); err != nil {
			return nil, fmt.Errorf("tor proxy check failed (make sure Tor is running at %s): %w",
				cfg.TorProxyAddress, err)
		}
		s.logger.Info("Tor proxy connection verified", "address", cfg.TorProxyAddress)
		return client.NewHTTPClient(), nil

	case cfg.UseTor:
		fmt.Fprintln(s.errOut, "Starting embedded Tor daemon (this may take a few minutes)...")
		s.embeddedTor = tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := s.embeddedTor.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		s.logger.Info("embedded Tor daemon started", "socksAddr", s.embeddedTor.SocksAddr())

		client, err := s.embeddedTor.NewClient(cfg.AttemptTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if err := client.CheckConnection(ctx).Error(); err != nil {
			return nil, fmt.Errorf("embedded Tor proxy check failed: %w", err)
		}
		return client.NewHTTPClient(), nil

	default:
		return httpclient.New(httpclient.WithTimeout(cfg.AttemptTimeout)), nil
	}
}

// Close releases the session's resources and writes the metrics file.
func (s *session) Close() {
	if s.cfg.MetricsFile != "" {
		if err := s.recorder.WriteTextfile(s.cfg.MetricsFile); err != nil {
			s.logger.Error("failed to write metrics", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("failed to close database", "error", err)
		}
	}
	if s.embeddedTor != nil {
		s.logger.Info("stopping embedded Tor daemon")
		if err := s.embeddedTor.Stop(); err != nil {
			s.logger.Error("failed to stop embedded Tor", "error", err)
		}
	}
}

// reportWriter returns the writer for the configured format. With
// --output the report also goes to that file, and the caller must call
// the returned close function.
func (s *session) reportWriter() (report.Writer, func() error, error) {
	format := reportFormat(s.cfg)
	w := report.NewWriter(format, s.out)
	if s.cfg.ReportFile == "" {
		return w, func() error { return nil }, nil
	}

	dir := filepath.Dir(s.cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// 0600: reports reveal which sites the user looked at
	f, err := os.OpenFile(s.cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return report.NewMultiWriter(w, report.NewWriter(format, f)), f.Close, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			slog.Default().Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
