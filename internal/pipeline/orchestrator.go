package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/policyscan/internal/analyzer"
	"github.com/nao1215/policyscan/internal/crawler"
	"github.com/nao1215/policyscan/internal/llm"
	"github.com/nao1215/policyscan/internal/model"
)

// DefaultCacheTTL is how long a live analysis stays in the store's cache.
const DefaultCacheTTL = 24 * time.Hour

// Locator finds and retrieves the privacy policy of a domain.
// crawler.PolicyFetcher implements it.
type Locator interface {
	Locate(ctx context.Context, domain string) (*model.PolicyDocument, error)
}

// ResultStore persists analyses. database.ResultDB implements it.
type ResultStore interface {
	SaveAnalysis(ctx context.Context, result *model.AnalysisResult, sessionID string) (int64, error)
	CacheAnalysis(ctx context.Context, key string, result *model.AnalysisResult, ttl time.Duration) error
	GetCachedAnalysis(ctx context.Context, key string) (*model.AnalysisResult, error)
	UpdateUserSession(ctx context.Context, sessionID, platform string) error
}

// Metrics receives orchestration events. metrics.Recorder implements it.
type Metrics interface {
	ObserveAnalysis(kind model.SourceKind, backend string)
	ObserveFallback(operation string)
	ObserveCacheHit()
}

type nopMetrics struct{}

func (nopMetrics) ObserveAnalysis(model.SourceKind, string) {}
func (nopMetrics) ObserveFallback(string)                   {}
func (nopMetrics) ObserveCacheHit()                         {}

// Orchestrator chooses between the model-backed and heuristic paths and
// tags each result with where its data came from.
//
// The heuristic analyzer always computes score, data types and concerns.
// A configured backend only rewrites the prose, and any backend failure
// yields the same result as having no backend at all.
//
// Each AnalyzeDomain call runs a Pipeline of steps:
//
//	cache lookup -> locate -> heuristic analysis -> model prose -> persist
//
// Design decision: the store, locator, backend and metrics are injected as
// interfaces:
//  1. Without a store nothing is cached or recorded, and analysis still works
//  2. Without a backend the heuristic prose is used unchanged
//  3. Tests swap in fakes without touching the network or SQLite
//
// Only the locator has a default, a direct PolicyFetcher.
//
// Store errors are logged and never returned. The only errors callers see
// are malformed input and context cancellation.
type Orchestrator struct {
	analyzer  *analyzer.Analyzer
	locator   Locator
	backend   llm.Backend
	store     ResultStore
	metrics   Metrics
	logger    *slog.Logger
	cacheTTL  time.Duration
	sessionID string
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLocator sets the policy discovery component. Without one, a
// crawler.PolicyFetcher with default settings is used.
func WithLocator(l Locator) OrchestratorOption {
	return func(o *Orchestrator) {
		o.locator = l
	}
}

// WithBackend sets the model backend. Nil means heuristic only.
func WithBackend(b llm.Backend) OrchestratorOption {
	return func(o *Orchestrator) {
		o.backend = b
	}
}

// WithStore sets where results are saved and cached.
func WithStore(s ResultStore) OrchestratorOption {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithOrchestratorLogger sets the logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithCacheTTL sets how long domain results are cached. Zero disables caching.
func WithCacheTTL(ttl time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if ttl >= 0 {
			o.cacheTTL = ttl
		}
	}
}

// WithSessionID attributes saved analyses to a session.
func WithSessionID(id string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.sessionID = id
	}
}

// NewOrchestrator creates an Orchestrator around a.
func NewOrchestrator(a *analyzer.Analyzer, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		analyzer: a,
		metrics:  nopMetrics{},
		cacheTTL: DefaultCacheTTL,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.analyzer == nil {
		o.analyzer = analyzer.New()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.locator == nil {
		o.locator = crawler.NewPolicyFetcher(nil, crawler.WithLogger(o.logger))
	}

	return o
}

// Analyzer returns the heuristic analyzer in use.
func (o *Orchestrator) Analyzer() *analyzer.Analyzer {
	return o.analyzer
}

// HasBackend reports whether a model backend is configured.
func (o *Orchestrator) HasBackend() bool {
	return o.backend != nil
}

// AnalyzeDomain discovers and analyzes the privacy policy of domain.
//
// A policy that cannot be found produces a model.SourceGeneric result, not
// an error. The error is ErrMalformedInput for an unusable domain, or the
// context's error if ctx ends first.
func (o *Orchestrator) AnalyzeDomain(ctx context.Context, domain string) (*model.AnalysisResult, error) {
	target, err := crawler.NormalizeTarget(domain)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	job := &Job{
		Key:     target.Domain,
		Domain:  target.Domain,
		Subject: target.Domain,
	}

	p := o.newPipeline()
	p.AddSteps(
		NewCacheLookupStep(o.store, o.metrics, o.logger),
		NewLocateStep(o.locator),
		NewHeuristicStep(o.analyzer),
		NewProseStep(o.backend, o.metrics, o.logger),
		NewPersistStep(o.store, o.sessionID, o.cacheTTL, o.logger),
	)
	return o.run(ctx, p, job)
}

// AnalyzeText analyzes caller-provided policy text about subject.
// Empty text yields the neutral result.
func (o *Orchestrator) AnalyzeText(ctx context.Context, text, subject string) (*model.AnalysisResult, error) {
	job := &Job{
		Subject: subject,
		Text:    text,
	}

	p := o.newPipeline()
	p.AddSteps(
		NewHeuristicStep(o.analyzer),
		NewProseStep(o.backend, o.metrics, o.logger),
		NewPersistStep(o.store, o.sessionID, o.cacheTTL, o.logger),
	)
	return o.run(ctx, p, job)
}

// AnalyzePlatform analyzes a built-in platform profile. An unknown name
// produces a model.SourceGeneric result.
func (o *Orchestrator) AnalyzePlatform(ctx context.Context, name string) (*model.AnalysisResult, error) {
	job := &Job{Subject: name}

	platform, ok := o.analyzer.Platform(name)
	if ok {
		profile := platform.Profile
		job.Profile = &profile
		job.Subject = profile.Name
	} else {
		// An empty document routes the job to the generic response.
		job.Document = model.NewPolicyDocument("")
	}

	p := o.newPipeline()
	p.AddSteps(
		NewHeuristicStep(o.analyzer),
		NewProseStep(o.backend, o.metrics, o.logger),
		NewPersistStep(o.store, o.sessionID, o.cacheTTL, o.logger),
	)
	return o.run(ctx, p, job)
}

// Chat answers a question about subject. The context comes from a cached
// analysis of subject when the store has one, otherwise from the built-in
// profile. Backend failures fall back to the templated answer.
func (o *Orchestrator) Chat(ctx context.Context, question, subject string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", ErrMalformedInput)
	}

	chatCtx := o.chatContext(ctx, subject)

	if o.backend != nil {
		reply, err := o.backend.Complete(ctx, llm.ChatPrompt(question, chatCtx))
		if err == nil && strings.TrimSpace(reply) != "" {
			return strings.TrimSpace(reply), nil
		}
		if err == nil {
			err = llm.ErrEmptyResponse
		}
		o.logger.Warn("model backend failed, using templated answer",
			"subject", chatCtx.Subject,
			"error", err,
		)
		o.metrics.ObserveFallback(OperationChat)
	}

	return o.analyzer.Answer(question, chatCtx), nil
}

func (o *Orchestrator) chatContext(ctx context.Context, subject string) analyzer.ChatContext {
	if o.store != nil {
		if target, err := crawler.NormalizeTarget(subject); err == nil {
			cached, err := o.store.GetCachedAnalysis(ctx, target.Domain)
			if err != nil {
				o.logger.Warn("cache lookup failed", "key", target.Domain, "error", err)
			}
			if cached != nil {
				return analyzer.ChatContextFromResult(cached)
			}
		}
	}
	return o.analyzer.ChatContextFor(subject)
}

func (o *Orchestrator) newPipeline() *Pipeline {
	return New(WithLogger(o.logger))
}

func (o *Orchestrator) run(ctx context.Context, p *Pipeline, job *Job) (*model.AnalysisResult, error) {
	if err := p.Execute(ctx, job); err != nil {
		return nil, err
	}

	res := job.Result
	o.metrics.ObserveAnalysis(res.SourceKind, res.Backend)
	o.logger.Info("analysis complete",
		"subject", res.CompanyName,
		"source", res.SourceKind,
		"backend", res.Backend,
		"cached", job.Cached,
		"risk", res.RiskPercent(),
	)
	return res, nil
}
