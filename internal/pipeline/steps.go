package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/policyscan/internal/analyzer"
	"github.com/nao1215/policyscan/internal/crawler"
	"github.com/nao1215/policyscan/internal/llm"
	"github.com/nao1215/policyscan/internal/model"
)

// Fallback operations reported to Metrics.
const (
	OperationAnalysis = "analysis"
	OperationChat     = "chat"
)

// CacheLookupStep loads a stored result for the job's key.
// A hit leaves the cached result in the job; later steps then skip.
type CacheLookupStep struct {
	store   ResultStore
	metrics Metrics
	logger  *slog.Logger
}

// NewCacheLookupStep creates a cache lookup step.
func NewCacheLookupStep(store ResultStore, metrics Metrics, logger *slog.Logger) *CacheLookupStep {
	return &CacheLookupStep{store: store, metrics: metrics, logger: logger}
}

// Name returns the step name.
func (s *CacheLookupStep) Name() string {
	return "cache_lookup"
}

// Do executes the cache lookup step.
func (s *CacheLookupStep) Do(ctx context.Context, job *Job) error {
	if s.store == nil || job.Key == "" || job.Result != nil {
		return nil
	}

	cached, err := s.store.GetCachedAnalysis(ctx, job.Key)
	if err != nil {
		s.logger.Warn("cache lookup failed", "key", job.Key, "error", err)
		return nil
	}
	if cached == nil {
		return nil
	}

	s.logger.Debug("cache hit", "key", job.Key)
	s.metrics.ObserveCacheHit()
	job.Result = cached
	job.Cached = true
	return nil
}

// LocateStep discovers and retrieves the privacy policy of the job's domain.
type LocateStep struct {
	locator Locator
}

// NewLocateStep creates a policy discovery step.
func NewLocateStep(locator Locator) *LocateStep {
	return &LocateStep{locator: locator}
}

// Name returns the step name.
func (s *LocateStep) Name() string {
	return "locate_policy"
}

// Do executes the discovery step. Only an invalid domain is an error;
// a policy that cannot be found is recorded on the document.
func (s *LocateStep) Do(ctx context.Context, job *Job) error {
	if job.Result != nil || job.Domain == "" {
		return nil
	}

	doc, err := s.locator.Locate(ctx, job.Domain)
	if err != nil {
		if errors.Is(err, crawler.ErrInvalidDomain) {
			return fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return err
	}

	job.Document = doc
	if doc.CompanyName != "" {
		job.Subject = doc.CompanyName
	}
	return nil
}

// HeuristicStep produces the rule-based result for the job. It is the whole
// analysis when no model backend is configured.
type HeuristicStep struct {
	analyzer *analyzer.Analyzer
}

// NewHeuristicStep creates a heuristic analysis step.
func NewHeuristicStep(a *analyzer.Analyzer) *HeuristicStep {
	return &HeuristicStep{analyzer: a}
}

// Name returns the step name.
func (s *HeuristicStep) Name() string {
	return "heuristic_analysis"
}

// Do executes the heuristic analysis step.
func (s *HeuristicStep) Do(_ context.Context, job *Job) error {
	if job.Result != nil {
		return nil
	}

	var res *model.AnalysisResult
	switch {
	case job.Profile != nil:
		res = s.analyzer.AnalyzeProfile(*job.Profile)
		job.PolicyText = job.Profile.Text

	case job.Document != nil && job.Document.Retrieved:
		res = s.analyzer.Analyze(job.Document.RawText, job.Subject)
		res.SourceKind = model.SourceLiveScraping
		res.PrivacyURL = job.Document.SourceURL
		job.PolicyText = job.Document.RawText

	case job.Document != nil:
		res = s.analyzer.Generic(job.Subject)

	default:
		res = s.analyzer.Analyze(job.Text, job.Subject)
		job.PolicyText = job.Text
	}

	res.Website = job.Domain
	job.Result = res
	return nil
}

// ProseStep asks the model backend for the narrative fields. Any failure
// leaves the heuristic prose in place, exactly as if no backend existed.
type ProseStep struct {
	backend llm.Backend
	metrics Metrics
	logger  *slog.Logger
}

// NewProseStep creates a model prose step.
func NewProseStep(backend llm.Backend, metrics Metrics, logger *slog.Logger) *ProseStep {
	return &ProseStep{backend: backend, metrics: metrics, logger: logger}
}

// Name returns the step name.
func (s *ProseStep) Name() string {
	return "model_prose"
}

// Do executes the model prose step. Score, data types and concerns are
// never touched.
func (s *ProseStep) Do(ctx context.Context, job *Job) error {
	res := job.Result
	if s.backend == nil || res == nil || job.Cached || res.SourceKind == model.SourceGeneric {
		return nil
	}

	reply, err := s.backend.Complete(ctx, llm.HarmfulPrompt(res.CompanyName, job.PolicyText))
	if err == nil {
		var sections llm.Sections
		sections, err = llm.ParseHarmfulResponse(reply)
		if err == nil {
			if !sections.Complete() {
				s.logger.Debug("model reply is missing sections, filling in",
					"subject", res.CompanyName,
				)
			}
			sections = sections.WithFallbacks(res.CompanyName)
			res.HarmfulPoints = sections.HarmfulPoints
			res.WorstData = sections.WorstData
			res.Recommendation = sections.Recommendation
			res.Backend = model.BackendModel
			return nil
		}
	}

	s.logger.Warn("model backend failed, using heuristic prose",
		"subject", res.CompanyName,
		"error", err,
	)
	s.metrics.ObserveFallback(OperationAnalysis)
	return nil
}

// PersistStep records the result in the store. Store failures are logged
// and never stop the analysis.
type PersistStep struct {
	store     ResultStore
	sessionID string
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewPersistStep creates a persistence step.
func NewPersistStep(store ResultStore, sessionID string, cacheTTL time.Duration, logger *slog.Logger) *PersistStep {
	return &PersistStep{
		store:     store,
		sessionID: sessionID,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persistence step.
func (s *PersistStep) Do(ctx context.Context, job *Job) error {
	res := job.Result
	if s.store == nil || res == nil || job.Cached {
		return nil
	}

	if _, err := s.store.SaveAnalysis(ctx, res, s.sessionID); err != nil {
		s.logger.Warn("failed to save analysis", "subject", res.CompanyName, "error", err)
	}

	// Generic results are not cached so a later run can retry discovery.
	if job.Key != "" && s.cacheTTL > 0 && res.SourceKind != model.SourceGeneric {
		if err := s.store.CacheAnalysis(ctx, job.Key, res, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache analysis", "key", job.Key, "error", err)
		}
	}

	if s.sessionID != "" {
		if err := s.store.UpdateUserSession(ctx, s.sessionID, res.CompanyName); err != nil {
			s.logger.Warn("failed to update session", "session", s.sessionID, "error", err)
		}
	}
	return nil
}
