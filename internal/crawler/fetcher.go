package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/policyscan/internal/analyzer"
	"github.com/nao1215/policyscan/internal/httpclient"
	"github.com/nao1215/policyscan/internal/model"
)

const (
	// DefaultAttemptTimeout bounds one GET of the root page or a candidate.
	DefaultAttemptTimeout = 15 * time.Second

	// DefaultProbeTimeout bounds one HEAD probe.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultBudget bounds a whole Locate call. With the other defaults the
	// worst case is one root fetch, four probe rounds and three attempts
	// (15s + 20s + 45s), which fits.
	DefaultBudget = 90 * time.Second

	// DefaultMaxBodySize limits how much of a page is read.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultProbeConcurrency is how many probes run at once.
	DefaultProbeConcurrency = 4

	// MaxCandidates is the length cap of PolicyDocument.CandidateURLs.
	MaxCandidates = 5

	// MaxAttempts is how many candidates are fetched before giving up.
	MaxAttempts = 3

	// MinPolicyLength is the shortest text accepted as a policy, in characters.
	MinPolicyLength = 500

	// MaxPolicyLength is where accepted text is cut, in characters.
	MaxPolicyLength = 10000
)

// ProbePaths are the conventional policy locations tried on every site.
var ProbePaths = []string{
	"/privacy",
	"/privacy-policy",
	"/privacy-notice",
	"/privacy.html",
	"/legal/privacy",
	"/legal/privacy-policy",
	"/terms/privacy",
	"/policy/privacy",
	"/about/privacy",
	"/help/privacy",
	"/support/privacy",
	"/info/privacy",
	"/personvern",      // Norwegian
	"/datenschutz",     // German
	"/confidentialite", // French
}

// linkKeywords mark an anchor as a policy candidate. Matching is done on
// accent-folded text, so "confidentialité" is covered.
var linkKeywords = []string{
	"privacy", "policy", "personvern", "datenschutz",
	"confidentialite", "privacidad", "privacidade",
}

// policyIndicators must appear somewhere in accepted policy text.
var policyIndicators = []string{"privacy", "personal data", "collect", "share", "information", "use"}

// DefaultKnownURLs returns policy locations for sites whose policy is hard
// to discover, keyed by domain without "www.".
func DefaultKnownURLs() map[string]string {
	return map[string]string{
		"spotify.com": "https://www.spotify.com/legal/privacy-policy/",
		"netflix.com": "https://help.netflix.com/legal/privacy",
		"github.com":  "https://docs.github.com/en/site-policy/privacy-policies/github-privacy-statement",
		"airbnb.com":  "https://www.airbnb.com/terms/privacy_policy",
		"discord.com": "https://discord.com/privacy",
	}
}

// Observer receives discovery and retrieval events, typically for metrics.
type Observer interface {
	ObserveCandidates(n int)
	ObserveRetrieval(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveCandidates(int)    {}
func (nopObserver) ObserveRetrieval(string) {}

// PolicyFetcher finds and downloads a site's privacy policy.
//
// Locate works in two phases. Discovery gathers candidate URLs from the
// known table, the root page's links, HEAD probes of ProbePaths and the
// footer, then ranks them by tier. Retrieval fetches the best MaxAttempts
// candidates in order and keeps the first page that passes the length and
// indicator checks.
//
// Design decision: every network step degrades instead of failing:
//  1. A failed root page still leaves the probes to find something
//  2. Each attempt has its own timeout, so a stalled candidate only costs
//     attemptTimeout before the next one is tried
//  3. The budget caps the whole call, and running out of it is reported as
//     ReasonBudgetExceeded rather than an error
//
// The fetcher keeps no state between calls and may be shared by goroutines.
// The *http.Client decides whether requests go direct or through Tor.
type PolicyFetcher struct {
	client           *http.Client
	knownURLs        map[string]string
	userAgent        string
	attemptTimeout   time.Duration
	probeTimeout     time.Duration
	budget           time.Duration
	maxBodySize      int64
	probeConcurrency int
	logger           *slog.Logger
	observer         Observer
}

// FetcherOption configures a PolicyFetcher.
type FetcherOption func(*PolicyFetcher)

// WithKnownURLs adds to (or overrides) the known-URL table. Keys are
// domains, with or without "www.".
func WithKnownURLs(urls map[string]string) FetcherOption {
	return func(f *PolicyFetcher) {
		for domain, u := range urls {
			key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
			if key != "" && u != "" {
				f.knownURLs[key] = u
			}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *PolicyFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithAttemptTimeout sets the timeout of each page fetch.
func WithAttemptTimeout(d time.Duration) FetcherOption {
	return func(f *PolicyFetcher) {
		if d > 0 {
			f.attemptTimeout = d
		}
	}
}

// WithProbeTimeout sets the timeout of each HEAD probe.
func WithProbeTimeout(d time.Duration) FetcherOption {
	return func(f *PolicyFetcher) {
		if d > 0 {
			f.probeTimeout = d
		}
	}
}

// WithBudget sets the overall time limit of Locate.
func WithBudget(d time.Duration) FetcherOption {
	return func(f *PolicyFetcher) {
		if d > 0 {
			f.budget = d
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *PolicyFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithProbeConcurrency sets how many probes run at once.
func WithProbeConcurrency(n int) FetcherOption {
	return func(f *PolicyFetcher) {
		if n > 0 {
			f.probeConcurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *PolicyFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithObserver sets the receiver of discovery and retrieval events.
func WithObserver(o Observer) FetcherOption {
	return func(f *PolicyFetcher) {
		if o != nil {
			f.observer = o
		}
	}
}

// NewPolicyFetcher creates a PolicyFetcher. The client decides how
// connections are made (directly or through Tor); its own timeout, if any,
// still applies on top of the fetcher's.
func NewPolicyFetcher(client *http.Client, opts ...FetcherOption) *PolicyFetcher {
	if client == nil {
		client = httpclient.New()
	}
	f := &PolicyFetcher{
		client:           client,
		knownURLs:        DefaultKnownURLs(),
		userAgent:        httpclient.DefaultUserAgent,
		attemptTimeout:   DefaultAttemptTimeout,
		probeTimeout:     DefaultProbeTimeout,
		budget:           DefaultBudget,
		maxBodySize:      DefaultMaxBodySize,
		probeConcurrency: DefaultProbeConcurrency,
		logger:           slog.Default(),
		observer:         nopObserver{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Locate discovers and retrieves the privacy policy of domain.
//
// The only error is ErrInvalidDomain. Network failures, missing policies and
// rejected pages all produce a document with Retrieved set to false and a
// FailureReason.
func (f *PolicyFetcher) Locate(ctx context.Context, domain string) (*model.PolicyDocument, error) {
	target, err := NormalizeTarget(domain)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.budget)
	defer cancel()

	doc := model.NewPolicyDocument(target.RootURL)

	root := f.fetchRoot(ctx, target)
	title := ""
	if root != nil {
		title = root.Title
	}
	doc.CompanyName = CompanyName(target.Domain, title)

	doc.CandidateURLs = f.discover(ctx, target, root)
	f.observer.ObserveCandidates(len(doc.CandidateURLs))
	f.logger.Debug("policy candidates", "domain", target.Domain, "count", len(doc.CandidateURLs))

	if len(doc.CandidateURLs) == 0 {
		doc.Fail(ReasonNoPolicyURL)
		return doc, nil
	}

	lastReason := ReasonNoPolicyURL
	for _, candidate := range doc.CandidateURLs[:min(len(doc.CandidateURLs), MaxAttempts)] {
		if ctx.Err() != nil {
			lastReason = ReasonBudgetExceeded
			break
		}

		text, outcome, reason := f.retrieve(ctx, candidate)
		f.observer.ObserveRetrieval(outcome)
		doc.Attempts = append(doc.Attempts, model.RetrievalAttempt{
			URL:    candidate,
			OK:     outcome == OutcomeOK,
			Reason: reason,
		})

		if outcome == OutcomeOK {
			doc.Retrieved = true
			doc.SourceURL = candidate
			doc.RawText = text
			doc.FailureReason = ""
			f.logger.Debug("policy retrieved", "url", candidate, "chars", len([]rune(text)))
			return doc, nil
		}

		f.logger.Debug("policy candidate rejected", "url", candidate, "reason", reason)
		lastReason = reason
		if ctx.Err() != nil {
			lastReason = ReasonBudgetExceeded
			break
		}
	}

	doc.Fail(lastReason)
	return doc, nil
}

// fetchRoot downloads and parses the root page. Failure is not fatal:
// discovery continues with probes only.
func (f *PolicyFetcher) fetchRoot(ctx context.Context, target Target) *ParseResult {
	ctx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	body, finalURL, status, err := f.get(ctx, target.RootURL)
	if err != nil {
		f.logger.Debug("root page fetch failed", "url", target.RootURL, "error", err)
		return nil
	}
	if status < 200 || status > 299 {
		f.logger.Debug("root page fetch failed", "url", target.RootURL, "status", status)
		return nil
	}

	parser, err := NewParser(finalURL)
	if err != nil {
		return nil
	}
	result, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		f.logger.Debug("root page parse failed", "url", finalURL, "error", err)
		return nil
	}
	return result
}

// discover builds the ranked candidate list from the known URL, keyword
// links, probe hits and footer links, in that order, then stable-sorts the
// whole list by tier.
//
// The known URL takes part in the sort like every other candidate. It only
// wins ties inside its own tier, so a discovered "privacy-policy" page still
// beats a curated "/legal/privacy" entry.
func (f *PolicyFetcher) discover(ctx context.Context, target Target, root *ParseResult) []string {
	found := make([]string, 0)
	if known := f.knownURLs[target.Domain]; known != "" {
		found = append(found, known)
	}
	if root != nil {
		found = appendPolicyLinks(found, root.Links)
	}
	found = append(found, f.probe(ctx, target)...)
	if root != nil {
		found = appendPolicyLinks(found, root.FooterLinks)
	}

	seen := make(map[string]bool, len(found))
	candidates := make([]string, 0, len(found))
	for _, u := range found {
		if !seen[u] {
			seen[u] = true
			candidates = append(candidates, u)
		}
	}
	slices.SortStableFunc(candidates, func(a, b string) int {
		return urlTier(a) - urlTier(b)
	})

	return candidates[:min(len(candidates), MaxCandidates)]
}

func appendPolicyLinks(dst []string, links []Link) []string {
	for _, l := range links {
		if isPolicyLink(l) {
			dst = append(dst, l.URL)
		}
	}
	return dst
}

func isPolicyLink(l Link) bool {
	for _, s := range []string{l.URL, l.Text} {
		folded := analyzer.Fold(s)
		for _, kw := range linkKeywords {
			if strings.Contains(folded, kw) {
				return true
			}
		}
	}
	return false
}

// urlTier ranks explicit "privacy policy" URLs before other privacy URLs,
// and those before everything else.
func urlTier(u string) int {
	lower := strings.ToLower(u)
	switch {
	case strings.Contains(lower, "privacy-policy"),
		strings.Contains(lower, "privacy_policy"),
		strings.Contains(lower, "privacypolicy"):
		return 0
	case strings.Contains(lower, "privacy"):
		return 1
	default:
		return 2
	}
}

// probe sends HEAD requests for every ProbePaths entry against the origin
// and returns the hits in ProbePaths order.
func (f *PolicyFetcher) probe(ctx context.Context, target Target) []string {
	hits := make([]bool, len(ProbePaths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.probeConcurrency)
	for i, path := range ProbePaths {
		g.Go(func() error {
			hits[i] = f.head(ctx, target.Origin+path)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes never return errors

	out := make([]string, 0)
	for i, ok := range hits {
		if ok {
			out = append(out, target.Origin+ProbePaths[i])
		}
	}
	return out
}

func (f *PolicyFetcher) head(ctx context.Context, u string) bool {
	ctx, cancel := context.WithTimeout(ctx, f.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	return resp.StatusCode == http.StatusOK
}

// retrieve fetches one candidate and validates its text.
func (f *PolicyFetcher) retrieve(ctx context.Context, u string) (text, outcome, reason string) {
	ctx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	body, _, status, err := f.get(ctx, u)
	if err != nil {
		return "", OutcomeNetworkError, err.Error()
	}
	if status < 200 || status > 299 {
		return "", OutcomeBadStatus, fmt.Sprintf("unexpected status %d", status)
	}

	extracted, err := ExtractPolicyText(bytes.NewReader(body))
	if err != nil {
		return "", OutcomeNotPolicy, fmt.Sprintf("failed to parse page: %v", err)
	}
	return validatePolicyText(extracted)
}

// validatePolicyText applies the length and indicator checks and truncates
// accepted text to MaxPolicyLength.
func validatePolicyText(text string) (string, string, string) {
	if len([]rune(text)) < MinPolicyLength {
		return "", OutcomeTooShort, ReasonTooShort
	}
	folded := analyzer.Fold(text)
	if !slices.ContainsFunc(policyIndicators, func(ind string) bool {
		return strings.Contains(folded, ind)
	}) {
		return "", OutcomeNotPolicy, ReasonNotPolicy
	}
	return model.Truncate(text, MaxPolicyLength), OutcomeOK, ""
}

// get performs a GET and returns the body, the URL after redirects and the status.
func (f *PolicyFetcher) get(ctx context.Context, u string) ([]byte, string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, "", 0, fmt.Errorf("request timed out: %w", err)
		}
		return nil, "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, "", resp.StatusCode, err
	}
	return body, resp.Request.URL.String(), resp.StatusCode, nil
}
