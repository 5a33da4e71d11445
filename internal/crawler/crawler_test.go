package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// policyPage returns an HTML page whose main text looks like a policy and is
// at least minChars long.
func policyPage(minChars int) string {
	var b strings.Builder
	for b.Len() < minChars {
		b.WriteString("We collect personal information when you use our services and may share it with partners. ")
	}
	return `<html><head><title>Privacy</title></head><body>
		<nav>Home About Careers</nav>
		<main>` + b.String() + `</main>
		<footer>Copyright</footer>
	</body></html>`
}

const shortPage = `<html><body><main>Privacy. Too short.</main></body></html>`

func TestNormalizeTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Target
		wantErr bool
	}{
		{
			name:  "scheme www and trailing slash",
			input: "https://www.Example.com/",
			want:  Target{Origin: "https://example.com", RootURL: "https://www.example.com", Domain: "example.com"},
		},
		{
			name:  "bare domain gets https",
			input: "example.com",
			want:  Target{Origin: "https://example.com", RootURL: "https://example.com", Domain: "example.com"},
		},
		{
			name:  "path and spaces ignored",
			input: "  Example.com/about?x=1 ",
			want:  Target{Origin: "https://example.com", RootURL: "https://example.com", Domain: "example.com"},
		},
		{
			name:  "http kept",
			input: "http://www.finn.no",
			want:  Target{Origin: "http://finn.no", RootURL: "http://www.finn.no", Domain: "finn.no"},
		},
		{
			name:  "port kept",
			input: "http://127.0.0.1:8080/",
			want:  Target{Origin: "http://127.0.0.1:8080", RootURL: "http://127.0.0.1:8080", Domain: "127.0.0.1"},
		},
		{name: "empty", input: "   ", wantErr: true},
		{name: "unsupported scheme", input: "ftp://example.com", wantErr: true},
		{name: "no host", input: "https://", wantErr: true},
		{name: "space in host", input: "exa mple.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeTarget(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDomain) {
					t.Errorf("expected ErrInvalidDomain, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestCompanyName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		domain string
		title  string
		want   string
	}{
		{"www.spotify.com", "", "Spotify"},
		{"github.com", "", "Github"},
		{"finn.no", "", "Finn"},
		{"bbc.co.uk", "", "Bbc"},
		{"shop.example.org", "", "Shop"},
		{"example.com", "Acme | Home", "Acme"},
		{"example.com", "Acme - Shop | Best", "Acme - Shop"},
		{"example.com", "Acme – Welcome", "Acme"},
		{"example.com", "Plain Title", "Plain Title"},
		{"example.com", "   ", "Example"},
		{"", "", "Unknown Company"},
	}

	for _, tt := range tests {
		t.Run(tt.domain+"/"+tt.title, func(t *testing.T) {
			t.Parallel()

			if got := CompanyName(tt.domain, tt.title); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>  Test
			Page </title></head><body></body></html>`
		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if result.Title != "Test Page" {
			t.Errorf("expected title 'Test Page', got %q", result.Title)
		}
	})

	t.Run("resolves links and skips non-page hrefs", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
			<a href="/privacy">Privacy <b>Policy</b></a>
			<a href="https://other.example/terms">Terms</a>
			<a href="mailto:dpo@example.com">Mail</a>
			<a href="javascript:void(0)">JS</a>
			<a href="#top">Top</a>
			<a>No href</a>
		</body></html>`
		parser, err := NewParser("https://example.com/start")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		want := []Link{
			{URL: "https://example.com/privacy", Text: "Privacy Policy"},
			{URL: "https://other.example/terms", Text: "Terms"},
		}
		if len(result.Links) != len(want) {
			t.Fatalf("expected %d links, got %d: %v", len(want), len(result.Links), result.Links)
		}
		for i := range want {
			if result.Links[i] != want[i] {
				t.Errorf("link %d: expected %+v, got %+v", i, want[i], result.Links[i])
			}
		}
	})

	t.Run("footer links from footer element", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
			<a href="/a">A</a>
			<footer><a href="/b">B</a></footer>
		</body></html>`
		parser, _ := NewParser("https://example.com/")
		result, err := parser.Parse(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if len(result.FooterLinks) != 1 || result.FooterLinks[0].URL != "https://example.com/b" {
			t.Errorf("unexpected footer links: %v", result.FooterLinks)
		}
	})

	t.Run("footer links from footer class", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
			<div class="content"><a href="/a">A</a></div>
			<div class="site-Footer"><a href="/c">C</a></div>
		</body></html>`
		parser, _ := NewParser("https://example.com/")
		result, err := parser.Parse(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if len(result.FooterLinks) != 1 || result.FooterLinks[0].URL != "https://example.com/c" {
			t.Errorf("unexpected footer links: %v", result.FooterLinks)
		}
	})

	t.Run("text strips chrome and prefers main", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>T</title><style>.x{}</style></head><body>
			<header>Site header</header>
			<nav>Menu</nav>
			<div>Outside text</div>
			<main>Policy   body
				<script>var x = 1;</script>
				<aside>Related</aside>
				text</main>
			<footer>Footer text</footer>
		</body></html>`
		text, err := ExtractPolicyText(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if text != "Policy body text" {
			t.Errorf("expected 'Policy body text', got %q", text)
		}
	})
}

func TestExtractPolicyText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "main before article",
			page: `<body><article>Article</article><main>Main</main></body>`,
			want: "Main",
		},
		{
			name: "article before content class",
			page: `<body><div class="content">Content</div><article>Article</article></body>`,
			want: "Article",
		},
		{
			name: "content class",
			page: `<body><div>Other</div><section class="Privacy-Text">Policy</section></body>`,
			want: "Policy",
		},
		{
			name: "container div",
			page: `<body><p>Intro</p><div class="page-wrapper">Wrapped</div></body>`,
			want: "Wrapped",
		},
		{
			name: "body fallback",
			page: `<html><head><title>Ignored</title></head><body><p>One</p> <p>Two</p></body></html>`,
			want: "One Two",
		},
		{
			name: "region inside stripped element is ignored",
			page: `<body><nav><main>Menu</main></nav><p>Body text</p></body>`,
			want: "Body text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ExtractPolicyText(strings.NewReader(tt.page))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestURLTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want int
	}{
		{"https://x.com/legal/privacy-policy", 0},
		{"https://x.com/privacy_policy", 0},
		{"https://x.com/PrivacyPolicy", 0},
		{"https://x.com/privacy", 1},
		{"https://x.com/legal/Privacy-Notice", 1},
		{"https://x.com/datenschutz", 2},
		{"https://x.com/policy", 2},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()

			if got := urlTier(tt.url); got != tt.want {
				t.Errorf("expected tier %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDefaultTimingsFitBudget(t *testing.T) {
	t.Parallel()

	probeRounds := (len(ProbePaths) + DefaultProbeConcurrency - 1) / DefaultProbeConcurrency
	worst := DefaultAttemptTimeout + // root page
		time.Duration(probeRounds)*DefaultProbeTimeout +
		MaxAttempts*DefaultAttemptTimeout
	if worst > DefaultBudget {
		t.Errorf("expected worst case %v to fit in budget %v", worst, DefaultBudget)
	}
}

func TestValidatePolicyText(t *testing.T) {
	t.Parallel()

	t.Run("rejects text under minimum length", func(t *testing.T) {
		t.Parallel()

		_, outcome, reason := validatePolicyText(strings.Repeat("privacy ", 63)[:499])
		if outcome != OutcomeTooShort || reason != ReasonTooShort {
			t.Errorf("expected too short, got %s %q", outcome, reason)
		}
	})

	t.Run("accepts text at minimum length", func(t *testing.T) {
		t.Parallel()

		_, outcome, _ := validatePolicyText(strings.Repeat("privacy ", 63)[:500])
		if outcome != OutcomeOK {
			t.Errorf("expected ok, got %s", outcome)
		}
	})

	t.Run("rejects text without indicators", func(t *testing.T) {
		t.Parallel()

		_, outcome, reason := validatePolicyText(strings.Repeat("lorem ipsum dolor sit amet ", 40))
		if outcome != OutcomeNotPolicy || reason != ReasonNotPolicy {
			t.Errorf("expected not a policy, got %s %q", outcome, reason)
		}
	})

	t.Run("truncates long text", func(t *testing.T) {
		t.Parallel()

		text, outcome, _ := validatePolicyText(strings.Repeat("privacy é ", 2000))
		if outcome != OutcomeOK {
			t.Fatalf("expected ok, got %s", outcome)
		}
		if n := len([]rune(text)); n != MaxPolicyLength {
			t.Errorf("expected %d characters, got %d", MaxPolicyLength, n)
		}
	})
}

type sitePage struct {
	status int
	body   string
}

// site is a test website: exact paths map to pages, everything else is 404.
type site map[string]sitePage

func (s site) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := s[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(p.status)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte(p.body))
		}
	})
}

type countingObserver struct {
	mu         sync.Mutex
	candidates int
	outcomes   []string
}

func (o *countingObserver) ObserveCandidates(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.candidates = n
}

func (o *countingObserver) ObserveRetrieval(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func TestLocate(t *testing.T) {
	t.Parallel()

	t.Run("ranks candidates and retrieves the best", func(t *testing.T) {
		t.Parallel()

		root := `<html><head><title>Acme Corp | Home</title></head><body>
			<a href="/about">Privacy</a>
			<a href="/jobs">Careers</a>
			<a href="/privacy-policy">Read this</a>
		</body></html>`
		srv := httptest.NewServer(site{
			"/":               {http.StatusOK, root},
			"/privacy":        {http.StatusOK, shortPage},
			"/privacy-policy": {http.StatusOK, policyPage(800)},
		}.handler())
		defer srv.Close()

		obs := &countingObserver{}
		fetcher := NewPolicyFetcher(srv.Client(), WithObserver(obs))
		doc, err := fetcher.Locate(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{srv.URL + "/privacy-policy", srv.URL + "/privacy", srv.URL + "/about"}
		if fmt.Sprint(doc.CandidateURLs) != fmt.Sprint(want) {
			t.Errorf("expected candidates %v, got %v", want, doc.CandidateURLs)
		}
		if !doc.Retrieved {
			t.Fatalf("expected retrieval, got failure %q", doc.FailureReason)
		}
		if doc.SourceURL != srv.URL+"/privacy-policy" {
			t.Errorf("unexpected source URL %q", doc.SourceURL)
		}
		if doc.CompanyName != "Acme Corp" {
			t.Errorf("expected company 'Acme Corp', got %q", doc.CompanyName)
		}
		if strings.Contains(doc.RawText, "Careers") || strings.Contains(doc.RawText, "Copyright") {
			t.Errorf("page chrome leaked into text: %q", doc.RawText[:80])
		}
		if len(doc.Attempts) != 1 || !doc.Attempts[0].OK {
			t.Errorf("expected one successful attempt, got %+v", doc.Attempts)
		}
		if obs.candidates != 3 || len(obs.outcomes) != 1 || obs.outcomes[0] != OutcomeOK {
			t.Errorf("unexpected observations: %d %v", obs.candidates, obs.outcomes)
		}
	})

	t.Run("falls through to next candidate", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(site{
			"/":               {http.StatusOK, `<a href="/privacy-policy">x</a>`},
			"/privacy-policy": {http.StatusOK, shortPage},
			"/privacy":        {http.StatusOK, policyPage(600)},
		}.handler())
		defer srv.Close()

		doc, err := NewPolicyFetcher(srv.Client()).Locate(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !doc.Retrieved || doc.SourceURL != srv.URL+"/privacy" {
			t.Fatalf("expected retrieval from /privacy, got %+v", doc)
		}
		if len(doc.Attempts) != 2 || doc.Attempts[0].Reason != ReasonTooShort {
			t.Errorf("unexpected attempts %+v", doc.Attempts)
		}
	})

	t.Run("tries at most three candidates", func(t *testing.T) {
		t.Parallel()

		pages := site{}
		var links strings.Builder
		for i := range 7 {
			path := fmt.Sprintf("/policy-%d", i)
			pages[path] = sitePage{http.StatusOK, shortPage}
			fmt.Fprintf(&links, `<a href="%s">doc</a>`, path)
		}
		pages["/"] = sitePage{http.StatusOK, links.String()}

		srv := httptest.NewServer(pages.handler())
		defer srv.Close()

		doc, err := NewPolicyFetcher(srv.Client()).Locate(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Retrieved {
			t.Fatal("expected failure")
		}
		if len(doc.CandidateURLs) != MaxCandidates {
			t.Errorf("expected %d candidates, got %d", MaxCandidates, len(doc.CandidateURLs))
		}
		if len(doc.Attempts) != MaxAttempts {
			t.Errorf("expected %d attempts, got %d", MaxAttempts, len(doc.Attempts))
		}
		if doc.FailureReason != ReasonTooShort {
			t.Errorf("expected %q, got %q", ReasonTooShort, doc.FailureReason)
		}
		if doc.RawText != "" || doc.SourceURL != "" {
			t.Error("expected no text or source on failure")
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(site{
			"/": {http.StatusOK, `<html><head><title>Nothing</title></head><body><a href="/shop">Shop</a></body></html>`},
		}.handler())
		defer srv.Close()

		doc, err := NewPolicyFetcher(srv.Client()).Locate(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Retrieved || doc.FailureReason != ReasonNoPolicyURL {
			t.Errorf("expected %q, got retrieved=%v reason=%q", ReasonNoPolicyURL, doc.Retrieved, doc.FailureReason)
		}
		if len(doc.CandidateURLs) != 0 || len(doc.Attempts) != 0 {
			t.Errorf("expected no candidates or attempts, got %v %v", doc.CandidateURLs, doc.Attempts)
		}
		if doc.CompanyName != "Nothing" {
			t.Errorf("expected company from title, got %q", doc.CompanyName)
		}
	})

	t.Run("root page failure still probes", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(site{
			"/":            {http.StatusInternalServerError, "boom"},
			"/datenschutz": {http.StatusOK, policyPage(600)},
		}.handler())
		defer srv.Close()

		doc, err := NewPolicyFetcher(srv.Client()).Locate(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !doc.Retrieved || doc.SourceURL != srv.URL+"/datenschutz" {
			t.Errorf("expected retrieval from probe, got %+v", doc)
		}
		if doc.CompanyName != "127" {
			t.Errorf("expected domain-derived name, got %q", doc.CompanyName)
		}
	})

	t.Run("bad status and non-policy content", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(site{
			"/":               {http.StatusOK, `<a href="/privacy-policy">p</a><a href="/privacy-notice">n</a>`},
			"/privacy-notice": {http.StatusOK, "<main>" + strings.Repeat("lorem ipsum dolor sit amet ", 40) + "</main>"},
		}.handler())
		defer srv.Close()

		doc, err := NewPolicyFetcher(srv.Client()).Locate(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(doc.Attempts) != 2 {
			t.Fatalf("expected 2 attempts, got %+v", doc.Attempts)
		}
		if doc.Attempts[0].Reason != "unexpected status 404" {
			t.Errorf("unexpected first reason %q", doc.Attempts[0].Reason)
		}
		if doc.FailureReason != ReasonNotPolicy {
			t.Errorf("expected %q, got %q", ReasonNotPolicy, doc.FailureReason)
		}
	})

	t.Run("known URL ranked within its tier", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(site{
			"/":                   {http.StatusOK, `<a href="/privacy-policy">p</a>`},
			"/privacy-policy":     {http.StatusOK, shortPage},
			"/privacy":            {http.StatusOK, policyPage(600)},
			"/help/legal/privacy": {http.StatusOK, policyPage(700)},
		}.handler())
		defer srv.Close()

		known := srv.URL + "/help/legal/privacy"
		fetcher := NewPolicyFetcher(srv.Client(), WithKnownURLs(map[string]string{"www.127.0.0.1": known}))
		doc, err := fetcher.Locate(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{srv.URL + "/privacy-policy", known, srv.URL + "/privacy"}
		if fmt.Sprint(doc.CandidateURLs) != fmt.Sprint(want) {
			t.Errorf("expected candidates %v, got %v", want, doc.CandidateURLs)
		}
		for i := 1; i < len(doc.CandidateURLs); i++ {
			prev, cur := doc.CandidateURLs[i-1], doc.CandidateURLs[i]
			if urlTier(prev) > urlTier(cur) {
				t.Errorf("expected tier order, got %q (tier %d) before %q (tier %d)",
					prev, urlTier(prev), cur, urlTier(cur))
			}
		}
		if doc.SourceURL != known {
			t.Errorf("expected source from known URL, got %q", doc.SourceURL)
		}
	})

	t.Run("stalled candidate does not block the next", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		pages := site{
			"/":               {http.StatusOK, `<a href="/privacy-policy">p</a>`},
			"/privacy-policy": {http.StatusOK, policyPage(600)},
			"/privacy-notice": {http.StatusOK, policyPage(600)},
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && r.URL.Path == "/privacy-policy" {
				select {
				case <-r.Context().Done():
				case <-release:
				}
				return
			}
			pages.handler().ServeHTTP(w, r)
		}))
		defer srv.Close()
		defer close(release)

		fetcher := NewPolicyFetcher(srv.Client(), WithAttemptTimeout(200*time.Millisecond))
		start := time.Now()
		doc, err := fetcher.Locate(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !doc.Retrieved || doc.SourceURL != srv.URL+"/privacy-notice" {
			t.Fatalf("expected retrieval from /privacy-notice, got %+v", doc)
		}
		if len(doc.Attempts) != 2 || doc.Attempts[0].OK {
			t.Fatalf("expected a failed first attempt, got %+v", doc.Attempts)
		}
		if !strings.Contains(doc.Attempts[0].Reason, "timed out") {
			t.Errorf("expected timeout reason, got %q", doc.Attempts[0].Reason)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("expected the stall to be cut short, took %v", elapsed)
		}
	})

	t.Run("budget exceeded", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		pages := site{
			"/":               {http.StatusOK, `<a href="/privacy-notice">n</a>`},
			"/privacy-notice": {http.StatusOK, policyPage(600)},
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/slow/privacy" {
				select {
				case <-r.Context().Done():
				case <-release:
				}
				return
			}
			pages.handler().ServeHTTP(w, r)
		}))
		defer srv.Close()
		defer close(release)

		fetcher := NewPolicyFetcher(srv.Client(),
			WithKnownURLs(map[string]string{"127.0.0.1": srv.URL + "/slow/privacy"}),
			WithAttemptTimeout(5*time.Second),
			WithBudget(300*time.Millisecond),
		)
		doc, err := fetcher.Locate(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Retrieved {
			t.Fatalf("expected failure, got source %q", doc.SourceURL)
		}
		if doc.FailureReason != ReasonBudgetExceeded {
			t.Errorf("expected %q, got %q", ReasonBudgetExceeded, doc.FailureReason)
		}
		if len(doc.Attempts) != 1 {
			t.Errorf("expected only the stalled attempt, got %+v", doc.Attempts)
		}
	})

	t.Run("accented link text", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(site{
			"/":    {http.StatusOK, `<footer><a href="/vie">Confidentialité</a></footer>`},
			"/vie": {http.StatusOK, policyPage(600)},
		}.handler())
		defer srv.Close()

		doc, err := NewPolicyFetcher(srv.Client()).Locate(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.SourceURL != srv.URL+"/vie" {
			t.Errorf("expected /vie, got %+v", doc)
		}
	})

	t.Run("unreachable site", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		doc, err := NewPolicyFetcher(srv.Client()).Locate(context.Background(), url)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Retrieved || doc.FailureReason != ReasonNoPolicyURL {
			t.Errorf("expected no policy, got %+v", doc)
		}
	})

	t.Run("invalid domain", func(t *testing.T) {
		t.Parallel()

		doc, err := NewPolicyFetcher(nil).Locate(context.Background(), "")
		if !errors.Is(err, ErrInvalidDomain) {
			t.Errorf("expected ErrInvalidDomain, got %v", err)
		}
		if doc != nil {
			t.Error("expected nil document")
		}
	})
}
