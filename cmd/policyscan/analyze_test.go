package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/policyscan/internal/config"
	"github.com/nao1215/policyscan/internal/pipeline"
	"github.com/nao1215/policyscan/internal/tor"
)

// riskyPolicy trips every built-in concern rule.
var riskyPolicy = strings.Repeat("We collect your email, location and browsing history, "+
	"sell it to third party partners, track you across other sites and keep it permanently. ", 6)

// newPolicySite serves a home page that links to a privacy policy.
func newPolicySite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Acme Corp | Home</title></head><body>
			<a href="/shop">Shop</a>
			<footer><a href="/privacy-policy">Privacy Policy</a></footer>
		</body></html>`))
	})
	mux.HandleFunc("/privacy-policy", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><main><h1>Privacy Policy</h1><p>" + riskyPolicy + "</p></main></body></html>"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewAnalyzeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAnalyzeCmd()
	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "tor", defValue: "false"},
		{name: "external-tor", shorthand: "e", defValue: ""},
		{name: "timeout", shorthand: "t", defValue: config.DefaultTimeout.String()},
		{name: "attempt-timeout", defValue: config.DefaultAttemptTimeout.String()},
		{name: "batch", shorthand: "b", defValue: "4"},
		{name: "no-cache", defValue: "false"},
		{name: "cache-ttl", defValue: config.DefaultCacheTTL.String()},
		{name: "no-save", defValue: "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func TestRunAnalyzeCmd(t *testing.T) {
	t.Run("requires a target", func(t *testing.T) {
		env := newCLIEnv(t)
		_, _, err := env.run(t, "", "analyze")
		if !errors.Is(err, config.ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("rejects conflicting formats", func(t *testing.T) {
		env := newCLIEnv(t)
		_, _, err := env.run(t, "", "analyze", "example.com", "--json", "--markdown")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("rejects a malformed domain", func(t *testing.T) {
		env := newCLIEnv(t)
		_, _, err := env.run(t, "", "analyze", "ftp://example.com")
		if !errors.Is(err, pipeline.ErrMalformedInput) {
			t.Errorf("expected ErrMalformedInput, got %v", err)
		}
	})

	t.Run("fails when the Tor proxy is down", func(t *testing.T) {
		env := newCLIEnv(t)
		_, _, err := env.run(t, "", "analyze", "example.com", "-e", "127.0.0.1:1")
		if !errors.Is(err, tor.ErrProxyCannotConnect) {
			t.Errorf("expected ErrProxyCannotConnect, got %v", err)
		}
	})

	t.Run("analyzes a discovered policy", func(t *testing.T) {
		env := newCLIEnv(t)
		srv := newPolicySite(t)

		stdout, _, err := env.run(t, "", "analyze", srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Company:    Acme Corp", "Risk level: HIGH", "/privacy-policy"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
			}
		}
	})

	t.Run("writes JSON", func(t *testing.T) {
		env := newCLIEnv(t)
		srv := newPolicySite(t)

		stdout, _, err := env.run(t, "", "analyze", srv.URL, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if got["companyName"] != "Acme Corp" {
			t.Errorf("expected companyName 'Acme Corp', got %v", got["companyName"])
		}
		if got["sourceKind"] != "live_scraping" {
			t.Errorf("expected sourceKind 'live_scraping', got %v", got["sourceKind"])
		}
		if got["privacyUrl"] != srv.URL+"/privacy-policy" {
			t.Errorf("unexpected privacyUrl %v", got["privacyUrl"])
		}
		if got["riskLevel"] != "HIGH" {
			t.Errorf("expected riskLevel 'HIGH', got %v", got["riskLevel"])
		}
	})

	t.Run("falls back to a generic result", func(t *testing.T) {
		env := newCLIEnv(t)
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		stdout, _, err := env.run(t, "", "analyze", srv.URL, "--json", "--no-save")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got map[string]any
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got["sourceKind"] != "generic" {
			t.Errorf("expected sourceKind 'generic', got %v", got["sourceKind"])
		}
		if _, err := os.Stat(env.dataDir); !os.IsNotExist(err) {
			t.Error("expected no database with --no-save")
		}
	})

	t.Run("batch prints session summary", func(t *testing.T) {
		env := newCLIEnv(t)
		first := newPolicySite(t)
		second := newPolicySite(t)

		stdout, _, err := env.run(t, "", "analyze", first.URL, second.URL, "-b", "1", "--no-cache")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Session: 2 analyses of Acme Corp\n") {
			t.Errorf("expected session summary, got %q", stdout)
		}
	})

	t.Run("reports batch failures", func(t *testing.T) {
		env := newCLIEnv(t)
		srv := newPolicySite(t)

		stdout, _, err := env.run(t, "", "analyze", srv.URL, "ftp://example.com", "-b", "2")
		if err == nil {
			t.Fatal("expected error for the malformed domain")
		}
		if !strings.Contains(err.Error(), "1 of 2 domains") {
			t.Errorf("unexpected error: %v", err)
		}
		if !errors.Is(err, pipeline.ErrMalformedInput) {
			t.Errorf("expected ErrMalformedInput in %v", err)
		}
		if !strings.Contains(stdout, "Analyzing 2 domains") || !strings.Contains(stdout, "Acme Corp") {
			t.Errorf("expected progress and report, got:\n%s", stdout)
		}
	})

	t.Run("writes metrics on exit", func(t *testing.T) {
		env := newCLIEnv(t)
		srv := newPolicySite(t)
		metricsPath := filepath.Join(t.TempDir(), "policyscan.prom")

		if _, _, err := env.run(t, "", "analyze", srv.URL, "--metrics-file", metricsPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(metricsPath)
		if err != nil {
			t.Fatalf("expected metrics file: %v", err)
		}
		for _, want := range []string{
			"policyscan_analyses_total{",
			`source="live_scraping"`,
			`policyscan_retrieval_attempts_total{outcome="ok"} 1`,
			"policyscan_discovery_candidates_count 1",
		} {
			if !strings.Contains(string(data), want) {
				t.Errorf("expected metrics to contain %q, got:\n%s", want, data)
			}
		}
	})
}
