package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		c := New()
		if c.Timeout != DefaultTimeout {
			t.Errorf("expected timeout %v, got %v", DefaultTimeout, c.Timeout)
		}
		if c.Jar == nil {
			t.Error("expected cookie jar")
		}
		if c.CheckRedirect == nil {
			t.Error("expected redirect policy")
		}
	})

	t.Run("custom timeout", func(t *testing.T) {
		t.Parallel()

		c := New(WithTimeout(5 * time.Second))
		if c.Timeout != 5*time.Second {
			t.Errorf("expected 5s, got %v", c.Timeout)
		}
	})
}

func TestHeaderInjection(t *testing.T) {
	t.Parallel()

	t.Run("sets user agent and extra headers", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotCustom string
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotCustom = r.Header.Get("X-Custom")
		}))
		defer srv.Close()

		c := New(WithUserAgent("policyscan-test"), WithHeaders(map[string]string{"X-Custom": "value"}))
		resp, err := c.Get(srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if gotUA != "policyscan-test" {
			t.Errorf("expected user agent 'policyscan-test', got %q", gotUA)
		}
		if gotCustom != "value" {
			t.Errorf("expected X-Custom 'value', got %q", gotCustom)
		}
	})

	t.Run("request header wins", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
		}))
		defer srv.Close()

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
		if err != nil {
			t.Fatalf("failed to create request: %v", err)
		}
		req.Header.Set("User-Agent", "explicit")

		resp, err := New().Do(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if gotUA != "explicit" {
			t.Errorf("expected 'explicit', got %q", gotUA)
		}
	})

	t.Run("empty user agent keeps default", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
		}))
		defer srv.Close()

		resp, err := New(WithUserAgent("")).Get(srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if gotUA != DefaultUserAgent {
			t.Errorf("expected default user agent, got %q", gotUA)
		}
	})
}

func TestRedirectLimit(t *testing.T) {
	t.Parallel()

	var hits int
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Redirect(w, r, srv.URL+"/r"+strconv.Itoa(hits), http.StatusFound)
	}))
	defer srv.Close()

	resp, err := New().Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Errorf("expected last redirect response, got %d", resp.StatusCode)
	}
	if hits != maxRedirects+1 {
		t.Errorf("expected %d requests, got %d", maxRedirects+1, hits)
	}
}

// recordingDialer counts dials and connects directly.
type recordingDialer struct {
	dials int
}

func (d *recordingDialer) Dial(network, addr string) (net.Conn, error) {
	d.dials++
	return net.Dial(network, addr) //nolint:noctx // test code
}

func TestWithDialer(t *testing.T) {
	t.Parallel()

	t.Run("routes through dialer", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		d := &recordingDialer{}
		resp, err := New(WithDialer(d)).Get(srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if d.dials != 1 {
			t.Errorf("expected 1 dial, got %d", d.dials)
		}
	})

	t.Run("dial respects context", func(t *testing.T) {
		t.Parallel()

		blocking := dialerFunc(func(_, _ string) (net.Conn, error) {
			time.Sleep(time.Second)
			return nil, errors.New("too late")
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := dialContext(blocking)(ctx, "tcp", "127.0.0.1:1")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

type dialerFunc func(network, addr string) (net.Conn, error)

func (f dialerFunc) Dial(network, addr string) (net.Conn, error) {
	return f(network, addr)
}
