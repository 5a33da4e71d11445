// Package httpclient builds the *http.Client used for fetching policy pages
// and talking to the model endpoint.
//
// Every outgoing request carries the configured User-Agent and extra headers,
// including redirects. Connections can be routed through any proxy dialer
// (the tor package passes its SOCKS5 dialer here).
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// DefaultTimeout bounds a whole request including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent looks like a desktop browser; many sites serve a
	// reduced page or a bot wall to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// maxRedirects stops redirect loops.
	maxRedirects = 10
)

// Option configures a client built by New.
type Option func(*options)

type options struct {
	timeout   time.Duration
	userAgent string
	headers   map[string]string
	dialer    proxy.Dialer
}

// WithTimeout sets the overall request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithDialer routes all connections through d.
func WithDialer(d proxy.Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// New returns an HTTP client with a cookie jar, a redirect limit and header
// injection.
func New(opts ...Option) *http.Client {
	o := &options{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(o)
	}

	base := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	base.MaxIdleConns = 20
	base.MaxIdleConnsPerHost = 4
	base.IdleConnTimeout = 30 * time.Second
	if o.dialer != nil {
		base.Proxy = nil
		base.DialContext = dialContext(o.dialer)
	}

	headers := make(map[string]string, len(o.headers)+1)
	for k, v := range o.headers {
		headers[k] = v
	}
	headers["User-Agent"] = o.userAgent

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: &headerInjectingTransport{base: base, headers: headers},
		Timeout:   o.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// dialContext adapts a proxy.Dialer, using its context-aware variant when
// the dialer has one.
func dialContext(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		ch := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			ch <- dialResult{conn, err}
		}()
		select {
		case r := <-ch:
			return r.conn, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// headerInjectingTransport sets fixed headers on every request, unless the
// request already carries its own value.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		if clone.Header.Get(key) == "" {
			clone.Header.Set(key, value)
		}
	}
	return t.base.RoundTrip(clone)
}
