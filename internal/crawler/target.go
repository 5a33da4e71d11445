package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Target is a normalized site address.
type Target struct {
	// Origin is scheme and host without "www.", e.g. "https://example.com".
	// Conventional policy paths are probed against it.
	Origin string

	// RootURL is scheme and host as given (lowercased, "www." kept). The page
	// at RootURL is fetched for links and the title.
	RootURL string

	// Domain is the host without "www." and is the key into the known-URL table.
	Domain string
}

// NormalizeTarget turns a bare or scheme-prefixed domain into a Target.
// A missing scheme defaults to https; paths, queries, trailing slashes and
// letter case are ignored.
func NormalizeTarget(domain string) (Target, error) {
	raw := strings.TrimSpace(domain)
	if raw == "" {
		return Target{}, fmt.Errorf("%w: empty", ErrInvalidDomain)
	}

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if strings.Contains(raw, "://") {
			return Target{}, fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidDomain, raw)
		}
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidDomain, err) //nolint:errorlint // ErrInvalidDomain is the sentinel
	}

	host := strings.ToLower(u.Hostname())
	if host == "" || strings.ContainsAny(host, " \t") {
		return Target{}, fmt.Errorf("%w: no host in %q", ErrInvalidDomain, domain)
	}
	host = strings.TrimSuffix(host, ".")

	scheme := strings.ToLower(u.Scheme)
	port := ""
	if p := u.Port(); p != "" {
		port = ":" + p
	}
	bare := strings.TrimPrefix(host, "www.")

	return Target{
		Origin:  scheme + "://" + bare + port,
		RootURL: scheme + "://" + host + port,
		Domain:  bare,
	}, nil
}

// titleSeparators are checked in order; the first one present splits the title.
var titleSeparators = []string{" | ", " - ", " – ", " — "}

// commonTLDs are stripped from a domain to get a name. Longer suffixes come first.
var commonTLDs = []string{".co.uk", ".com", ".org", ".net", ".no", ".io", ".co", ".de", ".uk"}

// CompanyName derives a display name. A non-empty page title wins: the text
// before its first separator, or the whole title. Otherwise the first label
// of the domain, title-cased.
func CompanyName(domain, title string) string {
	if t := collapseSpace(title); t != "" {
		for _, sep := range titleSeparators {
			if before, _, found := strings.Cut(t, sep); found {
				if name := strings.TrimSpace(before); name != "" {
					return name
				}
				break
			}
		}
		return t
	}
	return domainName(domain)
}

func domainName(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexByte(d, ':'); i >= 0 {
		d = d[:i]
	}
	for _, tld := range commonTLDs {
		if strings.HasSuffix(d, tld) && len(d) > len(tld) {
			d = strings.TrimSuffix(d, tld)
			break
		}
	}
	label, _, _ := strings.Cut(d, ".")
	if label == "" {
		return "Unknown Company"
	}
	return cases.Title(language.English).String(label)
}
