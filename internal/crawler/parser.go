package crawler

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// strippedElements never contribute text: scripts, chrome and navigation.
var strippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Aside:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
}

var (
	contentClassRegex   = regexp.MustCompile(`(?i)content|policy|privacy|main`)
	containerClassRegex = regexp.MustCompile(`(?i)container|wrapper`)
)

// Parser extracts what discovery needs from a root page in a single pass.
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// Link is an anchor with its resolved URL and visible text.
type Link struct {
	URL  string
	Text string
}

// ParseResult contains all information extracted from an HTML page.
type ParseResult struct {
	// Title is the page title from <title> tag.
	Title string

	// Links are all anchors in document order.
	Links []Link

	// FooterLinks are the anchors inside the footer region, if one exists.
	FooterLinks []Link
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and extracts the title and links. Policy text
// is only needed for candidate pages; see ExtractPolicyText.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Links:       make([]Link, 0),
		FooterLinks: make([]Link, 0),
	}

	footer := findFooter(doc)

	var walk func(n *html.Node, inFooter bool)
	walk = func(n *html.Node, inFooter bool) {
		if n.Type == html.ElementNode {
			if n == footer {
				inFooter = true
			}
			switch n.DataAtom {
			case atom.Title:
				if result.Title == "" {
					result.Title = collapseSpace(textOf(n, false))
				}
			case atom.A:
				if link, ok := p.link(n); ok {
					result.Links = append(result.Links, link)
					if inFooter {
						result.FooterLinks = append(result.FooterLinks, link)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inFooter)
		}
	}
	walk(doc, false)

	return result, nil
}

// ExtractPolicyText returns the cleaned main-region text of an HTML page.
func ExtractPolicyText(content io.Reader) (string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return "", err
	}
	return collapseSpace(textOf(mainRegion(doc), true)), nil
}

func (p *Parser) link(n *html.Node) (Link, bool) {
	href := getAttr(n, "href")
	if href == "" {
		return Link{}, false
	}
	resolved := p.resolveURL(href)
	if resolved == "" {
		return Link{}, false
	}
	return Link{URL: resolved, Text: collapseSpace(textOf(n, false))}, true
}

// resolveURL resolves a relative URL against the base URL. Links that can
// never be a policy page resolve to "".
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.baseURL.ResolveReference(u).String()
}

// findFooter returns the first <footer>, or else the first element whose
// class or id mentions "footer".
func findFooter(doc *html.Node) *html.Node {
	if n := findFirst(doc, false, func(n *html.Node) bool {
		return n.DataAtom == atom.Footer
	}); n != nil {
		return n
	}
	return findFirst(doc, false, func(n *html.Node) bool {
		return strings.Contains(strings.ToLower(getAttr(n, "class")), "footer") ||
			strings.Contains(strings.ToLower(getAttr(n, "id")), "footer")
	})
}

// mainRegion picks the element most likely to hold the policy body:
// <main>, then <article>, then a content-like class, then a container div,
// then <body>, and finally the whole document.
func mainRegion(doc *html.Node) *html.Node {
	candidates := []func(*html.Node) bool{
		func(n *html.Node) bool { return n.DataAtom == atom.Main },
		func(n *html.Node) bool { return n.DataAtom == atom.Article },
		func(n *html.Node) bool { return contentClassRegex.MatchString(getAttr(n, "class")) },
		func(n *html.Node) bool {
			return n.DataAtom == atom.Div && containerClassRegex.MatchString(getAttr(n, "class"))
		},
		func(n *html.Node) bool { return n.DataAtom == atom.Body },
	}
	for _, match := range candidates {
		if n := findFirst(doc, true, match); n != nil {
			return n
		}
	}
	return doc
}

// findFirst does a depth-first search for the first element matching fn.
// With skipStripped, subtrees of stripped elements are not searched.
func findFirst(n *html.Node, skipStripped bool, fn func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode {
		if skipStripped && strippedElements[n.DataAtom] {
			return nil
		}
		if fn(n) {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, skipStripped, fn); found != nil {
			return found
		}
	}
	return nil
}

// textOf concatenates the text nodes below n, separated by spaces.
func textOf(n *html.Node, skipStripped bool) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if skipStripped && strippedElements[n.DataAtom] {
				return
			}
			// <head> only carries metadata; its title is read separately.
			if skipStripped && n.DataAtom == atom.Head {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
