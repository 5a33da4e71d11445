// Package crawler finds and downloads a website's privacy policy.
//
// PolicyFetcher.Locate works in two phases. Discovery collects candidate
// URLs from a table of known policy locations, from links on the site's
// root page, from HEAD probes of conventional paths and from footer links,
// then ranks them so that explicit "privacy-policy" URLs come first.
// Retrieval fetches up to three candidates in rank order, strips page
// chrome and keeps the first text that looks like a policy.
//
// Locate only fails on malformed input. Every network problem ends up as a
// model.PolicyDocument with Retrieved set to false and a FailureReason, so
// callers can fall back to a generic analysis.
//
// # Usage
//
//	fetcher := crawler.NewPolicyFetcher(httpClient, crawler.WithLogger(logger))
//	doc, err := fetcher.Locate(ctx, "example.com")
package crawler
