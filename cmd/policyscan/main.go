// Package main provides the entry point for the policyscan CLI.
//
// policyscan finds a website's privacy policy, scores it with keyword
// heuristics and explains the risks in plain language. An optional
// OpenAI-compatible model can write the explanations instead.
//
// Usage:
//
//	policyscan analyze example.com
//	policyscan platform tinder
//	policyscan text --subject Acme policy.txt
//	policyscan chat --subject Tinder "can I delete my data?"
//
// See --help for all available options.
package main

func main() {
	Execute()
}
