// Package tor lets policyscan fetch privacy policies through the Tor network.
//
// Client wraps a SOCKS5 dialer for an existing Tor daemon and produces HTTP
// clients that send every connection through it. EmbeddedTor starts a
// private daemon with tornago when no system Tor is available.
//
// Both are created by the CLI and passed down as a plain *http.Client; the
// crawler does not know whether it is talking through Tor.
package tor
