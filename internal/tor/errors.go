package tor

import "errors"

var (
	// ErrProxyNotTor means something answered on the proxy address but did
	// not speak SOCKS5 without authentication.
	ErrProxyNotTor = errors.New("proxy is not a Tor SOCKS5 proxy")

	// ErrProxyCannotConnect usually means Tor is not running.
	ErrProxyCannotConnect = errors.New("cannot connect to Tor proxy")

	// ErrProxyTimeout means the proxy accepted the connection but did not
	// finish the SOCKS5 handshake in time.
	ErrProxyTimeout = errors.New("timeout connecting to Tor proxy")

	// ErrInvalidProxyAddress is returned by NewClient for anything but host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrNotRunning is returned by EmbeddedTor.NewClient before Start or after Stop.
	ErrNotRunning = errors.New("embedded Tor daemon is not running")
)

// ProxyStatus is the outcome of Client.CheckConnection.
//
// Design decision: CheckConnection returns a status rather than an error so
// the CLI can print a short description with String, while Error gives the
// matching sentinel for errors.Is checks.
type ProxyStatus int

const (
	// ProxyStatusOK means the proxy completed a SOCKS5 no-auth handshake.
	// A refused CONNECT still counts: the probe target does not exist.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType means the listener answered with something other
	// than SOCKS5, or SOCKS5 that insists on authentication.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect means the TCP dial failed.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout means the dial or the handshake ran out of time.
	ProxyStatusTimeout
)

// String returns a short description for log and CLI output.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type (not Tor)"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error maps the status to its sentinel error. It returns nil for ProxyStatusOK.
func (s ProxyStatus) Error() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotTor
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
