// Package log builds slog loggers that never print credentials.
//
// # Security Features
//
// SecureHandler wraps any slog.Handler and masks attribute values:
//   - Keys that name a credential: authorization, cookie, api_key,
//     password, secret, token and their variants
//   - Values that look like one: bearer tokens, JWTs, sk- style API keys,
//     PEM private key headers and long opaque tokens
//
// The model backend's API key therefore stays out of logs even in verbose
// mode, when request details are logged at debug level.
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Info("calling model", "endpoint", url, "api_key", key) // api_key=***REDACTED***
//
//	// JSON lines for log collectors
//	logger = log.New(os.Stderr, log.Options{JSON: true})
//	slog.SetDefault(logger)
//
// Without Verbose only warnings and errors are written, so normal CLI runs
// show nothing but the report.
//
// # Integration with tornago
//
// The CLI sets the secure logger as slog.Default before starting the
// embedded Tor daemon, so anything tornago logs through slog is masked too.
package log
