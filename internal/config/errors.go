package config

import "errors"

// Errors returned by Config.Validate, File.Validate and the loaders.
var (
	// ErrNoTarget is returned when analyze gets no domain.
	ErrNoTarget = errors.New("no target specified: provide one or more domains")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrAttemptExceedsTimeout is returned when a single fetch may take
	// longer than the whole retrieval budget.
	ErrAttemptExceedsTimeout = errors.New("invalid attempt timeout: must not exceed --timeout")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidCacheTTL is returned for a negative cache TTL. Use 0 to
	// disable caching.
	ErrInvalidCacheTTL = errors.New("invalid cache TTL: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingTorModes is returned when both --tor and --external-tor
	// are given.
	ErrConflictingTorModes = errors.New("conflicting Tor options: --tor and --external-tor cannot be used together")

	// ErrNoModelName is returned when a model endpoint is set without a model.
	ErrNoModelName = errors.New("model endpoint configured without a model name")

	// ErrInvalidTemperature is returned for a temperature outside [0, 2].
	ErrInvalidTemperature = errors.New("invalid model temperature: must be between 0 and 2")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidPlatform is returned for a configured platform without a name.
	ErrInvalidPlatform = errors.New("invalid platform")
)
