package provider

import "errors"

// Resolution-time errors. All of them surface before any outcall is issued
// and before anything is charged.
var (
	// ErrNotEnoughProviders indicates the source spec resolved to fewer
	// usable providers than the consensus strategy requires.
	ErrNotEnoughProviders = errors.New("not enough providers")

	// ErrUnknownProvider indicates a provider ID absent from the registry.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidCustomProvider indicates a malformed caller-supplied endpoint.
	ErrInvalidCustomProvider = errors.New("invalid custom provider")

	// ErrMissingAPIKey indicates an explicitly requested provider that
	// requires a key, with none configured and no public fallback.
	ErrMissingAPIKey = errors.New("API key required but not configured")
)

// IsConfigError reports whether err belongs to the resolution-time taxonomy.
// The router maps these to client errors; the gateway guarantees they are
// raised before pricing and dispatch.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNotEnoughProviders) ||
		errors.Is(err, ErrUnknownProvider) ||
		errors.Is(err, ErrInvalidCustomProvider) ||
		errors.Is(err, ErrMissingAPIKey)
}
