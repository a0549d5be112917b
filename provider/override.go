package provider

import (
	"fmt"
	"regexp"
)

// Override rewrites every resolved endpoint URL by regex substitution.
// It exists for test deployments that must redirect production provider
// URLs to a local stand-in. Applying an override drops resolved headers:
// credentials must never leak to the substituted host.
type Override struct {
	pattern     *regexp.Regexp
	replacement string
}

// NewOverride compiles the substitution. The pattern is a regular expression
// matched against the full resolved URL; the replacement may reference
// capture groups ($1, ${name}).
func NewOverride(pattern, replacement string) (*Override, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid override pattern %q: %v", pattern, err)
	}
	return &Override{pattern: re, replacement: replacement}, nil
}

// Apply rewrites the endpoint URL. A nil override is the identity.
func (o *Override) Apply(e Endpoint) Endpoint {
	if o == nil {
		return e
	}
	return Endpoint{
		URL: o.pattern.ReplaceAllString(e.URL, o.replacement),
		// Headers deliberately not carried over.
	}
}
