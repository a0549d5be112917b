package provider

import (
	"fmt"
	"net/url"
	"strings"
)

// HTTPHeader is one header attached to outbound calls for an endpoint.
type HTTPHeader struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Endpoint is a fully resolved callable JSON-RPC endpoint: either supplied
// directly by the caller (custom sources) or derived from a registry
// provider plus its configured credential.
type Endpoint struct {
	URL     string       `json:"url" yaml:"url"`
	Headers []HTTPHeader `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Validate checks a caller-supplied endpoint: the URL must parse as absolute
// http(s) and every header must have a non-empty name and a printable value.
func (e Endpoint) Validate() error {
	u, err := url.Parse(e.URL)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL %q: %v", e.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint URL %q: scheme must be http or https", e.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint URL %q: missing host", e.URL)
	}

	for _, h := range e.Headers {
		if h.Name == "" {
			return fmt.Errorf("endpoint %q: header with empty name", e.URL)
		}
		if !isPrintable(h.Value) {
			return fmt.Errorf("endpoint %q: header %q has a non-printable value", e.URL, h.Name)
		}
	}

	return nil
}

// Hostname returns the endpoint's hostname for metrics labels.
func (e Endpoint) Hostname() (string, bool) {
	return HostnameFromURL(e.URL)
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			return false
		}
	}
	return true
}

// HostnameFromURL extracts the hostname from a URL. Returns false when the
// URL does not parse or still contains an unsubstituted credential
// placeholder (curly braces).
func HostnameFromURL(rawURL string) (string, bool) {
	if strings.ContainsAny(rawURL, "{}") {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	return u.Hostname(), true
}
