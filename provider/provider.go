// Package provider holds the registry of supported Solana RPC providers and
// resolves request-scoped source selections into concrete callable endpoints.
//
// Resolution is a pure function of the source spec, the configured API keys
// and the optional URL override: no I/O, no clock, no randomness. Identical
// inputs always yield identical provider lists in identical order, which is
// what lets every replica of the gateway fan out to the same endpoints.
package provider

import (
	"fmt"
)

// ID is the stable identifier of a supported provider, e.g. "alchemy-mainnet".
type ID string

// Cluster is the Solana network a provider serves.
type Cluster string

const (
	ClusterMainnet Cluster = "mainnet"
	ClusterDevnet  Cluster = "devnet"
	ClusterTestnet Cluster = "testnet"
)

// ValidClusters lists the recognized cluster values for config validation.
var ValidClusters = []Cluster{ClusterMainnet, ClusterDevnet, ClusterTestnet}

func (c Cluster) Validate() error {
	switch c {
	case ClusterMainnet, ClusterDevnet, ClusterTestnet:
		return nil
	default:
		return fmt.Errorf("unrecognized cluster %q", string(c))
	}
}

// BearerTokenAuth keeps the base URL fixed and sends the configured API key
// in an `Authorization: Bearer` header.
type BearerTokenAuth struct {
	URL string `json:"url" yaml:"url"`
}

// URLParameterAuth embeds the configured API key into the URL itself by
// substituting the {API_KEY} placeholder in the pattern.
type URLParameterAuth struct {
	URLPattern string `json:"urlPattern" yaml:"url_pattern"`
}

// Auth describes how a stored API key is attached to an authenticated
// provider's outbound calls. Exactly one field is set.
type Auth struct {
	BearerToken  *BearerTokenAuth  `json:"bearerToken,omitempty" yaml:"bearer_token,omitempty"`
	URLParameter *URLParameterAuth `json:"urlParameter,omitempty" yaml:"url_parameter,omitempty"`
}

// AuthenticatedAccess marks a provider that supports (or requires) an API key.
// PublicURL, when non-empty, is a keyless fallback endpoint.
type AuthenticatedAccess struct {
	Auth      Auth   `json:"auth" yaml:"auth"`
	PublicURL string `json:"publicUrl,omitempty" yaml:"public_url,omitempty"`
}

// UnauthenticatedAccess marks a provider reachable without any credential.
type UnauthenticatedAccess struct {
	PublicURL string `json:"publicUrl" yaml:"public_url"`
}

// Access classifies how a provider is reached. Exactly one field is set.
type Access struct {
	Authenticated   *AuthenticatedAccess   `json:"authenticated,omitempty" yaml:"authenticated,omitempty"`
	Unauthenticated *UnauthenticatedAccess `json:"unauthenticated,omitempty" yaml:"unauthenticated,omitempty"`
}

// RequiresKey reports whether the provider is unusable without an API key:
// authenticated access with no public fallback URL.
func (a Access) RequiresKey() bool {
	return a.Authenticated != nil && a.Authenticated.PublicURL == ""
}

// Provider is one registry entry: a supported upstream Solana JSON-RPC endpoint.
type Provider struct {
	ID      ID      `json:"id"`
	Cluster Cluster `json:"cluster"`
	Access  Access  `json:"access"`
}

// rawURL returns the provider's URL or URL pattern, credential placeholder
// included. Used for hostname extraction, never for dispatch.
func (p Provider) rawURL() string {
	switch {
	case p.Access.Authenticated != nil:
		auth := p.Access.Authenticated.Auth
		if auth.BearerToken != nil {
			return auth.BearerToken.URL
		}
		if auth.URLParameter != nil {
			return auth.URLParameter.URLPattern
		}
		return ""
	case p.Access.Unauthenticated != nil:
		return p.Access.Unauthenticated.PublicURL
	default:
		return ""
	}
}

// Hostname returns the hostname used as the provider's metrics label.
// Returns false when the URL cannot be parsed or still contains an
// unsubstituted credential placeholder.
func (p Provider) Hostname() (string, bool) {
	return HostnameFromURL(p.rawURL())
}
