package provider

import (
	"fmt"
	"strings"
)

// KeyLookup provides read access to configured API keys at resolution time.
// Implementations must be non-blocking: resolution happens on the request
// path before pricing and must stay pure.
type KeyLookup interface {
	APIKey(id ID) (APIKey, bool)
}

// Sources selects which providers a request fans out to.
// Exactly one field must be set.
type Sources struct {
	// Default resolves to all usable registry providers for the cluster.
	Default *Cluster `json:"default,omitempty"`
	// Providers resolves each listed registry ID, keeping list order.
	Providers []ID `json:"providers,omitempty"`
	// Custom uses the supplied endpoints as-is, keeping list order.
	Custom []Endpoint `json:"custom,omitempty"`
}

func (s Sources) Validate() error {
	set := 0
	if s.Default != nil {
		set++
	}
	if s.Providers != nil {
		set++
	}
	if s.Custom != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: exactly one of default, providers, custom must be set", ErrInvalidCustomProvider)
	}
	if s.Default != nil {
		return s.Default.Validate()
	}
	return nil
}

// Source identifies where one outcome came from in a consensus breakdown:
// a registry provider ID, or the URL of a caller-supplied endpoint.
type Source struct {
	Provider ID     `json:"provider,omitempty"`
	Custom   string `json:"custom,omitempty"`
}

func (s Source) String() string {
	if s.Provider != "" {
		return string(s.Provider)
	}
	return s.Custom
}

// Resolved couples a source identity with the concrete endpoint to call.
type Resolved struct {
	Source   Source
	Endpoint Endpoint
}

// Resolver turns source specs into callable endpoints using the configured
// key store and the optional URL override.
type Resolver struct {
	keys     KeyLookup
	override *Override
}

func NewResolver(keys KeyLookup, override *Override) *Resolver {
	return &Resolver{keys: keys, override: override}
}

// Resolve maps a source spec to the full ordered candidate list.
// Subsetting to the consensus strategy's total (adaptive selection) is the
// orchestrator's job; Resolve never drops an explicitly requested provider.
func (r *Resolver) Resolve(sources Sources) ([]Resolved, error) {
	if err := sources.Validate(); err != nil {
		return nil, err
	}

	switch {
	case sources.Default != nil:
		return r.resolveDefault(*sources.Default)
	case len(sources.Providers) > 0:
		return r.resolveProviders(sources.Providers)
	case sources.Providers != nil:
		return nil, fmt.Errorf("%w: empty provider list", ErrNotEnoughProviders)
	case len(sources.Custom) > 0:
		return r.resolveCustom(sources.Custom)
	default:
		return nil, fmt.Errorf("%w: empty custom endpoint list", ErrInvalidCustomProvider)
	}
}

// resolveDefault returns the registry providers for the cluster that are
// usable right now: providers requiring a key with none configured are
// excluded rather than failing the whole request.
func (r *Resolver) resolveDefault(cluster Cluster) ([]Resolved, error) {
	var out []Resolved
	for _, p := range ForCluster(cluster) {
		if p.Access.RequiresKey() {
			if _, ok := r.keys.APIKey(p.ID); !ok {
				continue
			}
		}
		endpoint, err := r.endpointFor(p)
		if err != nil {
			// A provider that cannot produce an endpoint must not fail the
			// whole cluster; the remaining candidates still resolve.
			continue
		}
		out = append(out, Resolved{Source: Source{Provider: p.ID}, Endpoint: endpoint})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable providers for cluster %q", ErrNotEnoughProviders, cluster)
	}
	return out, nil
}

func (r *Resolver) resolveProviders(ids []ID) ([]Resolved, error) {
	out := make([]Resolved, 0, len(ids))
	for _, id := range ids {
		p, ok := Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
		}
		endpoint, err := r.endpointFor(p)
		if err != nil {
			return nil, err
		}
		out = append(out, Resolved{Source: Source{Provider: id}, Endpoint: endpoint})
	}
	return out, nil
}

func (r *Resolver) resolveCustom(endpoints []Endpoint) ([]Resolved, error) {
	out := make([]Resolved, 0, len(endpoints))
	for _, e := range endpoints {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCustomProvider, err)
		}
		out = append(out, Resolved{
			Source:   Source{Custom: e.URL},
			Endpoint: r.override.Apply(e),
		})
	}
	return out, nil
}

// endpointFor derives the callable endpoint for a registry provider:
//   - bearer-token access sends the key in an Authorization header;
//   - URL-parameter access substitutes the key into the URL pattern;
//   - without a configured key, the public URL is used when one exists.
func (r *Resolver) endpointFor(p Provider) (Endpoint, error) {
	endpoint, err := r.rawEndpointFor(p)
	if err != nil {
		return Endpoint{}, err
	}
	return r.override.Apply(endpoint), nil
}

func (r *Resolver) rawEndpointFor(p Provider) (Endpoint, error) {
	switch {
	case p.Access.Unauthenticated != nil:
		return Endpoint{URL: p.Access.Unauthenticated.PublicURL}, nil

	case p.Access.Authenticated != nil:
		access := p.Access.Authenticated
		key, ok := r.keys.APIKey(p.ID)
		if !ok {
			if access.PublicURL == "" {
				return Endpoint{}, fmt.Errorf("%w: provider %q", ErrMissingAPIKey, p.ID)
			}
			return Endpoint{URL: access.PublicURL}, nil
		}

		switch {
		case access.Auth.BearerToken != nil:
			return Endpoint{
				URL: access.Auth.BearerToken.URL,
				Headers: []HTTPHeader{
					{Name: "Authorization", Value: "Bearer " + key.Read()},
				},
			}, nil
		case access.Auth.URLParameter != nil:
			pattern := access.Auth.URLParameter.URLPattern
			return Endpoint{
				URL: strings.ReplaceAll(pattern, APIKeyReplaceString, key.Read()),
			}, nil
		default:
			return Endpoint{}, fmt.Errorf("%w: provider %q has no auth method", ErrUnknownProvider, p.ID)
		}

	default:
		return Endpoint{}, fmt.Errorf("%w: provider %q has no access method", ErrUnknownProvider, p.ID)
	}
}

