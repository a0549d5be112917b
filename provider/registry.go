package provider

// Registry of supported providers. The table is fixed at build time; only
// the API keys attached to its entries change at runtime (via the key store).
var supportedProviders = []Provider{
	{
		ID:      "alchemy-mainnet",
		Cluster: ClusterMainnet,
		Access: Access{
			Authenticated: &AuthenticatedAccess{
				Auth: Auth{
					BearerToken: &BearerTokenAuth{
						URL: "https://solana-mainnet.g.alchemy.com/v2",
					},
				},
				PublicURL: "https://solana-mainnet.g.alchemy.com/v2/demo",
			},
		},
	},
	{
		ID:      "alchemy-devnet",
		Cluster: ClusterDevnet,
		Access: Access{
			Authenticated: &AuthenticatedAccess{
				Auth: Auth{
					BearerToken: &BearerTokenAuth{
						URL: "https://solana-devnet.g.alchemy.com/v2",
					},
				},
				PublicURL: "https://solana-devnet.g.alchemy.com/v2/demo",
			},
		},
	},
	{
		ID:      "ankr-mainnet",
		Cluster: ClusterMainnet,
		Access: Access{
			Authenticated: &AuthenticatedAccess{
				Auth: Auth{
					URLParameter: &URLParameterAuth{
						URLPattern: "https://rpc.ankr.com/solana/{API_KEY}",
					},
				},
			},
		},
	},
	{
		ID:      "ankr-devnet",
		Cluster: ClusterDevnet,
		Access: Access{
			Authenticated: &AuthenticatedAccess{
				Auth: Auth{
					URLParameter: &URLParameterAuth{
						URLPattern: "https://rpc.ankr.com/solana_devnet/{API_KEY}",
					},
				},
				PublicURL: "https://rpc.ankr.com/solana_devnet/",
			},
		},
	},
	{
		ID:      "publicnode-mainnet",
		Cluster: ClusterMainnet,
		Access: Access{
			Unauthenticated: &UnauthenticatedAccess{
				PublicURL: "https://solana-rpc.publicnode.com",
			},
		},
	},
}

var providerMap = func() map[ID]Provider {
	m := make(map[ID]Provider, len(supportedProviders))
	for _, p := range supportedProviders {
		m[p.ID] = p
	}
	return m
}()

// Supported returns a copy of the full provider table, in registry order.
func Supported() []Provider {
	out := make([]Provider, len(supportedProviders))
	copy(out, supportedProviders)
	return out
}

// Get looks up a provider by its stable identifier.
func Get(id ID) (Provider, bool) {
	p, ok := providerMap[id]
	return p, ok
}

// ForCluster returns the registry providers serving the given cluster,
// in registry order.
func ForCluster(cluster Cluster) []Provider {
	var out []Provider
	for _, p := range supportedProviders {
		if p.Cluster == cluster {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the first registry provider matching the predicate.
func Find(f func(Provider) bool) (Provider, bool) {
	for _, p := range supportedProviders {
		if f(p) {
			return p, true
		}
	}
	return Provider{}, false
}
