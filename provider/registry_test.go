package provider

import (
	"strings"
	"testing"
)

func TestRegistry_URLPatterns(t *testing.T) {
	assertNotURLPattern := func(t *testing.T, url string, id ID) {
		t.Helper()
		if strings.Contains(url, APIKeyReplaceString) {
			t.Errorf("unexpected API key placeholder in URL for provider %q", id)
		}
	}
	assertURLPattern := func(t *testing.T, url string, id ID) {
		t.Helper()
		if !strings.Contains(url, APIKeyReplaceString) {
			t.Errorf("missing API key placeholder in URL pattern for provider %q", id)
		}
	}

	for _, p := range Supported() {
		switch {
		case p.Access.Authenticated != nil:
			access := p.Access.Authenticated
			if access.Auth.BearerToken != nil {
				assertNotURLPattern(t, access.Auth.BearerToken.URL, p.ID)
			}
			if access.Auth.URLParameter != nil {
				assertURLPattern(t, access.Auth.URLParameter.URLPattern, p.ID)
			}
			if access.PublicURL != "" {
				assertNotURLPattern(t, access.PublicURL, p.ID)
			}
		case p.Access.Unauthenticated != nil:
			assertNotURLPattern(t, p.Access.Unauthenticated.PublicURL, p.ID)
		default:
			t.Errorf("provider %q has no access method", p.ID)
		}
	}
}

func TestRegistry_NoDuplicateIDs(t *testing.T) {
	seen := make(map[ID]struct{})
	for _, p := range Supported() {
		if _, ok := seen[p.ID]; ok {
			t.Errorf("duplicate provider ID %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
}

func TestRegistry_Clusters(t *testing.T) {
	tests := []struct {
		name    string
		cluster Cluster
		wantIDs []ID
	}{
		{
			name:    "mainnet providers",
			cluster: ClusterMainnet,
			wantIDs: []ID{"alchemy-mainnet", "ankr-mainnet", "publicnode-mainnet"},
		},
		{
			name:    "devnet providers",
			cluster: ClusterDevnet,
			wantIDs: []ID{"alchemy-devnet", "ankr-devnet"},
		},
		{
			name:    "testnet has no providers",
			cluster: ClusterTestnet,
			wantIDs: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := ForCluster(test.cluster)
			if len(got) != len(test.wantIDs) {
				t.Fatalf("ForCluster(%q) returned %d providers, want %d", test.cluster, len(got), len(test.wantIDs))
			}
			for i, p := range got {
				if p.ID != test.wantIDs[i] {
					t.Errorf("ForCluster(%q)[%d] = %q, want %q", test.cluster, i, p.ID, test.wantIDs[i])
				}
			}
		})
	}
}

func TestProvider_Hostname(t *testing.T) {
	tests := []struct {
		name     string
		id       ID
		wantHost string
		wantOK   bool
	}{
		{name: "bearer token provider", id: "alchemy-mainnet", wantHost: "solana-mainnet.g.alchemy.com", wantOK: true},
		{name: "unauthenticated provider", id: "publicnode-mainnet", wantHost: "solana-rpc.publicnode.com", wantOK: true},
		{name: "url pattern provider is not a valid hostname source", id: "ankr-mainnet", wantOK: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, ok := Get(test.id)
			if !ok {
				t.Fatalf("Get(%q) not found", test.id)
			}
			host, ok := p.Hostname()
			if ok != test.wantOK {
				t.Fatalf("Hostname() ok = %v, want %v", ok, test.wantOK)
			}
			if ok && host != test.wantHost {
				t.Errorf("Hostname() = %q, want %q", host, test.wantHost)
			}
		})
	}
}
