package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgrove/quorum/config"
	"github.com/buildwithgrove/quorum/consensus"
	"github.com/buildwithgrove/quorum/cycles"
	"github.com/buildwithgrove/quorum/gateway"
	"github.com/buildwithgrove/quorum/keystore"
	"github.com/buildwithgrove/quorum/provider"
)

const testAdminToken = "test-admin-token"

type fakeQuorum struct {
	gotSpec gateway.CallSpec
	verdict consensus.Verdict
	cost    cycles.Cycles
	err     error
}

func (f *fakeQuorum) Execute(ctx context.Context, spec gateway.CallSpec) (consensus.Verdict, error) {
	f.gotSpec = spec
	if f.err != nil {
		return consensus.Verdict{}, f.err
	}
	return f.verdict, nil
}

func (f *fakeQuorum) Quote(spec gateway.CallSpec) (cycles.Cycles, error) {
	f.gotSpec = spec
	if f.err != nil {
		return 0, f.err
	}
	return f.cost, nil
}

type fakeComponent struct {
	name  string
	ready bool
}

func (f fakeComponent) Name() string  { return f.name }
func (f fakeComponent) IsReady() bool { return f.ready }

func newTestRouter(t *testing.T, quorum *fakeQuorum, components ...HealthCheckComponent) (keystore.Store, *httptest.Server) {
	keys := keystore.NewMemoryStore()
	r := NewRouter(RouterParams{
		Quorum:           quorum,
		Keys:             keys,
		HealthComponents: components,
		Config: config.RouterConfig{
			MaxRequestBodyBytes: 1 << 20,
			RequestTimeout:      5 * time.Second,
		},
		AdminTokens: []string{testAdminToken},
		Logger:      polyzero.NewLogger(),
	})
	ts := httptest.NewServer(r.mux)
	t.Cleanup(ts.Close)

	return keys, ts
}

// doJSON sends a request with an optional JSON body and bearer token and
// returns the status code and response body.
func doJSON(t *testing.T, method, url, token, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, responseBody
}

func Test_healthCheckHandler(t *testing.T) {
	tests := []struct {
		name           string
		components     []HealthCheckComponent
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "should return 200 when all components are ready",
			components: []HealthCheckComponent{
				fakeComponent{name: "keystore", ready: true},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok","imageTag":"development","readyStates":{"keystore":true}}`,
		},
		{
			name: "should return 503 when a component is initializing",
			components: []HealthCheckComponent{
				fakeComponent{name: "keystore", ready: true},
				fakeComponent{name: "stats", ready: false},
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"initializing","imageTag":"development","readyStates":{"keystore":true,"stats":false}}`,
		},
		{
			name:           "should return 200 with no components registered",
			components:     nil,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok","imageTag":"development"}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			_, ts := newTestRouter(t, &fakeQuorum{}, test.components...)

			status, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/healthz", ts.URL), "", "")

			c.Equal(test.expectedStatus, status)
			c.JSONEq(test.expectedBody, string(body))
		})
	}
}

func Test_handleCall(t *testing.T) {
	okVerdict := consensus.NewConsistent(consensus.OkOutcome(json.RawMessage(`1000`)))

	tests := []struct {
		name           string
		payload        string
		quorum         *fakeQuorum
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "should return the verdict for a completed call",
			payload:        `{"sources":{"providers":["publicnode-mainnet"]},"params":["9aE476sH92Vz7DMPyq5WLcKhmjKcsRnG3Q3CDBRn1rpf"]}`,
			quorum:         &fakeQuorum{verdict: okVerdict},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"consistent":{"value":1000}}`,
		},
		{
			name:           "should return 400 for a config rejection",
			payload:        `{"sources":{"providers":["publicnode-mainnet"]}}`,
			quorum:         &fakeQuorum{err: fmt.Errorf("%w: unknown method", gateway.ErrInvalidCallConfig)},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":{"code":400,"message":"invalid call config: unknown method"}}`,
		},
		{
			name:           "should return 402 when too few cycles are attached",
			payload:        `{"sources":{"providers":["publicnode-mainnet"]},"cycles":5}`,
			quorum:         &fakeQuorum{err: &cycles.TooFewCyclesError{Expected: 100, Received: 5}},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `{"error":{"code":402,"message":"too few cycles: expected 100, received 5"}}`,
		},
		{
			name:           "should return 500 for any other failure",
			payload:        `{"sources":{"providers":["publicnode-mainnet"]}}`,
			quorum:         &fakeQuorum{err: errors.New("stats store unavailable")},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":{"code":500,"message":"stats store unavailable"}}`,
		},
		{
			name:           "should return 400 for a malformed body",
			payload:        `{"sources":`,
			quorum:         &fakeQuorum{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			_, ts := newTestRouter(t, test.quorum)

			status, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/getBalance", ts.URL), "", test.payload)

			c.Equal(test.expectedStatus, status)
			if test.expectedBody != "" {
				c.JSONEq(test.expectedBody, string(body))
			}
		})
	}
}

func Test_handleCall_buildsSpecFromRequest(t *testing.T) {
	c := require.New(t)

	quorum := &fakeQuorum{verdict: consensus.NewConsistent(consensus.OkOutcome(json.RawMessage(`"ok"`)))}
	_, ts := newTestRouter(t, quorum)

	payload := `{
		"sources": {"providers": ["alchemy-mainnet", "ankr-mainnet"]},
		"params": ["9aE476sH92Vz7DMPyq5WLcKhmjKcsRnG3Q3CDBRn1rpf", {"commitment": "confirmed"}],
		"config": {"responseSizeEstimate": 512, "consensus": {"threshold": {"min": 2}}},
		"cycles": 90000000,
		"id": 42
	}`
	status, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/getBalance", ts.URL), "", payload)
	c.Equal(http.StatusOK, status)

	spec := quorum.gotSpec
	c.Equal([]provider.ID{"alchemy-mainnet", "ankr-mainnet"}, spec.Sources.Providers)
	c.Equal("getBalance", string(spec.Method))
	c.JSONEq(`["9aE476sH92Vz7DMPyq5WLcKhmjKcsRnG3Q3CDBRn1rpf", {"commitment": "confirmed"}]`, string(spec.Params))
	c.False(spec.Raw)
	c.Equal(cycles.Cycles(90000000), spec.AttachedCycles)
	c.Equal(42, spec.ID.Int())
	c.NotNil(spec.Config.ResponseSizeEstimate)
	c.Equal(uint64(512), *spec.Config.ResponseSizeEstimate)
	c.NotNil(spec.Config.Consensus)
	c.Equal(uint8(2), spec.Config.Consensus.Threshold.Min)
}

func Test_handleCallCost(t *testing.T) {
	c := require.New(t)

	quorum := &fakeQuorum{cost: 171360000}
	_, ts := newTestRouter(t, quorum)

	payload := `{"sources":{"default":"mainnet"}}`
	status, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/getSlot/cost", ts.URL), "", payload)

	c.Equal(http.StatusOK, status)
	c.JSONEq(`{"cycles":171360000}`, string(body))
	c.Equal("getSlot", string(quorum.gotSpec.Method))
	c.NotNil(quorum.gotSpec.Sources.Default)
}

func Test_handleRawCall(t *testing.T) {
	tests := []struct {
		name           string
		payload        string
		expectedStatus int
		expectedMethod string
		expectedParams string
		expectedID     int
	}{
		{
			name: "should forward the envelope verbatim",
			payload: `{
				"sources": {"custom": [{"url": "https://rpc.example.com"}]},
				"request": {"jsonrpc": "2.0", "id": 7, "method": "getVersion", "params": []}
			}`,
			expectedStatus: http.StatusOK,
			expectedMethod: "getVersion",
			expectedParams: `[]`,
			expectedID:     7,
		},
		{
			name: "should reject an envelope without a jsonrpc version",
			payload: `{
				"sources": {"custom": [{"url": "https://rpc.example.com"}]},
				"request": {"id": 7, "method": "getVersion"}
			}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "should reject a request that is not an envelope",
			payload: `{
				"sources": {"custom": [{"url": "https://rpc.example.com"}]},
				"request": "getVersion"
			}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			quorum := &fakeQuorum{verdict: consensus.NewConsistent(consensus.OkOutcome(json.RawMessage(`{"solana-core":"2.0.15"}`)))}
			_, ts := newTestRouter(t, quorum)

			status, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/request", ts.URL), "", test.payload)

			c.Equal(test.expectedStatus, status)
			if test.expectedStatus != http.StatusOK {
				return
			}
			c.True(quorum.gotSpec.Raw)
			c.Equal(test.expectedMethod, string(quorum.gotSpec.Method))
			c.Equal(test.expectedParams, string(quorum.gotSpec.Params))
			c.Equal(test.expectedID, quorum.gotSpec.ID.Int())
		})
	}
}

func Test_handleRawCallCost(t *testing.T) {
	c := require.New(t)

	quorum := &fakeQuorum{cost: 98000000}
	_, ts := newTestRouter(t, quorum)

	payload := `{
		"sources": {"providers": ["publicnode-mainnet"]},
		"request": {"jsonrpc": "2.0", "id": 1, "method": "getHealth"}
	}`
	status, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/request/cost", ts.URL), "", payload)

	c.Equal(http.StatusOK, status)
	c.JSONEq(`{"cycles":98000000}`, string(body))
	c.True(quorum.gotSpec.Raw)
}

func Test_handleProviders(t *testing.T) {
	c := require.New(t)

	_, ts := newTestRouter(t, &fakeQuorum{})

	status, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/v1/providers", ts.URL), "", "")
	c.Equal(http.StatusOK, status)

	var got []provider.Provider
	c.NoError(json.Unmarshal(body, &got))
	c.Equal(provider.Supported(), got)
}

func Test_handleUpdateKeys(t *testing.T) {
	tests := []struct {
		name           string
		token          string
		payload        string
		expectedStatus int
		expectStored   map[provider.ID]string
	}{
		{
			name:           "should store keys for registry providers",
			token:          testAdminToken,
			payload:        `{"alchemy-mainnet": "NEWKEY123", "ankr-mainnet": "OTHERKEY"}`,
			expectedStatus: http.StatusNoContent,
			expectStored: map[provider.ID]string{
				"alchemy-mainnet": "NEWKEY123",
				"ankr-mainnet":    "OTHERKEY",
			},
		},
		{
			name:           "should reject an update without a bearer token",
			token:          "",
			payload:        `{"alchemy-mainnet": "NEWKEY123"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "should reject an update with an unknown token",
			token:          "not-the-admin",
			payload:        `{"alchemy-mainnet": "NEWKEY123"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "should reject an unknown provider",
			token:          testAdminToken,
			payload:        `{"does-not-exist": "NEWKEY123"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "should reject a provider that takes no key",
			token:          testAdminToken,
			payload:        `{"publicnode-mainnet": "NEWKEY123"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "should reject a key with invalid characters",
			token:          testAdminToken,
			payload:        `{"alchemy-mainnet": "has spaces in it"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			keys, ts := newTestRouter(t, &fakeQuorum{})

			status, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/v1/keys", ts.URL), test.token, test.payload)
			c.Equal(test.expectedStatus, status)

			stored, err := keys.List(context.Background())
			c.NoError(err)
			if test.expectStored == nil {
				c.Empty(stored)
				return
			}
			c.Len(stored, len(test.expectStored))
			for id, want := range test.expectStored {
				key, ok, err := keys.Get(context.Background(), id)
				c.NoError(err)
				c.True(ok)
				c.Equal(want, key.Read())
			}
		})
	}
}

func Test_handleUpdateKeys_deletesOnNull(t *testing.T) {
	c := require.New(t)

	keys, ts := newTestRouter(t, &fakeQuorum{})

	status, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/v1/keys", ts.URL), testAdminToken, `{"alchemy-mainnet": "NEWKEY123"}`)
	c.Equal(http.StatusNoContent, status)

	status, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/v1/keys", ts.URL), testAdminToken, `{"alchemy-mainnet": null}`)
	c.Equal(http.StatusNoContent, status)

	_, ok, err := keys.Get(context.Background(), "alchemy-mainnet")
	c.NoError(err)
	c.False(ok)
}

func Test_handleVerifyKey(t *testing.T) {
	tests := []struct {
		name           string
		payload        string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "should confirm a matching key",
			payload:        `{"provider": "ankr-mainnet", "key": "SECRETKEY"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"valid":true}`,
		},
		{
			name:           "should deny a mismatched key",
			payload:        `{"provider": "ankr-mainnet", "key": "WRONGKEY"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"valid":false}`,
		},
		{
			name:           "should confirm absence for a provider without a key",
			payload:        `{"provider": "alchemy-mainnet"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"valid":true}`,
		},
		{
			name:           "should reject an unknown provider",
			payload:        `{"provider": "does-not-exist", "key": "SECRETKEY"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)

			keys, ts := newTestRouter(t, &fakeQuorum{})
			seeded, err := provider.NewAPIKey("SECRETKEY")
			c.NoError(err)
			c.NoError(keys.Put(context.Background(), "ankr-mainnet", &seeded))

			status, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/keys/verify", ts.URL), testAdminToken, test.payload)

			c.Equal(test.expectedStatus, status)
			if test.expectedBody != "" {
				c.JSONEq(test.expectedBody, string(body))
			}
		})
	}
}

func Test_corsPreflight(t *testing.T) {
	c := require.New(t)

	_, ts := newTestRouter(t, &fakeQuorum{})

	req, err := http.NewRequest(http.MethodOptions, fmt.Sprintf("%s/v1/getBalance", ts.URL), nil)
	c.NoError(err)
	req.Header.Set("Origin", "https://app.example.com")

	resp, err := http.DefaultClient.Do(req)
	c.NoError(err)
	defer resp.Body.Close()

	c.Equal(http.StatusOK, resp.StatusCode)
	c.Equal("https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	c.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func Test_decodeBody_enforcesSizeCap(t *testing.T) {
	c := require.New(t)

	r := NewRouter(RouterParams{
		Quorum: &fakeQuorum{},
		Keys:   keystore.NewMemoryStore(),
		Config: config.RouterConfig{
			MaxRequestBodyBytes: 16,
			RequestTimeout:      5 * time.Second,
		},
		Logger: polyzero.NewLogger(),
	})
	ts := httptest.NewServer(r.mux)
	t.Cleanup(ts.Close)

	payload := `{"sources":{"providers":["publicnode-mainnet"]}}`
	status, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/getBalance", ts.URL), "", payload)
	c.Equal(http.StatusRequestEntityTooLarge, status)
}
