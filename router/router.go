package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/quorum/config"
	"github.com/buildwithgrove/quorum/consensus"
	"github.com/buildwithgrove/quorum/cycles"
	"github.com/buildwithgrove/quorum/gateway"
	"github.com/buildwithgrove/quorum/keystore"
)

const methodPathParam = "method"

type (
	router struct {
		mux         *http.ServeMux
		quorum      quorum
		keys        keystore.Store
		health      *healthCheck
		config      config.RouterConfig
		adminTokens map[string]struct{}
		logger      polylog.Logger
	}
	// quorum executes consensus calls against the configured providers.
	quorum interface {
		Execute(ctx context.Context, spec gateway.CallSpec) (consensus.Verdict, error)
		Quote(spec gateway.CallSpec) (cycles.Cycles, error)
	}
)

type RouterParams struct {
	Quorum           quorum
	Keys             keystore.Store
	HealthComponents []HealthCheckComponent
	Config           config.RouterConfig
	AdminTokens      []string
	Logger           polylog.Logger
}

/* --------------------------------- Init -------------------------------- */

// NewRouter creates a new router instance
func NewRouter(params RouterParams) *router {
	adminTokens := make(map[string]struct{}, len(params.AdminTokens))
	for _, token := range params.AdminTokens {
		adminTokens[token] = struct{}{}
	}

	r := &router{
		mux:    http.NewServeMux(),
		quorum: params.Quorum,
		keys:   params.Keys,
		health: &healthCheck{
			components: params.HealthComponents,
			logger:     params.Logger.With("component", "health_check"),
		},
		config:      params.Config,
		adminTokens: adminTokens,
		logger:      params.Logger.With("package", "router"),
	}
	r.handleRoutes()
	return r
}

func (r *router) handleRoutes() {
	// GET /healthz - component readiness for load balancers
	r.mux.HandleFunc("GET /healthz", r.health.healthCheckHandler)

	// POST /v1/{method} - one consensus call per supported JSON-RPC method
	r.mux.HandleFunc(fmt.Sprintf("POST /v1/{%s}", methodPathParam), r.corsMiddleware(r.handleCall))
	// POST /v1/{method}/cost - the quote for the same call, nothing dispatched
	r.mux.HandleFunc(fmt.Sprintf("POST /v1/{%s}/cost", methodPathParam), r.corsMiddleware(r.handleCallCost))

	// POST /v1/request - raw JSON-RPC passthrough for methods outside the typed set
	r.mux.HandleFunc("POST /v1/request", r.corsMiddleware(r.handleRawCall))
	r.mux.HandleFunc("POST /v1/request/cost", r.corsMiddleware(r.handleRawCallCost))

	// GET /v1/providers - the supported provider table
	r.mux.HandleFunc("GET /v1/providers", r.corsMiddleware(r.handleProviders))

	// PUT /v1/keys - bulk API key update, admin only
	r.mux.HandleFunc("PUT /v1/keys", r.adminAuthMiddleware(r.handleUpdateKeys))
	// POST /v1/keys/verify - check a raw key against the stored one, admin only
	r.mux.HandleFunc("POST /v1/keys/verify", r.adminAuthMiddleware(r.handleVerifyKey))

	// OPTIONS /v1/ - CORS preflight for every /v1 route. Method-specific
	// patterns never see OPTIONS requests, so preflight needs its own route.
	r.mux.HandleFunc("OPTIONS /v1/", r.corsMiddleware(func(http.ResponseWriter, *http.Request) {}))
}

// Start runs the API server until it fails or the context is canceled.
func (r *router) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         r.config.Addr,
		Handler:      r.mux,
		ReadTimeout:  r.config.ReadTimeout,
		WriteTimeout: r.config.WriteTimeout,
		IdleTimeout:  r.config.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			r.logger.Error().Err(err).Msg("error shutting down quorum gateway server")
		}
	}()

	r.logger.Info().Msgf("quorum gateway running on %s", r.config.Addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

/* --------------------------------- Middleware -------------------------------- */

// TODO_IMPROVE: gather the CORS config from the config YAML
func (r *router) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, solana-client")
		if req.Method == http.MethodOptions {
			// Handle preflight request, which is necessary for CORS to work.
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, req)
	}
}

// adminAuthMiddleware gates key management behind the configured admin
// tokens. With no tokens configured the key endpoints reject everything.
func (r *router) adminAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			r.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, ok := r.adminTokens[token]; !ok {
			r.writeError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next(w, req)
	}
}
