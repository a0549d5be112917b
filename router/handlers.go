package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/buildwithgrove/quorum/cycles"
	"github.com/buildwithgrove/quorum/gateway"
	"github.com/buildwithgrove/quorum/jsonrpc"
	"github.com/buildwithgrove/quorum/keystore"
	"github.com/buildwithgrove/quorum/provider"
)

/* --------------------------------- Request bodies -------------------------------- */

type (
	// callRequest is the body of a typed consensus call: where to fan out,
	// the method's argument object, per-call overrides, and the attached
	// payment.
	callRequest struct {
		Sources provider.Sources    `json:"sources"`
		Params  json.RawMessage     `json:"params,omitempty"`
		Config  *gateway.CallConfig `json:"config,omitempty"`
		Cycles  cycles.Cycles       `json:"cycles,omitempty"`
		ID      *jsonrpc.ID         `json:"id,omitempty"`
	}

	// rawCallRequest is the body of a passthrough call: a complete JSON-RPC
	// 2.0 envelope forwarded to the providers verbatim.
	rawCallRequest struct {
		Sources provider.Sources    `json:"sources"`
		Request json.RawMessage     `json:"request"`
		Config  *gateway.CallConfig `json:"config,omitempty"`
		Cycles  cycles.Cycles       `json:"cycles,omitempty"`
	}

	verifyKeyRequest struct {
		Provider provider.ID `json:"provider"`
		Key      string      `json:"key,omitempty"`
	}
)

func (b callRequest) spec(method jsonrpc.Method) gateway.CallSpec {
	spec := gateway.CallSpec{
		Sources:        b.Sources,
		Method:         method,
		Params:         b.Params,
		AttachedCycles: b.Cycles,
	}
	if b.Config != nil {
		spec.Config = *b.Config
	}
	if b.ID != nil {
		spec.ID = *b.ID
	}
	return spec
}

// spec parses the passthrough envelope. The params travel on verbatim; the
// gateway checks they form a valid JSON-RPC params value before dispatch.
func (b rawCallRequest) spec() (gateway.CallSpec, error) {
	var envelope struct {
		JSONRPC jsonrpc.Version `json:"jsonrpc"`
		ID      jsonrpc.ID      `json:"id"`
		Method  jsonrpc.Method  `json:"method"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(b.Request, &envelope); err != nil {
		return gateway.CallSpec{}, fmt.Errorf("invalid JSON-RPC request: %s", err)
	}
	if envelope.JSONRPC != jsonrpc.Version2 {
		return gateway.CallSpec{}, fmt.Errorf("invalid JSON-RPC request: jsonrpc must be %q", jsonrpc.Version2)
	}

	spec := gateway.CallSpec{
		Sources:        b.Sources,
		Method:         envelope.Method,
		Params:         envelope.Params,
		ID:             envelope.ID,
		Raw:            true,
		AttachedCycles: b.Cycles,
	}
	if b.Config != nil {
		spec.Config = *b.Config
	}
	return spec, nil
}

/* --------------------------------- Response bodies -------------------------------- */

type (
	quoteJSON struct {
		Cycles cycles.Cycles `json:"cycles"`
	}
	verifyKeyJSON struct {
		Valid bool `json:"valid"`
	}
	errorJSON struct {
		Error errorBody `json:"error"`
	}
	errorBody struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
)

/* --------------------------------- Handlers -------------------------------- */

// POST /v1/{method} - handleCall runs one consensus call for the method in
// the path and returns the verdict.
func (r *router) handleCall(w http.ResponseWriter, req *http.Request) {
	var body callRequest
	if !r.decodeBody(w, req, &body) {
		return
	}
	method := jsonrpc.Method(req.PathValue(methodPathParam))

	ctx, cancel := context.WithTimeout(req.Context(), r.config.RequestTimeout)
	defer cancel()

	verdict, err := r.quorum.Execute(ctx, body.spec(method))
	if err != nil {
		r.writeCallError(w, err)
		return
	}
	r.writeJSON(w, http.StatusOK, verdict)
}

// POST /v1/{method}/cost - handleCallCost prices the call without
// dispatching it: the exact cycles the call endpoint would require.
func (r *router) handleCallCost(w http.ResponseWriter, req *http.Request) {
	var body callRequest
	if !r.decodeBody(w, req, &body) {
		return
	}
	method := jsonrpc.Method(req.PathValue(methodPathParam))

	cost, err := r.quorum.Quote(body.spec(method))
	if err != nil {
		r.writeCallError(w, err)
		return
	}
	r.writeJSON(w, http.StatusOK, quoteJSON{Cycles: cost})
}

// POST /v1/request - handleRawCall forwards a caller-built JSON-RPC envelope
// to the providers and reduces the responses like any other call.
func (r *router) handleRawCall(w http.ResponseWriter, req *http.Request) {
	var body rawCallRequest
	if !r.decodeBody(w, req, &body) {
		return
	}
	spec, err := body.spec()
	if err != nil {
		r.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), r.config.RequestTimeout)
	defer cancel()

	verdict, err := r.quorum.Execute(ctx, spec)
	if err != nil {
		r.writeCallError(w, err)
		return
	}
	r.writeJSON(w, http.StatusOK, verdict)
}

// POST /v1/request/cost - handleRawCallCost prices a passthrough call.
func (r *router) handleRawCallCost(w http.ResponseWriter, req *http.Request) {
	var body rawCallRequest
	if !r.decodeBody(w, req, &body) {
		return
	}
	spec, err := body.spec()
	if err != nil {
		r.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cost, err := r.quorum.Quote(spec)
	if err != nil {
		r.writeCallError(w, err)
		return
	}
	r.writeJSON(w, http.StatusOK, quoteJSON{Cycles: cost})
}

// GET /v1/providers - handleProviders returns the supported provider table.
func (r *router) handleProviders(w http.ResponseWriter, req *http.Request) {
	r.writeJSON(w, http.StatusOK, provider.Supported())
}

// PUT /v1/keys - handleUpdateKeys applies a bulk key update. Values are raw
// API keys; a null value deletes the stored key. One bad entry rejects the
// whole batch before anything is written.
func (r *router) handleUpdateKeys(w http.ResponseWriter, req *http.Request) {
	var body map[string]*string
	if !r.decodeBody(w, req, &body) {
		return
	}
	updates, err := keystore.ParseUpdates(body)
	if err != nil {
		r.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := keystore.UpdateKeys(req.Context(), r.keys, updates); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, provider.ErrUnknownProvider) || errors.Is(err, keystore.ErrKeyNotAccepted) {
			status = http.StatusBadRequest
		}
		r.writeError(w, status, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/keys/verify - handleVerifyKey reports whether the supplied raw
// key matches the stored one. An empty key verifies that none is stored.
func (r *router) handleVerifyKey(w http.ResponseWriter, req *http.Request) {
	var body verifyKeyRequest
	if !r.decodeBody(w, req, &body) {
		return
	}
	if _, ok := provider.Get(body.Provider); !ok {
		r.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown provider %q", body.Provider))
		return
	}
	valid, err := keystore.VerifyKey(req.Context(), r.keys, body.Provider, body.Key)
	if err != nil {
		r.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	r.writeJSON(w, http.StatusOK, verifyKeyJSON{Valid: valid})
}

/* --------------------------------- Helpers -------------------------------- */

// decodeBody parses a JSON request body under the configured size cap. On
// failure it writes the error response and reports false.
func (r *router) decodeBody(w http.ResponseWriter, req *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, req.Body, r.config.MaxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			r.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		r.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err))
		return false
	}
	return true
}

// writeCallError maps a rejected call to its HTTP status: config errors are
// the caller's fault, short payments are payment required, anything else is
// internal.
func (r *router) writeCallError(w http.ResponseWriter, err error) {
	var tooFew *cycles.TooFewCyclesError
	switch {
	case errors.As(err, &tooFew):
		r.writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, gateway.ErrInvalidCallConfig):
		r.writeError(w, http.StatusBadRequest, err.Error())
	default:
		r.logger.Error().Err(err).Msg("consensus call failed")
		r.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (r *router) writeJSON(w http.ResponseWriter, status int, v any) {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshalling response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(responseBytes); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r *router) writeError(w http.ResponseWriter, status int, message string) {
	r.writeJSON(w, status, errorJSON{Error: errorBody{Code: status, Message: message}})
}
