// Package consensus reduces the per-provider outcomes of one fan-out round
// into a single verdict. Reduction is a pure function of the outcome list:
// no clock reads, no randomness, no I/O, so every replica holding the same
// outcomes reaches the same verdict.
package consensus

import (
	"encoding/json"
	"fmt"

	"github.com/buildwithgrove/quorum/provider"
)

// ErrorKind classifies a per-provider failure for consensus comparison.
type ErrorKind string

const (
	// ErrorKindTransport covers failures before any HTTP response existed:
	// timeouts, oversize responses, connection failures, host rejections.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindHTTP covers responses with a non-2xx status code.
	ErrorKindHTTP ErrorKind = "http"

	// ErrorKindJSONRPC covers well-formed JSON-RPC error objects returned
	// by the provider.
	ErrorKindJSONRPC ErrorKind = "jsonrpc"

	// ErrorKindParse covers 2xx responses whose body was not a valid
	// JSON-RPC envelope for the requested method.
	ErrorKindParse ErrorKind = "parse"
)

// RPCError is a provider's terminal failure for one round. Errors
// participate in reduction exactly like success values: identical errors
// group together, and a unanimous error set is a consistent verdict.
type RPCError struct {
	Kind    ErrorKind       `json:"kind"`
	Code    int64           `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Outcome is one provider's terminal result: a canonicalized success value
// or a taxonomy error, never both. Value must already be in canonical form
// when the outcome enters reduction; reduction compares bytes, it does not
// normalize.
type Outcome struct {
	Value json.RawMessage `json:"value,omitempty"`
	Err   *RPCError       `json:"error,omitempty"`
}

// OkOutcome wraps a canonicalized result value.
func OkOutcome(canonical json.RawMessage) Outcome {
	return Outcome{Value: canonical}
}

// ErrOutcome wraps a taxonomy error.
func ErrOutcome(err RPCError) Outcome {
	return Outcome{Err: &err}
}

// IsErr reports whether the outcome is a failure.
func (o Outcome) IsErr() bool {
	return o.Err != nil
}

// Equal reports whether two outcomes group together under reduction.
func (o Outcome) Equal(other Outcome) bool {
	return o.key() == other.key()
}

// key is the canonical grouping identity for reduction. Success values
// compare by their canonical bytes, errors field by field. The prefixes
// keep a success value from ever colliding with an error rendering.
func (o Outcome) key() string {
	if o.Err != nil {
		return fmt.Sprintf("err:%s:%d:%s:%s", o.Err.Kind, o.Err.Code, o.Err.Message, o.Err.Data)
	}
	return "ok:" + string(o.Value)
}

// SourcedOutcome pairs an outcome with the provider that produced it.
type SourcedOutcome struct {
	Source  provider.Source `json:"source"`
	Outcome Outcome         `json:"outcome"`
}

// Outcomes is the result set of one fan-out round, one entry per queried
// provider, in dispatch order.
type Outcomes []SourcedOutcome
