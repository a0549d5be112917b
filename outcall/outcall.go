// Package outcall is the only place network I/O happens. It defines the
// transport capability the gateway fans requests out through and the
// taxonomy of transport-level failures.
package outcall

import (
	"context"
	"errors"
	"net"
)

// Request is one outbound JSON-RPC call, fully resolved: credentials are
// already baked into the URL or headers.
type Request struct {
	URL  string
	Body []byte
	// Headers are attached verbatim on top of the JSON content type.
	Headers map[string]string
	// MaxResponseBytes caps the response body. Zero applies only the
	// absolute safety ceiling.
	MaxResponseBytes uint64
}

// Response is the raw HTTP answer of one provider. Any status code is a
// response; classifying non-2xx codes is the caller's concern.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport sends a single outbound call. Implementations must honor
// context cancellation and never retry: retries would skew consensus
// counting.
type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// ErrorKind buckets transport failures for consensus grouping and metrics.
type ErrorKind string

const (
	// ErrorKindTimeout covers context deadlines and network timeouts.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindOversizeResponse means the body exceeded MaxResponseBytes.
	ErrorKindOversizeResponse ErrorKind = "oversize_response"
	// ErrorKindConnectionFailure covers DNS, dial, and TLS failures and
	// broken response streams.
	ErrorKindConnectionFailure ErrorKind = "connection_failure"
	// ErrorKindRejected means the request never left this process.
	ErrorKindRejected ErrorKind = "rejected"
)

// TransportError describes why an outbound call produced no usable HTTP
// response.
type TransportError struct {
	Kind    ErrorKind
	Message string
}

func (e *TransportError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Classify maps an arbitrary send failure onto the transport taxonomy.
// TransportErrors pass through unchanged; context and network timeouts
// become timeouts; everything else is a connection failure.
func Classify(err error) *TransportError {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TransportError{Kind: ErrorKindTimeout, Message: err.Error()}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: ErrorKindTimeout, Message: err.Error()}
	}

	return &TransportError{Kind: ErrorKindConnectionFailure, Message: err.Error()}
}
