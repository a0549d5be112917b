package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/buildwithgrove/quorum/consensus"
	"github.com/buildwithgrove/quorum/jsonrpc"
	"github.com/buildwithgrove/quorum/outcall"
	"github.com/buildwithgrove/quorum/solana"
)

// transportMessages fixes one message per transport failure kind. Raw
// transport errors carry per-host detail (addresses, dial text) that would
// keep identical failure modes from grouping in reduction; two providers
// timing out must produce the same outcome.
var transportMessages = map[outcall.ErrorKind]string{
	outcall.ErrorKindTimeout:           "request timed out",
	outcall.ErrorKindOversizeResponse:  "response exceeded the size limit",
	outcall.ErrorKindConnectionFailure: "connection to the provider failed",
	outcall.ErrorKindRejected:          "request was rejected before dispatch",
}

const (
	parseMessageNotJSONRPC       = "response body is not a JSON-RPC envelope"
	parseMessageInvalidEnvelope  = "invalid JSON-RPC response envelope"
	parseMessageMalformedResult  = "malformed result for method"
	transportMessageUnclassified = "transport failure"
)

// classifier turns one provider's raw dispatch result into a consensus
// outcome. It is built once per call from the effective config.
type classifier struct {
	raw       bool
	method    jsonrpc.Method
	reqID     jsonrpc.ID
	transform solana.TransformConfig
}

// outcome classifies exactly one slot of a fan-out round. Every failure
// rendering is stable across hosts so that identical failure modes compare
// equal.
func (c classifier) outcome(result outcall.Result) consensus.Outcome {
	if result.Err != nil {
		return consensus.ErrOutcome(transportRPCError(result.Err))
	}

	resp := result.Response
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return consensus.ErrOutcome(consensus.RPCError{
			Kind:    consensus.ErrorKindHTTP,
			Code:    int64(resp.StatusCode),
			Message: http.StatusText(resp.StatusCode),
		})
	}

	var rpcResp jsonrpc.Response
	if err := json.Unmarshal(resp.Body, &rpcResp); err != nil {
		return parseErrOutcome(parseMessageNotJSONRPC)
	}
	if err := rpcResp.Validate(c.reqID); err != nil {
		return parseErrOutcome(parseMessageInvalidEnvelope)
	}

	if rpcResp.Error != nil {
		return consensus.ErrOutcome(consensus.RPCError{
			Kind:    consensus.ErrorKindJSONRPC,
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
			Data:    rpcResp.Error.Data,
		})
	}

	canonical, err := c.canonicalize(rpcResp.Result)
	if err != nil {
		return parseErrOutcome(parseMessageMalformedResult)
	}
	return consensus.OkOutcome(canonical)
}

func (c classifier) canonicalize(result json.RawMessage) (json.RawMessage, error) {
	if c.raw {
		return solana.CanonicalizeRaw(result)
	}
	return solana.Canonicalize(c.method, c.transform, result)
}

func parseErrOutcome(message string) consensus.Outcome {
	return consensus.ErrOutcome(consensus.RPCError{
		Kind:    consensus.ErrorKindParse,
		Message: message,
	})
}

func transportRPCError(err error) consensus.RPCError {
	kind := outcall.Classify(err).Kind
	message, known := transportMessages[kind]
	if !known {
		message = transportMessageUnclassified
	}
	return consensus.RPCError{
		Kind:    consensus.ErrorKindTransport,
		Message: string(kind) + ": " + message,
	}
}
