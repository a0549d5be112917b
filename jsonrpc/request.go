package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Method is the method specified by a JSONRPC request.
// See the following link for more details:
// https://www.jsonrpc.org/specification
type Method string
type Version string

const Version2 = Version("2.0")

// Request represents a JSON-RPC 2.0 request.
//
// Specification requirements:
//   - jsonrpc: must be "2.0"
//   - method: string containing the method name
//   - params: structured values (array or object), optional
//   - id: identifier for correlation, always included (null if unset)
//
// Reference: https://www.jsonrpc.org/specification#request_object
type Request struct {
	ID      ID      `json:"id"` // Always include in JSON
	JSONRPC Version `json:"jsonrpc"`
	Method  Method  `json:"method"`
	Params  Params  `json:"params,omitempty"`
}

// NewRequest builds a v2.0 request for the supplied method and params.
// A zero-value Params leaves the params field unset.
func NewRequest(id ID, method Method, params Params) Request {
	return Request{
		ID:      id,
		JSONRPC: Version2,
		Method:  method,
		Params:  params,
	}
}

// MarshalJSON implements json.Marshaler interface.
// Always includes the ID field for JSON-RPC 2.0 compliance.
// Unset IDs are automatically serialized as null.
func (r Request) MarshalJSON() ([]byte, error) {
	type requestAlias struct {
		JSONRPC Version `json:"jsonrpc"`
		Method  Method  `json:"method"`
		Params  *Params `json:"params,omitempty"`
		ID      ID      `json:"id"`
	}

	out := requestAlias{
		JSONRPC: r.JSONRPC,
		Method:  r.Method,
		ID:      r.ID, // ID.MarshalJSON() handles null case automatically
	}

	if !r.Params.IsEmpty() {
		out.Params = &r.Params
	}

	return json.Marshal(out)
}

// SetParams sets the params field directly from a byte array
func (r *Request) SetParams(params []byte) {
	r.Params = Params{rawMessage: params}
}

// -----------------
// The following functions build Params objects from various input types.
// These are individually defined in order to allow type-safe param construction.
//
// JSON-RPC spec reference: https://www.jsonrpc.org/specification#parameter_structures
// -----------------

// BuildParamsFromString builds a Params object from a single string.
//
// For example, for a Solana `getBalance` request, the params would look like:
// params - ["83astBRguLMdt2h5U1Tpdq5tjFoJ6noeGwaY3mDLVcri"]
//
// Used for getBalance and sendTransaction
func BuildParamsFromString(stringParam string) (Params, error) {
	if stringParam == "" {
		return Params{}, fmt.Errorf("param is empty")
	}
	jsonParams, err := json.Marshal([1]string{stringParam})
	if err != nil {
		return Params{}, err
	}
	return Params{rawMessage: jsonParams}, nil
}

// BuildParamsFromStringAndObject builds a Params object from a single string and a map.
//
// For example, for a Solana `getSignaturesForAddress` request, the params would look like:
// params - ["Vote111111111111111111111111111111111111111",{"limit":1}]
//
// Used for getAccountInfo, getBalance, getSignaturesForAddress, getTokenAccountBalance and sendTransaction
func BuildParamsFromStringAndObject(stringParam string, objectParam map[string]any) (Params, error) {
	if stringParam == "" {
		return Params{}, fmt.Errorf("string param is empty")
	}
	jsonParams, err := json.Marshal([2]any{stringParam, objectParam})
	if err != nil {
		return Params{}, err
	}
	return Params{rawMessage: jsonParams}, nil
}

// BuildParamsFromStringArrayAndObject builds a Params object from an array of strings and a map.
//
// For example, for a Solana `getSignatureStatuses` request, the params would look like:
// params - [["5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"],{"searchTransactionHistory":true}]
//
// Used for getSignatureStatuses
func BuildParamsFromStringArrayAndObject(stringParams []string, objectParam map[string]any) (Params, error) {
	if len(stringParams) == 0 {
		return Params{}, fmt.Errorf("string array param is empty")
	}
	jsonParams, err := json.Marshal([2]any{stringParams, objectParam})
	if err != nil {
		return Params{}, err
	}
	return Params{rawMessage: jsonParams}, nil
}

// BuildParamsFromStringArray builds a Params object from an array of strings
// with no trailing options object.
//
// For example, for a Solana `getSignatureStatuses` request without options,
// the params would look like:
// params - [["5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"]]
//
// Used for getSignatureStatuses and getRecentPrioritizationFees
func BuildParamsFromStringArray(stringParams []string) (Params, error) {
	if stringParams == nil {
		stringParams = []string{}
	}
	jsonParams, err := json.Marshal([1][]string{stringParams})
	if err != nil {
		return Params{}, err
	}
	return Params{rawMessage: jsonParams}, nil
}

// BuildParamsFromUint64AndObject builds a Params object from a single uint64 and a map.
//
// For example, for a Solana `getBlock` request, the params would look like:
// params - [430, {"encoding": "json", "transactionDetails": "none", "maxSupportedTransactionVersion": 0}]
//
// Used for getBlock
func BuildParamsFromUint64AndObject(uint64Param uint64, objectParam map[string]any) (Params, error) {
	jsonParams, err := json.Marshal([2]any{uint64Param, objectParam})
	if err != nil {
		return Params{}, err
	}
	return Params{rawMessage: jsonParams}, nil
}

// BuildParamsFromObject builds a Params object wrapping a single object.
//
// For example, for a Solana `getSlot` request, the params would look like:
// params - [{"commitment": "finalized"}]
//
// Used for getSlot and getRecentPrioritizationFees
func BuildParamsFromObject(objectParam map[string]any) (Params, error) {
	jsonParams, err := json.Marshal([1]any{objectParam})
	if err != nil {
		return Params{}, err
	}
	return Params{rawMessage: jsonParams}, nil
}
