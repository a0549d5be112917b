package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response captures all the fields of a JSONRPC response.
// See the following link for more details:
// https://www.jsonrpc.org/specification#response_object
type Response struct {
	ID      ID      `json:"id"`
	Version Version `json:"jsonrpc"`
	// Result captures the result field of the JSONRPC spec.
	// It is kept as raw JSON so canonical comparison between providers
	// never depends on Go's map iteration or number decoding.
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
}

var jsonNull = []byte("null")

// HasResult returns true when the response carries a result field,
// including an explicit JSON null (a valid result for e.g. getBlock
// on a skipped slot).
func (r Response) HasResult() bool {
	return len(r.Result) > 0
}

// IsNullResult returns true when the result field is the JSON null literal.
func (r Response) IsNullResult() bool {
	return bytes.Equal(bytes.TrimSpace(r.Result), jsonNull)
}

// Validate checks the response against the JSON-RPC 2.0 spec for the given request ID:
// version must be "2.0", exactly one of result/error must be set, and the
// response ID must match the request ID.
func (r Response) Validate(reqID ID) error {
	if r.Version != Version2 {
		return fmt.Errorf("invalid JSONRPC response: jsonrpc field is %q, expected %q", r.Version, Version2)
	}

	if r.HasResult() && r.Error != nil {
		return fmt.Errorf("invalid JSONRPC response: both result and error fields are set")
	}

	if !r.HasResult() && r.Error == nil {
		return fmt.Errorf("invalid JSONRPC response: neither result nor error field is set")
	}

	if r.ID.String() != reqID.String() {
		return fmt.Errorf("invalid JSONRPC response: response ID %q does not match request ID %q", r.ID, reqID)
	}

	return nil
}

func (r Response) GetResultAsBytes() []byte {
	return []byte(r.Result)
}

// GetErrorResponse is a helper function that builds a JSONRPC Response using the supplied ID and error values.
func GetErrorResponse(id ID, errCode int64, errMsg string, errData json.RawMessage) Response {
	return Response{
		ID:      id,
		Version: Version2,
		Error: &ResponseError{
			Code:    errCode,
			Message: errMsg,
			Data:    errData,
		},
	}
}

// GetResultResponse is a helper function that builds a JSONRPC Response carrying the supplied raw result.
func GetResultResponse(id ID, result json.RawMessage) Response {
	return Response{
		ID:      id,
		Version: Version2,
		Result:  result,
	}
}
