package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// ResponseError captures a JSONRPC response error struct
// See the following link for more details:
// https://www.jsonrpc.org/specification#error_object
type ResponseError struct {
	// A Number that indicates the error type that occurred.
	Code int64 `json:"code"`
	// A String providing a short description of the error.
	Message string `json:"message"`
	// A Primitive or Structured value that contains additional information about the error.
	// This may be omitted.
	// Kept as raw JSON so identical provider errors compare equal byte-for-byte.
	Data json.RawMessage `json:"data,omitempty"`
}

func (e ResponseError) Error() string {
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}
