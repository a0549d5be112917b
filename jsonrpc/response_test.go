package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestResponse_Validate(t *testing.T) {
	tests := []struct {
		name     string
		reqID    ID
		response Response
		wantErr  bool
	}{
		{
			name:  "should validate successfully with correct version and result",
			reqID: IDFromStr("1"),
			response: Response{
				ID:      IDFromStr("1"),
				Version: Version2,
				Result:  json.RawMessage(`"success"`),
			},
			wantErr: false,
		},
		{
			name:  "should validate successfully with null result",
			reqID: IDFromStr("1"),
			response: Response{
				ID:      IDFromStr("1"),
				Version: Version2,
				Result:  json.RawMessage(`null`),
			},
			wantErr: false,
		},
		{
			name:  "should validate successfully with complex result",
			reqID: IDFromStr("1"),
			response: Response{
				ID:      IDFromStr("1"),
				Version: Version2,
				Result:  json.RawMessage(`{"blockhash":"9bRVdrQGpziGyUyskjuUv2Jp1K9nNbDbZZscLLpWMpA","status":"ok"}`),
			},
			wantErr: false,
		},
		{
			name:  "should fail validation with incorrect version",
			reqID: IDFromStr("1"),
			response: Response{
				ID:      IDFromStr("1"),
				Version: "1.0",
				Result:  json.RawMessage(`"success"`),
			},
			wantErr: true,
		},
		{
			name:  "should fail validation with both result and error",
			reqID: IDFromStr("1"),
			response: Response{
				ID:      IDFromStr("1"),
				Version: Version2,
				Result:  json.RawMessage(`"success"`),
				Error:   &ResponseError{Code: 1, Message: "error"},
			},
			wantErr: true,
		},
		{
			name:  "should fail validation with both null result and error",
			reqID: IDFromStr("1"),
			response: Response{
				ID:      IDFromStr("1"),
				Version: Version2,
				Result:  json.RawMessage(`null`),
				Error:   &ResponseError{Code: 1, Message: "error"},
			},
			wantErr: true,
		},
		{
			name:  "should fail validation with neither result nor error",
			reqID: IDFromStr("1"),
			response: Response{
				ID:      IDFromStr("1"),
				Version: Version2,
			},
			wantErr: true,
		},
		{
			name:  "should fail validation with incorrect id",
			reqID: IDFromStr("2"),
			response: Response{
				ID:      IDFromStr("1"),
				Version: Version2,
				Result:  json.RawMessage(`"success"`),
			},
			wantErr: true,
		},
		{
			name:  "should validate successfully with integer ID",
			reqID: IDFromInt(42),
			response: Response{
				ID:      IDFromInt(42),
				Version: Version2,
				Result:  json.RawMessage(`"success"`),
			},
			wantErr: false,
		},
		{
			name:  "should validate successfully with matching empty IDs",
			reqID: ID{}, // empty ID (will serialize as null)
			response: Response{
				ID:      ID{},
				Version: Version2,
				Result:  json.RawMessage(`"success"`),
			},
			wantErr: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.response.Validate(test.reqID)
			if (err != nil) != test.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
}

func TestResponse_UnmarshalRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantErr    bool
		wantNull   bool
		wantResult string
	}{
		{
			name:       "should keep raw result bytes intact",
			payload:    `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":12345},"value":100}}`,
			wantResult: `{"context":{"slot":12345},"value":100}`,
		},
		{
			name:     "should detect explicit null result",
			payload:  `{"jsonrpc":"2.0","id":1,"result":null}`,
			wantNull: true,
		},
		{
			name:    "should reject malformed JSON",
			payload: `{"jsonrpc":"2.0","id":1,"result":`,
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var resp Response
			err := json.Unmarshal([]byte(test.payload), &resp)
			if (err != nil) != test.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, test.wantErr)
			}
			if test.wantErr {
				return
			}
			if resp.IsNullResult() != test.wantNull {
				t.Errorf("IsNullResult() = %v, want %v", resp.IsNullResult(), test.wantNull)
			}
			if test.wantResult != "" && string(resp.Result) != test.wantResult {
				t.Errorf("Result = %s, want %s", resp.Result, test.wantResult)
			}
		})
	}
}
