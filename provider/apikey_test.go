package provider

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid alphanumeric key", key: "abc123XYZ"},
		{name: "valid key with special chars", key: "key$-_.+!*"},
		{name: "empty key", key: "", wantErr: true},
		{name: "key too long", key: strings.Repeat("a", 201), wantErr: true},
		{name: "key at max length", key: strings.Repeat("a", 200)},
		{name: "key with space", key: "abc 123", wantErr: true},
		{name: "key with slash", key: "abc/123", wantErr: true},
		{name: "key with unicode", key: "abcé", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateAPIKey(test.key)
			if (err != nil) != test.wantErr {
				t.Errorf("ValidateAPIKey(%q) error = %v, wantErr %v", test.key, err, test.wantErr)
			}
		})
	}
}

func TestAPIKey_Redaction(t *testing.T) {
	key, err := NewAPIKey("super-secret-key")
	if err != nil {
		t.Fatalf("NewAPIKey() error = %v", err)
	}

	for _, rendered := range []string{
		fmt.Sprintf("%s", key),
		fmt.Sprintf("%v", key),
		fmt.Sprintf("%+v", key),
		fmt.Sprintf("%#v", key),
	} {
		if strings.Contains(rendered, "super-secret-key") {
			t.Errorf("API key leaked through formatting: %q", rendered)
		}
		if rendered != APIKeyReplaceString {
			t.Errorf("redacted rendering = %q, want %q", rendered, APIKeyReplaceString)
		}
	}

	// The unexported field must not survive JSON marshaling either.
	marshaled, err := json.Marshal(key)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if strings.Contains(string(marshaled), "super-secret-key") {
		t.Errorf("API key leaked through JSON marshaling: %s", marshaled)
	}

	if key.Read() != "super-secret-key" {
		t.Errorf("Read() = %q, want the raw key", key.Read())
	}
}
