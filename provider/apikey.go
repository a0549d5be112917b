package provider

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// APIKeyReplaceString is the placeholder substituted with the real key
	// in URL-parameter provider patterns. It is also what an APIKey prints
	// as, so keys can never leak through log or error formatting.
	APIKeyReplaceString = "{API_KEY}"

	apiKeyMaxLen = 200

	validAPIKeyChars = "0123456789ABCDEFGHIJKLMNOPQRTSUVWXYZabcdefghijklmnopqrstuvwxyz$-_.+!*"
)

var (
	errAPIKeyEmpty       = errors.New("API key must not be an empty string")
	errAPIKeyTooLong     = fmt.Errorf("API key must be <= %d characters", apiKeyMaxLen)
	errAPIKeyInvalidChar = errors.New("invalid character in API key")
)

// ValidateAPIKey checks a raw key against the accepted length and charset.
func ValidateAPIKey(key string) error {
	switch {
	case key == "":
		return errAPIKeyEmpty
	case len(key) > apiKeyMaxLen:
		return errAPIKeyTooLong
	case strings.ContainsFunc(key, func(r rune) bool {
		return !strings.ContainsRune(validAPIKeyChars, r)
	}):
		return errAPIKeyInvalidChar
	default:
		return nil
	}
}

// APIKey is a validated provider credential. The value is unexported and the
// type's fmt representations are redacted: the only way to read the secret is
// the explicit Read call, which keeps accidental logging from exposing keys.
type APIKey struct {
	key string
}

// NewAPIKey validates the raw key and wraps it.
func NewAPIKey(key string) (APIKey, error) {
	if err := ValidateAPIKey(key); err != nil {
		return APIKey{}, err
	}
	return APIKey{key: key}, nil
}

// Read explicitly reveals the key (use sparingly).
func (k APIKey) Read() string {
	return k.key
}

// IsZero reports whether no key is set.
func (k APIKey) IsZero() bool {
	return k.key == ""
}

// String implements fmt.Stringer with a redacted value.
func (k APIKey) String() string {
	return APIKeyReplaceString
}

// GoString implements fmt.GoStringer with a redacted value, covering %#v.
func (k APIKey) GoString() string {
	return APIKeyReplaceString
}
