package gateway

import (
	"errors"
)

// ErrInvalidCallConfig tags every rejection that happens before a provider
// is contacted: malformed sources, unknown or unsupported methods, invalid
// params, out-of-range consensus strategies, oversized response estimates.
// Rejections wrap both this sentinel and the underlying typed error, so
// callers can branch on either.
var ErrInvalidCallConfig = errors.New("invalid call config")
