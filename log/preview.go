// Package log holds helpers for rendering untrusted payloads in log fields.
// Provider bodies can run to megabytes; previews keep one bad payload from
// flooding the stream.
package log

// defaultMaxPreviewLen bounds body previews in log fields.
const defaultMaxPreviewLen = 100

// Preview returns a log-safe preview of raw.
//
// maxLen is optional and defaults to defaultMaxPreviewLen. Strings within
// the bound pass through unchanged; longer ones are truncated to the bound
// with a trailing ellipsis.
func Preview(raw string, maxLen ...int) string {
	bound := defaultMaxPreviewLen
	if len(maxLen) > 0 {
		bound = maxLen[0]
	}
	return truncateWithEllipsis(raw, bound)
}

func truncateWithEllipsis(raw string, bound int) string {
	if len(raw) <= bound {
		return raw
	}
	if bound <= 3 {
		return raw[:bound]
	}
	return raw[:bound-3] + "..."
}
