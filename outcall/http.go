package outcall

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// absoluteMaxResponseBytes is the safety ceiling applied regardless of the
// per-request cap.
const absoluteMaxResponseBytes = 100 * 1024 * 1024

// HTTPTransport sends outbound calls over a shared net/http client tuned
// for high fan-out concurrency. The zero value is not usable; construct
// with NewHTTPTransport.
type HTTPTransport struct {
	client  *http.Client
	buffers *bufferPool
}

var _ Transport = &HTTPTransport{}

// NewHTTPTransport builds the production transport. Individual requests
// control their own deadline through the context; the client timeout is a
// large fallback only.
func NewHTTPTransport() *HTTPTransport {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		// Connection pool settings sized for steady fan-out to a small
		// set of provider hosts.
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	return &HTTPTransport{
		client: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
		},
		buffers: newBufferPool(),
	}
}

// Send POSTs the request body as JSON and returns the response for any
// HTTP status code. Errors are always *TransportError.
func (t *HTTPTransport) Send(ctx context.Context, req Request) (Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return Response{}, &TransportError{
			Kind:    ErrorKindRejected,
			Message: fmt.Sprintf("building request: %v", err),
		}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return Response{}, Classify(err)
	}
	defer httpResp.Body.Close()

	body, err := t.readCapped(httpResp.Body, req.MaxResponseBytes)
	if err != nil {
		return Response{}, Classify(err)
	}

	return Response{StatusCode: httpResp.StatusCode, Body: body}, nil
}

// readCapped reads the whole body through the buffer pool, failing with an
// oversize error as soon as it grows past the cap.
func (t *HTTPTransport) readCapped(body io.Reader, maxBytes uint64) ([]byte, error) {
	if maxBytes == 0 || maxBytes > absoluteMaxResponseBytes {
		maxBytes = absoluteMaxResponseBytes
	}

	// Read one byte past the cap to tell "exactly at the cap" from "over".
	buf, err := t.buffers.read(body, int64(maxBytes)+1)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if uint64(len(buf)) > maxBytes {
		return nil, &TransportError{
			Kind:    ErrorKindOversizeResponse,
			Message: fmt.Sprintf("response exceeds %d bytes", maxBytes),
		}
	}
	return buf, nil
}
