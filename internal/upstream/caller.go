// Package upstream issues outbound calls to the configured inference API.
package upstream

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	app_errors "chat-relay/internal/errors"
	"chat-relay/internal/httpclient"
	"chat-relay/internal/types"
)

// Caller performs one outbound request per inbound request against the
// single configured upstream endpoint. It never retries.
type Caller struct {
	configManager types.ConfigManager
	clientManager *httpclient.Manager
}

// NewCaller creates a new upstream caller.
func NewCaller(configManager types.ConfigManager, clientManager *httpclient.Manager) *Caller {
	return &Caller{
		configManager: configManager,
		clientManager: clientManager,
	}
}

// Call posts the request body verbatim to the upstream endpoint with the
// configured bearer credential. When stream is true, an event-stream
// representation is requested and transport compression is disabled so the
// relayed bytes match the wire bytes exactly.
//
// A non-2xx upstream status is not an error: the response is returned as-is
// for the pipeline to relay. An error return means no usable response exists.
func (cl *Caller) Call(ctx context.Context, body []byte, stream bool) (*http.Response, error) {
	upstreamConfig := cl.configManager.GetUpstreamConfig()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, upstreamConfig.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+upstreamConfig.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	client := cl.clientManager.GetClient(&httpclient.Config{
		ConnectTimeout:        upstreamConfig.ConnectTimeout,
		RequestTimeout:        upstreamConfig.RequestTimeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		ResponseHeaderTimeout: upstreamConfig.RequestTimeout,
		DisableCompression:    stream,
	})

	return client.Do(req)
}

// ClassifyError maps a transport-level failure to the API error taxonomy:
// timeouts become 504 UPSTREAM_TIMEOUT, everything else (refused connection,
// DNS failure, closed connection) is a gateway failure with no response.
func ClassifyError(err error) *app_errors.APIError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return app_errors.ErrUpstreamTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return app_errors.ErrUpstreamTimeout
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return app_errors.ErrUpstreamTimeout
	}

	return app_errors.ErrBadGateway
}
