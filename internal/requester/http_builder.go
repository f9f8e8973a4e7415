package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Browser-like headers the provider expects on every call
var defaultHeaders = map[string]string{
	"Accept":     "application/json, text/plain, */*",
	"Origin":     "https://resy.com",
	"Referer":    "https://resy.com/",
	"X-Origin":   "https://resy.com",
	"User-Agent": "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15",
}

// HTTPRequestBuilder turns a Request into an authenticated *http.Request
type HTTPRequestBuilder struct {
	baseURL string
	headers map[string]string
	authMgr AuthManager
}

// NewHTTPRequestBuilder creates a new HTTPRequestBuilder
func NewHTTPRequestBuilder(baseURL string, headers map[string]string, authMgr AuthManager) *HTTPRequestBuilder {
	merged := make(map[string]string, len(defaultHeaders)+len(headers))
	for k, v := range defaultHeaders {
		merged[k] = v
	}
	for k, v := range headers {
		merged[k] = v
	}
	return &HTTPRequestBuilder{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: merged,
		authMgr: authMgr,
	}
}

// BuildRequest builds the HTTP request for req
func (b *HTTPRequestBuilder) BuildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	target, err := b.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	body, contentType, err := createRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range b.headers {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if err := b.authMgr.ApplyAuth(ctx, httpReq, req); err != nil {
		return nil, fmt.Errorf("failed to apply authentication: %w", err)
	}
	return httpReq, nil
}

func (b *HTTPRequestBuilder) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(b.baseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid request url: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func createRequestBody(req *Request) (io.Reader, string, error) {
	switch {
	case req.Form != nil:
		return strings.NewReader(req.Form.Encode()), "application/x-www-form-urlencoded", nil
	case req.JSON != nil:
		jsonData, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		return bytes.NewReader(jsonData), "application/json", nil
	default:
		return nil, "", nil
	}
}
