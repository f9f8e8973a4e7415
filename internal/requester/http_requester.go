package requester

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brizzai/resy-client/internal/config"
	"github.com/brizzai/resy-client/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// ErrBuildRequest marks failures that happened before anything was sent
var ErrBuildRequest = errors.New("failed to build request")

// Requester executes provider requests
type Requester interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPRequester builds and executes provider requests
type HTTPRequester struct {
	client  *http.Client
	builder *HTTPRequestBuilder
}

// HTTPRequesterParams are the dependencies of the HTTP requester
type HTTPRequesterParams struct {
	fx.In

	ProviderConfig *config.ProviderConfig
	AuthManager    AuthManager
}

// NewHTTPRequester creates a new HTTPRequester for the configured provider
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	timeout := params.ProviderConfig.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPRequester{
		client:  &http.Client{Timeout: timeout},
		builder: NewHTTPRequestBuilder(params.ProviderConfig.BaseURL, params.ProviderConfig.Headers, params.AuthManager),
	}
}

// SetTimeout sets the timeout for the HTTP client
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// Do sends req. A nil error means a response arrived, whatever its status.
func (r *HTTPRequester) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := r.builder.BuildRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildRequest, err)
	}
	logger.Debug("provider request",
		zap.String("method", httpReq.Method),
		zap.String("url", httpReq.URL.Redacted()),
	)

	start := time.Now()
	resp, err := r.client.Do(httpReq)
	if err != nil {
		logger.Error("provider request failed", zap.String("path", req.Path), zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logger.Debug("provider response",
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(bodyBytes)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Headers:    resp.Header,
	}, nil
}
