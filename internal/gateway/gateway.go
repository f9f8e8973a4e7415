// Package gateway is the single point of contact with the reservation provider. It maps HTTP
// statuses onto the apperror taxonomy and response bodies onto internal models.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/config"
	"github.com/brizzai/resy-client/internal/logger"
	"github.com/brizzai/resy-client/internal/requester"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	pathAuthMobile    = "/auth/mobile"
	pathAuthChallenge = "/auth/challenge"
	pathReservations  = "/user/reservations"
	pathVenueSearch   = "/venues/search"
	pathVenue         = "/venues/%d"
	pathBook          = "/reservations"

	defaultDeviceTypeID = "3"
	defaultPageSize     = 50
	// maxPages bounds pagination against a provider that keeps returning full pages
	maxPages = 20
)

// Client talks to the provider. It remembers the device token of the last code request so the
// matching verify and challenge calls can send it back.
type Client struct {
	requester    requester.Requester
	deviceTypeID string
	pageSize     int
	now          func() time.Time
	newToken     func() string

	mu          sync.Mutex
	deviceToken string
}

// ClientParams are the dependencies of the provider client
type ClientParams struct {
	fx.In

	Requester      requester.Requester
	ProviderConfig *config.ProviderConfig
}

// NewClient creates a new Client, defaulting the device type and page size when unset
func NewClient(params ClientParams) *Client {
	deviceTypeID := params.ProviderConfig.DeviceTypeID
	if deviceTypeID == "" {
		deviceTypeID = defaultDeviceTypeID
	}
	pageSize := params.ProviderConfig.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		requester:    params.Requester,
		deviceTypeID: deviceTypeID,
		pageSize:     pageSize,
		now:          time.Now,
		newToken:     newDeviceToken,
	}
}

func newDeviceToken() string {
	return strings.ToLower(uuid.NewString())
}

// DeviceToken returns the device token bound to the current verification attempt
func (c *Client) DeviceToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceToken
}

func (c *Client) rotateDeviceToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deviceToken = c.newToken()
	return c.deviceToken
}

// send maps transport failures onto the taxonomy; any response that arrived is returned as is
func (c *Client) send(ctx context.Context, req *requester.Request) (*requester.Response, error) {
	resp, err := c.requester.Do(ctx, req)
	if err != nil {
		if errors.Is(err, requester.ErrBuildRequest) {
			return nil, apperror.Wrap(apperror.KindInvalidRequest, err)
		}
		return nil, apperror.Wrap(apperror.KindNetworkError, err)
	}
	return resp, nil
}

// do sends req and maps non-2xx statuses onto the taxonomy
func (c *Client) do(ctx context.Context, req *requester.Request) (*requester.Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := statusError(req.Path, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func statusError(path string, resp *requester.Response) error {
	status := resp.StatusCode
	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		return nil
	case status == http.StatusBadRequest:
		if msg := fieldMessage(resp.Body, "mobile_number"); msg != "" {
			logger.Warn("provider rejected phone number", zap.String("path", path), zap.String("message", msg))
		}
		return apperror.Wrap(apperror.KindInvalidPhoneNumber, httpError(resp))
	case status == http.StatusUnauthorized || status == 419:
		return apperror.Wrap(apperror.KindAuthenticationError, httpError(resp))
	case status == http.StatusTooManyRequests:
		return apperror.Wrap(apperror.KindTooManyRequests, httpError(resp))
	case status >= 500 && status <= 599:
		return apperror.Wrap(apperror.KindServerError, httpError(resp))
	default:
		return apperror.Wrap(apperror.KindUnknown, httpError(resp))
	}
}

func httpError(resp *requester.Response) error {
	return fmt.Errorf("provider responded with status %d", resp.StatusCode)
}

// fieldMessage extracts data.<field> from a validation error body
func fieldMessage(body []byte, field string) string {
	var payload struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	raw, ok := payload.Data[field]
	if !ok {
		return ""
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg
	}
	var msgs []string
	if err := json.Unmarshal(raw, &msgs); err == nil {
		return strings.Join(msgs, "; ")
	}
	return string(raw)
}
