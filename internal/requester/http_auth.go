package requester

import (
	"context"
	"fmt"
	"net/http"

	"github.com/brizzai/resy-client/internal/secrets"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(ctx context.Context, httpReq *http.Request, req *Request) error
}

// APIKeyAuthManager signs requests with the provider API key, read from the secret store per request
type APIKeyAuthManager struct {
	secrets secrets.Store
}

// NewAPIKeyAuthManager creates a new APIKeyAuthManager reading credentials from store
func NewAPIKeyAuthManager(store secrets.Store) *APIKeyAuthManager {
	return &APIKeyAuthManager{secrets: store}
}

// ApplyAuth adds the ResyAPI authorization header and the session token header
func (a *APIKeyAuthManager) ApplyAuth(ctx context.Context, httpReq *http.Request, req *Request) error {
	creds, err := a.secrets.GetCredentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to get provider credentials: %w", err)
	}

	httpReq.Header.Set("Authorization", fmt.Sprintf(`ResyAPI api_key="%s"`, creds.APIKey))

	switch {
	case req.AuthToken != "":
		httpReq.Header.Set(AuthTokenHeader, req.AuthToken)
	case req.ServiceToken && creds.AuthToken != "":
		httpReq.Header.Set(AuthTokenHeader, creds.AuthToken)
	}
	return nil
}
