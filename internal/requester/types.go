package requester

import (
	"net/http"
	"net/url"
)

// AuthTokenHeader carries the user's session token to the provider
const AuthTokenHeader = "x-resy-auth-token"

// Request describes one call to the provider
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Form is sent form-encoded; JSON is used only when Form is nil
	Form    url.Values
	JSON    interface{}
	Headers map[string]string
	// AuthToken is the user's session token
	AuthToken string
	// ServiceToken sends the secret store's auth token when AuthToken is empty
	ServiceToken bool
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}
