// Package secrets supplies provider credentials. Every implementation reads its source on each
// call so rotated credentials are picked up without a restart.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/brizzai/resy-client/internal/config"
)

// ErrMissingAPIKey is returned when a source yields credentials without an API key
var ErrMissingAPIKey = errors.New("secrets: api key is empty")

// Credentials authenticate calls to the provider
type Credentials struct {
	APIKey    string `json:"apiKey" yaml:"api_key"`
	AuthToken string `json:"authToken" yaml:"auth_token"`
}

// Store returns the current provider credentials
type Store interface {
	GetCredentials(ctx context.Context) (Credentials, error)
}

// StaticStore serves credentials fixed at construction time
type StaticStore struct {
	creds Credentials
}

// NewStaticStore creates a new StaticStore returning fixed credentials
func NewStaticStore(apiKey, authToken string) *StaticStore {
	return &StaticStore{creds: Credentials{APIKey: apiKey, AuthToken: authToken}}
}

func (s *StaticStore) GetCredentials(ctx context.Context) (Credentials, error) {
	if s.creds.APIKey == "" {
		return Credentials{}, ErrMissingAPIKey
	}
	return s.creds, nil
}

// NewStore builds the store selected by cfg.Source
func NewStore(ctx context.Context, cfg *config.SecretsConfig) (Store, error) {
	switch cfg.Source {
	case config.SecretSourceStatic, "":
		return NewStaticStore(cfg.APIKey, cfg.AuthToken), nil
	case config.SecretSourceFile:
		return NewFileStore(cfg.File), nil
	case config.SecretSourceAWS:
		return NewAWSStore(ctx, cfg.SecretName, cfg.Region)
	default:
		return nil, fmt.Errorf("unsupported secret source: %s", cfg.Source)
	}
}
