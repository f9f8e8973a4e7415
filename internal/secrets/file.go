package secrets

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileStore reads credentials from a YAML file with api_key and auth_token keys
type FileStore struct {
	path string
}

// NewFileStore creates a new FileStore reading credentials from the YAML file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) GetCredentials(ctx context.Context) (Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read secrets file: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse secrets file %s: %w", s.path, err)
	}
	if creds.APIKey == "" {
		return Credentials{}, ErrMissingAPIKey
	}
	return creds, nil
}
