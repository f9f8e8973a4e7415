package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretValueAPI is the part of the Secrets Manager client the store needs
type SecretValueAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSStore reads a JSON secret {"apiKey": ..., "authToken": ...} from AWS Secrets Manager
type AWSStore struct {
	client     SecretValueAPI
	secretName string
}

// NewAWSStore uses the default AWS credential chain
func NewAWSStore(ctx context.Context, secretName, region string) (*AWSStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewAWSStoreWithClient(secretsmanager.NewFromConfig(cfg), secretName), nil
}

// NewAWSStoreWithClient creates a new AWSStore reading secretName through client
func NewAWSStoreWithClient(client SecretValueAPI, secretName string) *AWSStore {
	return &AWSStore{client: client, secretName: secretName}
}

func (s *AWSStore) GetCredentials(ctx context.Context) (Credentials, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretName),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to get secret %s: %w", s.secretName, err)
	}
	if out.SecretString == nil {
		return Credentials{}, fmt.Errorf("secret %s has no string value", s.secretName)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse secret %s: %w", s.secretName, err)
	}
	if creds.APIKey == "" {
		return Credentials{}, ErrMissingAPIKey
	}
	return creds, nil
}
