package config

import (
	"context"
	"os"
)

// EnvVarProvider resolves secrets straight from OS environment variables.
// It is the SecretProvider used in local development, where values like the
// database URL or the PayPal secret come from the shell or a .env file and
// SSM Parameter Store is never contacted.
type EnvVarProvider struct{}

// NewEnvVarProvider creates an EnvVarProvider.
func NewEnvVarProvider() *EnvVarProvider {
	return &EnvVarProvider{}
}

// GetParametersBatch looks each key up with os.LookupEnv. Keys absent from
// the environment are left out of the result rather than reported as errors;
// the loader decides whether a missing binding is fatal.
//
// The context is accepted only to satisfy SecretProvider; environment lookups
// cannot block.
func (p *EnvVarProvider) GetParametersBatch(_ context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := os.LookupEnv(key); ok {
			result[key] = val
		}
	}
	return result, nil
}
