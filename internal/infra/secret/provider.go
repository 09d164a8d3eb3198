// internal/infra/secret/provider.go
package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrSecretNotConfigured = errors.New("secret: provider not configured")
	ErrSecretNameEmpty     = errors.New("secret: name is empty")
	ErrSecretNotFound      = errors.New("secret: secret not found")
	ErrSecretEmpty         = errors.New("secret: secret value is empty")
)

// Provider resolves a secret name to its value.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// EnvProvider reads secrets from environment variables. The name
// "text_to_nft/private_key" is looked up as TEXT_TO_NFT_PRIVATE_KEY.
type EnvProvider struct {
	lookup func(string) (string, bool)
}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

func (p *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	if p == nil || p.lookup == nil {
		return "", ErrSecretNotConfigured
	}
	key := EnvKey(name)
	if key == "" {
		return "", ErrSecretNameEmpty
	}
	v, ok := p.lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretEmpty, key)
	}
	return v, nil
}

// EnvKey maps a secret name to an environment variable name.
func EnvKey(name string) string {
	r := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	return strings.ToUpper(r.Replace(strings.TrimSpace(name)))
}
