// internal/infra/secret/aws.go
package secret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

const defaultJSONKey = "key"

// DefaultKeyMap names the JSON field holding the value of each known secret.
var DefaultKeyMap = map[string]string{
	"text_to_nft/stability_api_key":   "STABILITY_API_KEY",
	"text_to_nft/stability_api_key2":  "STABILITY_API_KEY",
	"text_to_nft/nft_storage_api_key": "NFT_STORAGE_API_KEY",
}

type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSProvider reads AWS Secrets Manager secrets. A JSON object secret is
// resolved through KeyMap (field "key" when unmapped); other strings are
// returned verbatim.
type AWSProvider struct {
	api    secretsManagerAPI
	KeyMap map[string]string
}

func NewAWSProvider(ctx context.Context, region string) (*AWSProvider, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if r := strings.TrimSpace(region); r != "" {
		opts = append(opts, awsconfig.WithRegion(r))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %v", ErrSecretNotConfigured, err)
	}
	return &AWSProvider{api: secretsmanager.NewFromConfig(cfg), KeyMap: DefaultKeyMap}, nil
}

func (p *AWSProvider) GetSecret(ctx context.Context, name string) (string, error) {
	if p == nil || p.api == nil {
		return "", ErrSecretNotConfigured
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return "", ErrSecretNameEmpty
	}

	out, err := p.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(n)})
	if err != nil {
		var nf *smtypes.ResourceNotFoundException
		if errors.As(err, &nf) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, n)
		}
		return "", fmt.Errorf("secret: get %s: %w", n, err)
	}
	raw := strings.TrimSpace(aws.ToString(out.SecretString))
	if raw == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretEmpty, n)
	}

	if !strings.HasPrefix(raw, "{") {
		return raw, nil
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return "", fmt.Errorf("secret: %s: decode json: %w", n, err)
	}
	key, ok := p.KeyMap[n]
	if !ok {
		key = defaultJSONKey
	}
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s has no field %q", ErrSecretNotFound, n, key)
	}
	s, ok := v.(string)
	if !ok {
		// keypair arrays and numbers are handed back as JSON text
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("secret: %s: encode field: %w", n, err)
		}
		s = string(b)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretEmpty, n)
	}
	return s, nil
}
