// internal/infra/secret/gcp.go
package secret

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GCPProvider reads the latest version of a Secret Manager secret.
type GCPProvider struct {
	Client    *secretmanager.Client
	ProjectID string
}

// NewGCPProvider connects with ADC, or with credentialsFile when set.
func NewGCPProvider(ctx context.Context, projectID, credentialsFile string) (*GCPProvider, error) {
	pid := strings.TrimSpace(projectID)
	if pid == "" {
		return nil, fmt.Errorf("%w: projectID is empty", ErrSecretNotConfigured)
	}

	var opts []option.ClientOption
	if cf := strings.TrimSpace(credentialsFile); cf != "" {
		opts = append(opts, option.WithCredentialsFile(cf))
	}

	c, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	return &GCPProvider{Client: c, ProjectID: pid}, nil
}

func (p *GCPProvider) GetSecret(ctx context.Context, name string) (string, error) {
	if p == nil || p.Client == nil {
		return "", ErrSecretNotConfigured
	}
	version, err := secretVersionName(p.ProjectID, name)
	if err != nil {
		return "", err
	}

	res, err := p.Client.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{Name: version})
	if err != nil {
		return "", mapGRPCError(name, err)
	}
	if res == nil || res.Payload == nil {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}

	s := strings.TrimSpace(string(res.Payload.Data))
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretEmpty, name)
	}
	return s, nil
}

func (p *GCPProvider) Close() error {
	if p == nil || p.Client == nil {
		return nil
	}
	return p.Client.Close()
}

// secretVersionName accepts a full version path as-is; any other name is
// turned into a secret id (Secret Manager ids cannot contain "/").
func secretVersionName(projectID, name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", ErrSecretNameEmpty
	}
	if strings.HasPrefix(n, "projects/") {
		return n, nil
	}
	id := strings.NewReplacer("/", "_", ".", "_").Replace(n)
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, id), nil
}

func mapGRPCError(name string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %s: %v", ErrSecretNotConfigured, name, err)
	default:
		return fmt.Errorf("secret: access %s: %w", name, err)
	}
}
