// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"text2nft/internal/adapters/in/http/api"
	"text2nft/internal/adapters/in/http/handlers"
	usecase "text2nft/internal/application/usecase"
	"text2nft/internal/infra/cipher"
	"text2nft/internal/infra/config"
	"text2nft/internal/infra/ledger"
	"text2nft/internal/infra/nftstorage"
	"text2nft/internal/infra/secret"
	"text2nft/internal/infra/solana"
	"text2nft/internal/infra/stability"
	"text2nft/internal/platform/logging"
)

// Container holds the wired application for the binaries.
type Container struct {
	Config   *config.Config
	NFT      *usecase.NFTUsecase
	Text2NFT *usecase.Text2NFTUsecase

	cleanup []func() error
}

// Close releases the ledger and secret clients.
func (c *Container) Close() {
	for i := len(c.cleanup) - 1; i >= 0; i-- {
		if err := c.cleanup[i](); err != nil {
			log.WithError(err).Warn("[container] close")
		}
	}
}

// RouterDeps returns the handler set for the HTTP API.
func (c *Container) RouterDeps() api.Deps {
	return api.Deps{
		NFT:      handlers.NewNFTHandler(c.NFT, c.Config.ExposeErrorKind),
		Text2NFT: handlers.NewText2NFTHandler(c.Text2NFT, c.Config.ExposeErrorKind),
	}
}

// ========================================
// NewContainer
// ========================================

func NewContainer(ctx context.Context) (*Container, error) {
	// 1. Load config and set up logging
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel, cfg.LogJSON)

	// 2. Secret backend
	provider, closeFn, err := NewSecretProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c, err := Build(ctx, cfg, provider)
	if err != nil {
		if closeFn != nil {
			_ = closeFn()
		}
		return nil, err
	}
	if closeFn != nil {
		c.cleanup = append([]func() error{closeFn}, c.cleanup...)
	}
	return c, nil
}

// NewSecretProvider opens the backend named by SECRET_BACKEND.
func NewSecretProvider(ctx context.Context, cfg *config.Config) (secret.Provider, func() error, error) {
	switch cfg.SecretBackend {
	case "gcp":
		p, err := secret.NewGCPProvider(ctx, cfg.GCPProject, cfg.GCPCredentials)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("project", cfg.GCPProject).Info("[container] Secret Manager (gcp) connected")
		return p, p.Close, nil
	case "aws":
		p, err := secret.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("region", cfg.AWSRegion).Info("[container] Secrets Manager (aws) connected")
		return p, nil, nil
	default:
		log.Info("[container] secrets read from environment")
		return secret.NewEnvProvider(), nil, nil
	}
}

// Build wires every component from cfg and provider.
func Build(ctx context.Context, cfg *config.Config, provider secret.Provider) (*Container, error) {
	c := &Container{Config: cfg}

	// 1. Payer keypair (required)
	payerText, err := provider.GetSecret(ctx, cfg.PayerKeySecret)
	if err != nil {
		return nil, fmt.Errorf("load payer key: %w", err)
	}
	payer, err := solana.ParseKeypair(payerText)
	if err != nil {
		return nil, fmt.Errorf("parse payer key: %w", err)
	}
	log.WithField("payer", payer.PublicKey.ToBase58()).Info("[container] payer keypair loaded")

	// 2. Cipher key; a missing key is fatal unless ephemeral keys are enabled
	cipherKey, err := provider.GetSecret(ctx, cfg.CipherKeySecret)
	switch {
	case errors.Is(err, secret.ErrSecretNotFound) && cfg.EphemeralCipherKey:
		cipherKey, err = cipher.GenerateKey()
		if err != nil {
			return nil, err
		}
		log.Warn("[container] no decryption key configured; using an ephemeral key (tokens will not survive a restart)")
	case err != nil:
		return nil, fmt.Errorf("load decryption key: %w", err)
	}
	box, err := cipher.NewBox(cipherKey)
	if err != nil {
		return nil, fmt.Errorf("decryption key: %w", err)
	}

	creds, err := usecase.NewCredentials(payer, box)
	if err != nil {
		return nil, err
	}

	// 3. Facade
	c.NFT = usecase.NewNFTUsecase(
		creds,
		func(endpoint string) solana.Network { return solana.NewRPCNetwork(endpoint) },
		cfg.SolanaRPCURL,
		usecase.ExecDefaults{
			MaxRetries:          cfg.Exec.MaxRetries,
			DeployMaxRetries:    cfg.Exec.DeployMaxRetries,
			SkipConfirmation:    cfg.Exec.SkipConfirmation,
			MaxTimeout:          cfg.Exec.MaxTimeout,
			TargetConfirmations: cfg.Exec.TargetConfirmations,
			RequireFinalized:    cfg.Exec.RequireFinalized,
		},
		cfg.ExposeErrorKind,
	)

	// 4. Pipeline collaborators; missing API keys only disable their calls
	stabilityKey := optionalSecret(ctx, provider, cfg.StabilitySecret)
	storageKey := optionalSecret(ctx, provider, cfg.NFTStorageSecret)

	runs, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return nil, err
	}
	c.cleanup = append(c.cleanup, runs.Close)
	log.WithField("path", cfg.LedgerPath).Info("[container] run ledger opened")

	c.Text2NFT = usecase.NewText2NFTUsecase(
		stability.NewClient(cfg.StabilityAPIHost, cfg.StabilityEngineID, stabilityKey),
		nftstorage.NewHTTPUploader(cfg.NFTStorageURL, cfg.IPFSGateway, storageKey),
		runs,
		c.NFT,
		usecase.Text2NFTOptions{
			WorkDir:       cfg.WorkDir,
			TopupReceiver: cfg.TopupReceiver,
			Endpoint:      cfg.SolanaRPCURL,
		},
	)

	return c, nil
}

func optionalSecret(ctx context.Context, provider secret.Provider, name string) string {
	v, err := provider.GetSecret(ctx, name)
	if err != nil {
		log.WithError(err).WithField("secret", name).Warn("[container] secret unavailable")
		return ""
	}
	return v
}
