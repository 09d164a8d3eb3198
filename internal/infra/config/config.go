// internal/infra/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SolanaRPCURL = "SOLANA_RPC_URL"
	Port         = "PORT"
	LogLevel     = "LOG_LEVEL"
	LogJSON      = "LOG_JSON"

	SecretBackend    = "SECRET_BACKEND"
	GCPProject       = "GCP_PROJECT"
	GCPCredentials   = "GOOGLE_APPLICATION_CREDENTIALS"
	AWSRegion        = "AWS_REGION"
	PayerKeySecret   = "PAYER_KEY_SECRET"
	CipherKeySecret  = "DECRYPTION_KEY_SECRET"
	StabilitySecret  = "STABILITY_KEY_SECRET"
	NFTStorageSecret = "NFT_STORAGE_KEY_SECRET"

	StabilityAPIHost  = "STABILITY_API_HOST"
	StabilityEngineID = "STABILITY_ENGINE_ID"
	NFTStorageURL     = "NFT_STORAGE_URL"
	IPFSGateway       = "IPFS_GATEWAY"

	ExecMaxRetries          = "EXEC_MAX_RETRIES"
	ExecDeployMaxRetries    = "EXEC_DEPLOY_MAX_RETRIES"
	ExecSkipConfirmation    = "EXEC_SKIP_CONFIRMATION"
	ExecMaxTimeoutSeconds   = "EXEC_MAX_TIMEOUT_SECONDS"
	ExecTargetConfirmations = "EXEC_TARGET_CONFIRMATIONS"
	ExecRequireFinalized    = "EXEC_REQUIRE_FINALIZED"

	LedgerPath      = "LEDGER_PATH"
	WorkDir         = "WORK_DIR"
	TopupReceiver   = "TOPUP_RECEIVER"
	ExposeErrorKind = "EXPOSE_ERROR_KIND"

	// EphemeralCipherKey lets a missing decryption key be replaced by a
	// per-process one. Off by default.
	EphemeralCipherKey = "EPHEMERAL_DECRYPTION_KEY"
)

var supportedSecretBackends = map[string]struct{}{
	"env": {},
	"gcp": {},
	"aws": {},
}

// Exec holds the submission defaults applied when a call does not override them.
type Exec struct {
	MaxRetries          int
	DeployMaxRetries    int
	SkipConfirmation    bool
	MaxTimeout          time.Duration
	TargetConfirmations uint64
	RequireFinalized    bool
}

type Config struct {
	SolanaRPCURL string
	Port         string
	LogLevel     string
	LogJSON      bool

	SecretBackend    string
	GCPProject       string
	GCPCredentials   string
	AWSRegion        string
	PayerKeySecret   string
	CipherKeySecret  string
	StabilitySecret  string
	NFTStorageSecret string

	StabilityAPIHost  string
	StabilityEngineID string
	NFTStorageURL     string
	IPFSGateway       string

	Exec Exec

	LedgerPath      string
	WorkDir         string
	TopupReceiver   bool
	ExposeErrorKind bool

	EphemeralCipherKey bool
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	return LoadFrom(v)
}

// LoadFrom applies defaults to v and reads the configuration from it.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetDefault(SolanaRPCURL, "https://api.devnet.solana.com")
	v.SetDefault(Port, "8080")
	v.SetDefault(LogLevel, "info")
	v.SetDefault(LogJSON, false)
	v.SetDefault(SecretBackend, "env")
	v.SetDefault(AWSRegion, "us-west-1")
	v.SetDefault(PayerKeySecret, "text_to_nft/private_key")
	v.SetDefault(CipherKeySecret, "text_to_nft/decryption_key")
	v.SetDefault(StabilitySecret, "text_to_nft/stability_api_key")
	v.SetDefault(NFTStorageSecret, "text_to_nft/nft_storage_api_key")
	v.SetDefault(StabilityAPIHost, "https://api.stability.ai")
	v.SetDefault(StabilityEngineID, "stable-diffusion-xl-1024-v1-0")
	v.SetDefault(NFTStorageURL, "https://api.nft.storage")
	v.SetDefault(IPFSGateway, "https://ipfs.io/ipfs/")
	v.SetDefault(ExecMaxRetries, 3)
	v.SetDefault(ExecDeployMaxRetries, 1)
	v.SetDefault(ExecSkipConfirmation, false)
	v.SetDefault(ExecMaxTimeoutSeconds, 60)
	v.SetDefault(ExecTargetConfirmations, 20)
	v.SetDefault(ExecRequireFinalized, true)
	v.SetDefault(LedgerPath, "text2nft.db")
	v.SetDefault(TopupReceiver, false)
	v.SetDefault(ExposeErrorKind, false)
	v.SetDefault(EphemeralCipherKey, false)

	cfg := &Config{
		SolanaRPCURL: strings.TrimSpace(v.GetString(SolanaRPCURL)),
		Port:         v.GetString(Port),
		LogLevel:     v.GetString(LogLevel),
		LogJSON:      v.GetBool(LogJSON),

		SecretBackend:    strings.ToLower(strings.TrimSpace(v.GetString(SecretBackend))),
		GCPProject:       v.GetString(GCPProject),
		GCPCredentials:   v.GetString(GCPCredentials),
		AWSRegion:        v.GetString(AWSRegion),
		PayerKeySecret:   v.GetString(PayerKeySecret),
		CipherKeySecret:  v.GetString(CipherKeySecret),
		StabilitySecret:  v.GetString(StabilitySecret),
		NFTStorageSecret: v.GetString(NFTStorageSecret),

		StabilityAPIHost:  v.GetString(StabilityAPIHost),
		StabilityEngineID: v.GetString(StabilityEngineID),
		NFTStorageURL:     v.GetString(NFTStorageURL),
		IPFSGateway:       v.GetString(IPFSGateway),

		Exec: Exec{
			MaxRetries:          v.GetInt(ExecMaxRetries),
			DeployMaxRetries:    v.GetInt(ExecDeployMaxRetries),
			SkipConfirmation:    v.GetBool(ExecSkipConfirmation),
			MaxTimeout:          time.Duration(v.GetInt(ExecMaxTimeoutSeconds)) * time.Second,
			TargetConfirmations: v.GetUint64(ExecTargetConfirmations),
			RequireFinalized:    v.GetBool(ExecRequireFinalized),
		},

		LedgerPath:      v.GetString(LedgerPath),
		WorkDir:         v.GetString(WorkDir),
		TopupReceiver:   v.GetBool(TopupReceiver),
		ExposeErrorKind: v.GetBool(ExposeErrorKind),

		EphemeralCipherKey: v.GetBool(EphemeralCipherKey),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, ok := supportedSecretBackends[c.SecretBackend]; !ok {
		return fmt.Errorf("config: unsupported %s %q (want env, gcp or aws)", SecretBackend, c.SecretBackend)
	}
	if c.SecretBackend == "gcp" && strings.TrimSpace(c.GCPProject) == "" {
		return fmt.Errorf("config: %s is required when %s=gcp", GCPProject, SecretBackend)
	}
	if c.SolanaRPCURL == "" {
		return fmt.Errorf("config: %s is empty", SolanaRPCURL)
	}
	if c.Exec.MaxRetries < 1 || c.Exec.DeployMaxRetries < 1 {
		return fmt.Errorf("config: retry counts must be at least 1")
	}
	if c.Exec.MaxTimeout < 0 {
		return fmt.Errorf("config: %s must not be negative", ExecMaxTimeoutSeconds)
	}
	return nil
}
