package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text2nft/internal/adapters/in/http/api"
	"text2nft/internal/infra/cipher"
	"text2nft/internal/infra/config"
	"text2nft/internal/infra/secret"
	"text2nft/internal/infra/solana"
)

type mapProvider map[string]string

func (m mapProvider) GetSecret(_ context.Context, name string) (string, error) {
	v, ok := m[name]
	if !ok {
		return "", secret.ErrSecretNotFound
	}
	return v, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	v.Set(config.LedgerPath, filepath.Join(t.TempDir(), "runs.db"))
	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)
	return cfg
}

func payerJSON(t *testing.T) (types.Account, string) {
	t.Helper()
	acc := types.NewAccount()
	b, err := json.Marshal(solana.KeypairInts(acc))
	require.NoError(t, err)
	return acc, string(b)
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t)
	acc, kp := payerJSON(t)
	key, err := cipher.GenerateKey()
	require.NoError(t, err)

	c, err := Build(context.Background(), cfg, mapProvider{
		cfg.PayerKeySecret:  kp,
		cfg.CipherKeySecret: key,
	})
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.NFT)
	require.NotNil(t, c.Text2NFT)

	// keys encrypted with the configured cipher key decrypt in the facade
	box, err := cipher.NewBox(key)
	require.NoError(t, err)
	tok, err := c.NFT.EncryptKey(kp)
	require.NoError(t, err)
	plain, err := box.Decrypt(tok)
	require.NoError(t, err)
	assert.Equal(t, []byte(acc.PrivateKey), plain)

	rec := httptest.NewRecorder()
	api.NewRouter(c.RouterDeps()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/text2nft/runs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildMissingCipherKey(t *testing.T) {
	cfg := testConfig(t)
	_, kp := payerJSON(t)

	_, err := Build(context.Background(), cfg, mapProvider{cfg.PayerKeySecret: kp})
	require.ErrorIs(t, err, secret.ErrSecretNotFound)

	cfg.EphemeralCipherKey = true
	c, err := Build(context.Background(), cfg, mapProvider{cfg.PayerKeySecret: kp})
	require.NoError(t, err)
	defer c.Close()
	require.NotNil(t, c.NFT)
}

func TestBuildRequiresPayer(t *testing.T) {
	cfg := testConfig(t)
	_, err := Build(context.Background(), cfg, mapProvider{})
	require.ErrorIs(t, err, secret.ErrSecretNotFound)

	_, err = Build(context.Background(), cfg, mapProvider{cfg.PayerKeySecret: "[1,2,3]"})
	require.ErrorIs(t, err, solana.ErrPrivateKeyInvalid)
}
