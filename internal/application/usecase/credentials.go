package usecase

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"

	"text2nft/internal/domain/nft"
	"text2nft/internal/infra/cipher"
	"text2nft/internal/infra/solana"
)

var ErrCredentialsIncomplete = errors.New("credentials: payer keypair and cipher are required")

// Credentials is the signing material one facade instance owns: the payer
// keypair and the cipher for caller-supplied private keys.
type Credentials struct {
	payer types.Account
	box   *cipher.Box
}

func NewCredentials(payer types.Account, box *cipher.Box) (*Credentials, error) {
	if box == nil || len(payer.PrivateKey) == 0 {
		return nil, ErrCredentialsIncomplete
	}
	return &Credentials{payer: payer, box: box}, nil
}

func (c *Credentials) Payer() types.Account { return c.payer }

// EncryptKey turns a keypair in JSON array or base58 form into a token the
// send and burn operations accept.
func (c *Credentials) EncryptKey(keypair string) (string, error) {
	acc, err := solana.ParseKeypair(keypair)
	if err != nil {
		return "", nft.E("encrypt", nft.KindValidation, err)
	}
	tok, err := c.box.Encrypt(acc.PrivateKey)
	if err != nil {
		return "", nft.E("encrypt", nft.KindCrypto, err)
	}
	return tok, nil
}

// WithDecryptedKey decrypts token and hands the plaintext to fn. The
// plaintext is zeroed when fn returns.
func (c *Credentials) WithDecryptedKey(token string, fn func(key []byte) error) error {
	key, err := c.box.Decrypt(token)
	if err != nil {
		return nft.E("decrypt", nft.KindCrypto, fmt.Errorf("private key: %w", err))
	}
	defer clear(key)
	return fn(key)
}
