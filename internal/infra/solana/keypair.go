// internal/infra/solana/keypair.go
package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
)

var (
	ErrKeypairEmpty      = errors.New("solana: keypair is empty")
	ErrKeypairInvalid    = errors.New("solana: invalid keypair")
	ErrAddressInvalid    = errors.New("solana: invalid address")
	ErrPrivateKeyInvalid = errors.New("solana: invalid private key")
)

// ParseAddress decodes a base58 public key and checks it is 32 bytes.
// common.PublicKeyFromString silently zero-fills bad input.
func ParseAddress(s string) (common.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.PublicKey{}, fmt.Errorf("%w: empty", ErrAddressInvalid)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("%w: %q: %v", ErrAddressInvalid, maskShort(s), err)
	}
	if len(b) != 32 {
		return common.PublicKey{}, fmt.Errorf("%w: %q decodes to %d bytes", ErrAddressInvalid, maskShort(s), len(b))
	}
	return common.PublicKeyFromBytes(b), nil
}

// ParsePrivateKey rebuilds an account from a 64-byte secret key or a
// 32-byte seed.
func ParsePrivateKey(raw []byte) (types.Account, error) {
	switch len(raw) {
	case ed25519.PrivateKeySize:
		derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !bytes.Equal(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
			return types.Account{}, fmt.Errorf("%w: public half does not match seed", ErrPrivateKeyInvalid)
		}
		acc, err := types.AccountFromBytes(derived)
		if err != nil {
			return types.Account{}, fmt.Errorf("%w: %v", ErrPrivateKeyInvalid, err)
		}
		return acc, nil
	case ed25519.SeedSize:
		acc, err := types.AccountFromBytes(ed25519.NewKeyFromSeed(raw))
		if err != nil {
			return types.Account{}, fmt.Errorf("%w: %v", ErrPrivateKeyInvalid, err)
		}
		return acc, nil
	default:
		return types.Account{}, fmt.Errorf("%w: want 32 or 64 bytes, got %d", ErrPrivateKeyInvalid, len(raw))
	}
}

// ParseKeypair accepts the two text forms keys are stored in:
// a solana-keygen JSON array ([u8;64]) or a base58 secret key.
func ParseKeypair(text string) (types.Account, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return types.Account{}, ErrKeypairEmpty
	}
	if strings.HasPrefix(s, "[") {
		b, err := decodeKeypairJSON([]byte(s))
		if err != nil {
			return types.Account{}, err
		}
		return ParsePrivateKey(b)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return types.Account{}, fmt.Errorf("%w: not base58: %v", ErrKeypairInvalid, err)
	}
	return ParsePrivateKey(b)
}

// decodeKeypairJSON decodes a JSON int array, checking every entry is a byte.
func decodeKeypairJSON(data []byte) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("%w: unmarshal keypair json: %v", ErrKeypairInvalid, err)
	}
	b := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: byte out of range at %d: %d", ErrKeypairInvalid, i, v)
		}
		b[i] = byte(v)
	}
	return b, nil
}

// KeypairInts renders the 64-byte secret key as the JSON int array form.
func KeypairInts(acc types.Account) []int {
	out := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		out[i] = int(b)
	}
	return out
}

// dedupeSigners drops repeated public keys, keeping the first occurrence.
func dedupeSigners(signers ...types.Account) []types.Account {
	seen := make(map[common.PublicKey]struct{}, len(signers))
	out := make([]types.Account, 0, len(signers))
	for _, s := range signers {
		if _, ok := seen[s.PublicKey]; ok {
			continue
		}
		seen[s.PublicKey] = struct{}{}
		out = append(out, s)
	}
	return out
}

func maskShort(s string) string {
	t := strings.TrimSpace(s)
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
