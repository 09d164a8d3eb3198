package solana

import (
	"encoding/json"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func TestParseKeypairForms(t *testing.T) {
	acc := types.NewAccount()

	fromB58, err := ParseKeypair(base58.Encode(acc.PrivateKey))
	require.NoError(t, err)
	require.Equal(t, acc.PublicKey, fromB58.PublicKey)

	js, err := json.Marshal(KeypairInts(acc))
	require.NoError(t, err)
	fromJSON, err := ParseKeypair(" " + string(js) + "\n")
	require.NoError(t, err)
	require.Equal(t, acc.PublicKey, fromJSON.PublicKey)

	fromSeed, err := ParsePrivateKey(acc.PrivateKey.Seed())
	require.NoError(t, err)
	require.Equal(t, acc.PublicKey, fromSeed.PublicKey)
}

func TestParseKeypairErrors(t *testing.T) {
	_, err := ParseKeypair("")
	require.ErrorIs(t, err, ErrKeypairEmpty)

	_, err = ParseKeypair("[1,2,300]")
	require.ErrorIs(t, err, ErrKeypairInvalid)

	_, err = ParseKeypair("0OIl")
	require.ErrorIs(t, err, ErrKeypairInvalid)

	_, err = ParsePrivateKey(make([]byte, 10))
	require.ErrorIs(t, err, ErrPrivateKeyInvalid)
}

func TestParsePrivateKeyRejectsForeignPublicHalf(t *testing.T) {
	owner := types.NewAccount()
	other := types.NewAccount()

	forged := append(append([]byte{}, other.PrivateKey.Seed()...), owner.PublicKey.Bytes()...)
	_, err := ParsePrivateKey(forged)
	require.ErrorIs(t, err, ErrPrivateKeyInvalid)

	_, err = ParseKeypair(base58.Encode(forged))
	require.ErrorIs(t, err, ErrPrivateKeyInvalid)

	acc, err := ParsePrivateKey(owner.PrivateKey)
	require.NoError(t, err)
	require.Equal(t, owner.PublicKey, acc.PublicKey)
}

func TestParseAddress(t *testing.T) {
	acc := types.NewAccount()
	pk, err := ParseAddress(acc.PublicKey.ToBase58())
	require.NoError(t, err)
	require.Equal(t, acc.PublicKey, pk)

	_, err = ParseAddress("3mJr7AoUXx2Wqd")
	require.ErrorIs(t, err, ErrAddressInvalid)

	_, err = ParseAddress("  ")
	require.ErrorIs(t, err, ErrAddressInvalid)
}

func TestDedupeSigners(t *testing.T) {
	a, b := types.NewAccount(), types.NewAccount()
	out := dedupeSigners(a, b, a, b)
	require.Len(t, out, 2)
	require.Equal(t, a.PublicKey, out[0].PublicKey)
}

func TestMaskShort(t *testing.T) {
	require.Equal(t, "abc", maskShort("abc"))
	require.Equal(t, "9xQe***VfRz", maskShort("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVfRz"))
}
