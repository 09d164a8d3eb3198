package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text2nft/internal/domain/nft"
	"text2nft/internal/infra/cipher"
	"text2nft/internal/infra/solana"
)

var testBlockhash = types.NewAccount().PublicKey.ToBase58()

type fakeNetwork struct {
	mu       sync.Mutex
	accounts map[common.PublicKey][]byte
	sendErr  error
	sends    int
	feePayer []common.PublicKey
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{accounts: map[common.PublicKey][]byte{}}
}

func (f *fakeNetwork) AccountData(_ context.Context, address common.PublicKey) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.accounts[address]
	return data, ok, nil
}

func (f *fakeNetwork) GetMinimumBalanceForRentExemption(context.Context, uint64) (uint64, error) {
	return 1461600, nil
}

func (f *fakeNetwork) GetLatestBlockhash(context.Context) (string, error) {
	return testBlockhash, nil
}

func (f *fakeNetwork) SendTransaction(_ context.Context, tx types.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	f.feePayer = append(f.feePayer, tx.Message.Accounts[0])
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return fmt.Sprintf("sig-%d", f.sends), nil
}

func (f *fakeNetwork) GetSignatureStatuses(_ context.Context, signatures []string) ([]*solana.SignatureStatus, error) {
	out := make([]*solana.SignatureStatus, len(signatures))
	for i := range signatures {
		out[i] = &solana.SignatureStatus{ConfirmationStatus: "finalized"}
	}
	return out, nil
}

func (f *fakeNetwork) RequestAirdrop(context.Context, common.PublicKey, uint64) (string, error) {
	return "airdrop-sig", nil
}

type facadeFixture struct {
	uc    *NFTUsecase
	net   *fakeNetwork
	box   *cipher.Box
	payer types.Account
	ep    []string
}

func newFacade(t *testing.T, detail bool) *facadeFixture {
	t.Helper()
	key, err := cipher.GenerateKey()
	require.NoError(t, err)
	box, err := cipher.NewBox(key)
	require.NoError(t, err)

	f := &facadeFixture{net: newFakeNetwork(), box: box, payer: types.NewAccount()}
	creds, err := NewCredentials(f.payer, box)
	require.NoError(t, err)

	factory := func(endpoint string) solana.Network {
		f.ep = append(f.ep, endpoint)
		return f.net
	}
	f.uc = NewNFTUsecase(creds, factory, "https://default.example", ExecDefaults{
		MaxRetries:          3,
		DeployMaxRetries:    1,
		SkipConfirmation:    true,
		MaxTimeout:          time.Second,
		TargetConfirmations: 20,
		RequireFinalized:    true,
	}, detail)
	return f
}

func TestNewCredentialsRequiresBoth(t *testing.T) {
	_, err := NewCredentials(types.Account{}, nil)
	require.ErrorIs(t, err, ErrCredentialsIncomplete)
}

func TestWithDecryptedKeyZeroesPlaintext(t *testing.T) {
	f := newFacade(t, true)
	owner := types.NewAccount()
	tok, err := f.box.Encrypt(owner.PrivateKey)
	require.NoError(t, err)

	creds, err := NewCredentials(f.payer, f.box)
	require.NoError(t, err)

	var seen []byte
	err = creds.WithDecryptedKey(tok, func(key []byte) error {
		require.Equal(t, []byte(owner.PrivateKey), key)
		seen = key
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, make([]byte, len(seen)), seen)

	err = creds.WithDecryptedKey("garbage", func([]byte) error { return nil })
	require.Error(t, err)
	assert.Equal(t, nft.KindCrypto, nft.KindOf(err))
}

func TestDeploySuccess(t *testing.T) {
	f := newFacade(t, true)

	res, err := f.uc.Deploy(context.Background(), DeployInput{Name: "Cat", Symbol: "CAT"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.NotEmpty(t, res.Contract)
	require.NotNil(t, res.Receipt)
	assert.Equal(t, "sig-1", res.Receipt.Signature)
	assert.Equal(t, nft.ConfirmationSkipped, res.Receipt.Confirmation)
	assert.Equal(t, []string{"https://default.example"}, f.ep)
	assert.Equal(t, f.payer.PublicKey, f.net.feePayer[0])
}

func TestDeployUsesSingleAttemptByDefault(t *testing.T) {
	f := newFacade(t, true)
	f.net.sendErr = errors.New("blockhash not found")

	res, err := f.uc.Deploy(context.Background(), DeployInput{Name: "Cat", Symbol: "CAT"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, nft.KindSubmission, res.ErrorKind)
	assert.Contains(t, res.Message, "blockhash not found")
	assert.Empty(t, res.Contract)
	assert.Equal(t, 1, f.net.sends)
}

func TestExecOverrides(t *testing.T) {
	f := newFacade(t, false)
	f.net.sendErr = errors.New("node is behind")
	retries := 2

	res, err := f.uc.Topup(context.Background(), TopupInput{
		CallOptions: CallOptions{Endpoint: "https://other.example", Exec: &ExecOverrides{MaxRetries: &retries}},
		To:          types.NewAccount().PublicKey.ToBase58(),
	})
	require.Error(t, err)
	assert.Equal(t, 2, f.net.sends)
	assert.Equal(t, []string{"https://other.example"}, f.ep)

	// detail off: only the status leaves the facade
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Empty(t, res.ErrorKind)
	assert.Empty(t, res.Message)
}

func TestTopupSuccess(t *testing.T) {
	f := newFacade(t, true)
	amount := uint64(5000)

	res, err := f.uc.Topup(context.Background(), TopupInput{To: types.NewAccount().PublicKey.ToBase58(), Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "sig-1", res.Result)
}

func TestMintRejectsBadDestination(t *testing.T) {
	f := newFacade(t, true)

	res, err := f.uc.Mint(context.Background(), MintInput{
		Contract:    types.NewAccount().PublicKey.ToBase58(),
		Destination: "not-an-address",
		Link:        "https://ipfs.io/ipfs/x",
	})
	require.Error(t, err)
	assert.Equal(t, nft.KindValidation, res.ErrorKind)
	assert.Zero(t, f.net.sends)
}

func TestUpdateTokenMetadata(t *testing.T) {
	f := newFacade(t, true)
	creator := types.NewAccount().PublicKey.ToBase58()

	res, err := f.uc.UpdateTokenMetadata(context.Background(), UpdateInput{
		Contract: types.NewAccount().PublicKey.ToBase58(),
		Link:     "https://ipfs.io/ipfs/y",
		Name:     "Cat",
		Symbol:   "CAT",
		Creators: []string{creator},
		Verified: []int{0},
		Shares:   []int{100},
	})
	require.NoError(t, err)
	assert.Equal(t, "sig-1", res.Result)

	_, err = f.uc.UpdateTokenMetadata(context.Background(), UpdateInput{
		Contract: types.NewAccount().PublicKey.ToBase58(),
		Creators: []string{creator},
		Shares:   []int{300},
	})
	require.Error(t, err)
	assert.Equal(t, nft.KindValidation, nft.KindOf(err))
	assert.Equal(t, 1, f.net.sends)
}

func TestSend(t *testing.T) {
	f := newFacade(t, true)
	owner := types.NewAccount()
	mint := types.NewAccount().PublicKey
	dest := types.NewAccount().PublicKey

	fromATA, _, err := common.FindAssociatedTokenAddress(owner.PublicKey, mint)
	require.NoError(t, err)
	f.net.accounts[fromATA] = make([]byte, 165)

	tok, err := f.box.Encrypt(owner.PrivateKey)
	require.NoError(t, err)

	res, err := f.uc.Send(context.Background(), SendInput{
		Contract:            mint.ToBase58(),
		Sender:              owner.PublicKey.ToBase58(),
		Destination:         dest.ToBase58(),
		EncryptedPrivateKey: tok,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, f.payer.PublicKey, f.net.feePayer[0])

	other := types.NewAccount()
	tok, err = f.box.Encrypt(other.PrivateKey)
	require.NoError(t, err)
	_, err = f.uc.Send(context.Background(), SendInput{
		Contract:            mint.ToBase58(),
		Sender:              owner.PublicKey.ToBase58(),
		Destination:         dest.ToBase58(),
		EncryptedPrivateKey: tok,
	})
	require.ErrorIs(t, err, nft.ErrOwnerMismatch)
	assert.Equal(t, nft.KindPrecondition, nft.KindOf(err))
}

func TestBurnOwnerPaysFee(t *testing.T) {
	f := newFacade(t, true)
	owner := types.NewAccount()
	mint := types.NewAccount().PublicKey

	ata, _, err := common.FindAssociatedTokenAddress(owner.PublicKey, mint)
	require.NoError(t, err)
	f.net.accounts[ata] = make([]byte, 165)

	tok, err := f.box.Encrypt(owner.PrivateKey)
	require.NoError(t, err)

	res, err := f.uc.Burn(context.Background(), BurnInput{
		Contract:            mint.ToBase58(),
		Owner:               owner.PublicKey.ToBase58(),
		EncryptedPrivateKey: tok,
	})
	require.NoError(t, err)
	assert.Equal(t, "sig-1", res.Result)
	assert.Equal(t, owner.PublicKey, f.net.feePayer[0])
}

func TestBurnBadToken(t *testing.T) {
	f := newFacade(t, true)

	res, err := f.uc.Burn(context.Background(), BurnInput{
		Contract:            types.NewAccount().PublicKey.ToBase58(),
		Owner:               types.NewAccount().PublicKey.ToBase58(),
		EncryptedPrivateKey: "AAAA",
	})
	require.Error(t, err)
	assert.Equal(t, nft.KindCrypto, res.ErrorKind)
	assert.Zero(t, f.net.sends)
}

func TestWalletAndAirdrop(t *testing.T) {
	f := newFacade(t, true)

	w := f.uc.Wallet()
	assert.Equal(t, http.StatusOK, w.Status)
	assert.Len(t, w.PrivateKey, 64)
	_, err := solana.ParseAddress(w.Address)
	require.NoError(t, err)

	res, err := f.uc.Airdrop(context.Background(), AirdropInput{Address: w.Address, Lamports: 1_000_000_000})
	require.NoError(t, err)
	assert.Equal(t, "airdrop-sig", res.Result)
}

func TestEncryptKeyRoundTrip(t *testing.T) {
	f := newFacade(t, true)
	owner := types.NewAccount()
	raw, err := json.Marshal(solana.KeypairInts(owner))
	require.NoError(t, err)

	tok, err := f.uc.EncryptKey(string(raw))
	require.NoError(t, err)
	plain, err := f.box.Decrypt(tok)
	require.NoError(t, err)
	assert.Equal(t, []byte(owner.PrivateKey), plain)
}

func TestUninitializedFacade(t *testing.T) {
	var uc *NFTUsecase
	_, err := uc.Deploy(context.Background(), DeployInput{})
	require.Error(t, err)
	assert.Equal(t, nft.KindInternal, nft.KindOf(err))
}

func TestEncryptKeyRejectsGarbage(t *testing.T) {
	f := newFacade(t, true)
	_, err := f.uc.EncryptKey("[1 2 3]")
	require.Error(t, err)
	assert.Equal(t, nft.KindValidation, nft.KindOf(err))
}
