package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	log "github.com/sirupsen/logrus"

	"text2nft/internal/domain/nft"
	"text2nft/internal/infra/solana"
)

// ============================================================
// Inputs
// ============================================================

// ExecOverrides replaces individual submission defaults for one call.
type ExecOverrides struct {
	MaxRetries        *int    `json:"max_retries,omitempty"`
	SkipConfirmation  *bool   `json:"skip_confirmation,omitempty"`
	MaxTimeoutSeconds *int    `json:"max_timeout,omitempty"`
	Target            *uint64 `json:"target,omitempty"`
	Finalized         *bool   `json:"finalized,omitempty"`
}

// CallOptions are accepted by every chain operation.
type CallOptions struct {
	Endpoint string         `json:"api_endpoint,omitempty"`
	Exec     *ExecOverrides `json:"exec,omitempty"`
}

type DeployInput struct {
	CallOptions
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Fee    int16  `json:"fee"`
}

type TopupInput struct {
	CallOptions
	To     string  `json:"to"`
	Amount *uint64 `json:"amount,omitempty"`
}

type MintInput struct {
	CallOptions
	Contract    string  `json:"contract_key"`
	Destination string  `json:"dest_key"`
	Link        string  `json:"link"`
	Supply      *uint64 `json:"supply,omitempty"`
	NoSupplyCap bool    `json:"no_supply_cap,omitempty"`
}

type UpdateInput struct {
	CallOptions
	Contract string   `json:"contract_key"`
	Link     string   `json:"link"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Creators []string `json:"creators"`
	Verified []int    `json:"verified,omitempty"`
	Shares   []int    `json:"share,omitempty"`
	Fee      int16    `json:"fee"`
}

type SendInput struct {
	CallOptions
	Contract            string `json:"contract_key"`
	Sender              string `json:"sender_key"`
	Destination         string `json:"dest_key"`
	EncryptedPrivateKey string `json:"encrypted_private_key"`
}

type BurnInput struct {
	CallOptions
	Contract            string `json:"contract_key"`
	Owner               string `json:"owner_key"`
	EncryptedPrivateKey string `json:"encrypted_private_key"`
}

type AirdropInput struct {
	CallOptions
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
}

// ============================================================
// NFTUsecase
// ============================================================

// NetworkFactory opens a connection to a cluster endpoint.
type NetworkFactory func(endpoint string) solana.Network

// ExecDefaults are the submission settings used when a call has no overrides.
type ExecDefaults struct {
	MaxRetries          int
	DeployMaxRetries    int
	SkipConfirmation    bool
	MaxTimeout          time.Duration
	TargetConfirmations uint64
	RequireFinalized    bool
}

// NFTUsecase is the facade over the transaction builder and the
// submission engine. Every operation opens its own network connection.
type NFTUsecase struct {
	creds           *Credentials
	newNetwork      NetworkFactory
	defaultEndpoint string
	exec            ExecDefaults
	exposeDetail    bool
	engineOpts      []solana.EngineOption
}

func NewNFTUsecase(
	creds *Credentials,
	newNetwork NetworkFactory,
	defaultEndpoint string,
	exec ExecDefaults,
	exposeDetail bool,
	engineOpts ...solana.EngineOption,
) *NFTUsecase {
	return &NFTUsecase{
		creds:           creds,
		newNetwork:      newNetwork,
		defaultEndpoint: defaultEndpoint,
		exec:            exec,
		exposeDetail:    exposeDetail,
		engineOpts:      engineOpts,
	}
}

func (u *NFTUsecase) ready() error {
	if u == nil || u.creds == nil || u.newNetwork == nil {
		return nft.E("facade", nft.KindInternal, fmt.Errorf("nft usecase is not properly initialized"))
	}
	return nil
}

func (u *NFTUsecase) detail() bool { return u != nil && u.exposeDetail }

func (u *NFTUsecase) connect(opts CallOptions) (*solana.Builder, *solana.Engine) {
	ep := strings.TrimSpace(opts.Endpoint)
	if ep == "" {
		ep = u.defaultEndpoint
	}
	net := u.newNetwork(ep)
	return solana.NewBuilder(net), solana.NewEngine(net, u.engineOpts...)
}

func (u *NFTUsecase) execOptions(o *ExecOverrides, retries int) solana.ExecOptions {
	opts := solana.ExecOptions{
		MaxRetries:          retries,
		SkipConfirmation:    u.exec.SkipConfirmation,
		MaxTimeout:          u.exec.MaxTimeout,
		TargetConfirmations: u.exec.TargetConfirmations,
		RequireFinalized:    u.exec.RequireFinalized,
	}
	if o == nil {
		return opts
	}
	if o.MaxRetries != nil {
		opts.MaxRetries = *o.MaxRetries
	}
	if o.SkipConfirmation != nil {
		opts.SkipConfirmation = *o.SkipConfirmation
	}
	if o.MaxTimeoutSeconds != nil {
		opts.MaxTimeout = time.Duration(*o.MaxTimeoutSeconds) * time.Second
	}
	if o.Target != nil {
		opts.TargetConfirmations = *o.Target
	}
	if o.Finalized != nil {
		opts.RequireFinalized = *o.Finalized
	}
	return opts
}

func (u *NFTUsecase) fail(op string, err error) {
	log.WithFields(log.Fields{"op": op, "kind": nft.KindOf(err)}).WithError(err).Warn("[facade] operation failed")
}

// Deploy creates a new mint and its metadata account.
func (u *NFTUsecase) Deploy(ctx context.Context, in DeployInput) (nft.DeployResult, error) {
	res, err := u.deploy(ctx, in)
	if err != nil {
		u.fail("deploy", err)
		return nft.DeployResult{Envelope: nft.Respond(err, u.detail())}, err
	}
	res.Envelope = nft.Respond(nil, u.detail())
	return res, nil
}

func (u *NFTUsecase) deploy(ctx context.Context, in DeployInput) (nft.DeployResult, error) {
	if err := u.ready(); err != nil {
		return nft.DeployResult{}, err
	}
	b, e := u.connect(in.CallOptions)
	tx, signers, contract, err := b.Deploy(ctx, u.creds.Payer(), in.Name, in.Symbol, in.Fee)
	if err != nil {
		return nft.DeployResult{}, err
	}
	receipt, err := e.Execute(ctx, tx, signers, u.execOptions(in.Exec, u.exec.DeployMaxRetries))
	if err != nil {
		return nft.DeployResult{}, err
	}
	log.WithFields(log.Fields{"contract": contract, "signature": receipt.Signature}).Info("[facade] deploy OK")
	return nft.DeployResult{Contract: contract, Receipt: receipt}, nil
}

// Topup sends native currency to a wallet for fees.
func (u *NFTUsecase) Topup(ctx context.Context, in TopupInput) (nft.TxResult, error) {
	return u.run(ctx, "topup", in.CallOptions, func(b *solana.Builder) (solana.Tx, []types.Account, error) {
		return b.Topup(ctx, u.creds.Payer(), in.To, in.Amount)
	})
}

// Mint issues the token to a destination and points it at link.
func (u *NFTUsecase) Mint(ctx context.Context, in MintInput) (nft.TxResult, error) {
	supply := in.Supply
	switch {
	case in.NoSupplyCap:
		supply = nil
	case supply == nil:
		one := uint64(1)
		supply = &one
	}
	return u.run(ctx, "mint", in.CallOptions, func(b *solana.Builder) (solana.Tx, []types.Account, error) {
		return b.Mint(ctx, u.creds.Payer(), in.Contract, in.Destination, in.Link, supply)
	})
}

// UpdateTokenMetadata overwrites the metadata of a mint.
func (u *NFTUsecase) UpdateTokenMetadata(ctx context.Context, in UpdateInput) (nft.TxResult, error) {
	return u.run(ctx, "update", in.CallOptions, func(*solana.Builder) (solana.Tx, []types.Account, error) {
		verified, err := byteList("verified", in.Verified)
		if err != nil {
			return solana.Tx{}, nil, err
		}
		shares, err := byteList("share", in.Shares)
		if err != nil {
			return solana.Tx{}, nil, err
		}
		return solana.UpdateTokenMetadata(u.creds.Payer(), in.Contract, in.Link,
			solana.MetadataFields{Name: in.Name, Symbol: in.Symbol},
			in.Creators, verified, shares, in.Fee)
	})
}

// Send transfers the token on behalf of its owner.
func (u *NFTUsecase) Send(ctx context.Context, in SendInput) (nft.TxResult, error) {
	return u.runWithKey(ctx, "send", in.CallOptions, in.EncryptedPrivateKey, func(b *solana.Builder, key []byte) (solana.Tx, []types.Account, error) {
		return b.Send(ctx, u.creds.Payer(), in.Contract, in.Sender, in.Destination, key)
	})
}

// Burn destroys the owner's token.
func (u *NFTUsecase) Burn(ctx context.Context, in BurnInput) (nft.TxResult, error) {
	return u.runWithKey(ctx, "burn", in.CallOptions, in.EncryptedPrivateKey, func(b *solana.Builder, key []byte) (solana.Tx, []types.Account, error) {
		return b.Burn(ctx, in.Contract, in.Owner, key)
	})
}

// Wallet generates a fresh keypair. Nothing touches the network.
func (u *NFTUsecase) Wallet() nft.WalletResult {
	addr, priv := solana.NewWallet()
	return nft.WalletResult{
		Envelope:   nft.Respond(nil, u.detail()),
		Address:    addr,
		PrivateKey: priv,
	}
}

// Airdrop requests test-network funds for an address.
func (u *NFTUsecase) Airdrop(ctx context.Context, in AirdropInput) (nft.TxResult, error) {
	if err := u.ready(); err != nil {
		return nft.TxResult{Envelope: nft.Respond(err, u.detail())}, err
	}
	b, _ := u.connect(in.CallOptions)
	sig, err := b.Airdrop(ctx, in.Address, in.Lamports)
	if err != nil {
		u.fail("airdrop", err)
		return nft.TxResult{Envelope: nft.Respond(err, u.detail())}, err
	}
	return nft.TxResult{Envelope: nft.Respond(nil, u.detail()), Result: sig}, nil
}

// EncryptKey encrypts a keypair for use with Send and Burn.
func (u *NFTUsecase) EncryptKey(keypair string) (string, error) {
	if err := u.ready(); err != nil {
		return "", err
	}
	return u.creds.EncryptKey(keypair)
}

type buildFunc func(b *solana.Builder) (solana.Tx, []types.Account, error)

func (u *NFTUsecase) run(ctx context.Context, op string, opts CallOptions, build buildFunc) (nft.TxResult, error) {
	res, err := u.execute(ctx, op, opts, build)
	if err != nil {
		u.fail(op, err)
		return nft.TxResult{Envelope: nft.Respond(err, u.detail())}, err
	}
	return res, nil
}

func (u *NFTUsecase) runWithKey(ctx context.Context, op string, opts CallOptions, token string, build func(*solana.Builder, []byte) (solana.Tx, []types.Account, error)) (nft.TxResult, error) {
	if err := u.ready(); err != nil {
		return nft.TxResult{Envelope: nft.Respond(err, u.detail())}, err
	}
	var res nft.TxResult
	err := u.creds.WithDecryptedKey(token, func(key []byte) error {
		var err error
		res, err = u.execute(ctx, op, opts, func(b *solana.Builder) (solana.Tx, []types.Account, error) {
			return build(b, key)
		})
		return err
	})
	if err != nil {
		u.fail(op, err)
		return nft.TxResult{Envelope: nft.Respond(err, u.detail())}, err
	}
	return res, nil
}

func (u *NFTUsecase) execute(ctx context.Context, op string, opts CallOptions, build buildFunc) (nft.TxResult, error) {
	if err := u.ready(); err != nil {
		return nft.TxResult{}, err
	}
	b, e := u.connect(opts)
	tx, signers, err := build(b)
	if err != nil {
		return nft.TxResult{}, err
	}
	receipt, err := e.Execute(ctx, tx, signers, u.execOptions(opts.Exec, u.exec.MaxRetries))
	if err != nil {
		return nft.TxResult{}, err
	}
	log.WithFields(log.Fields{"op": op, "signature": receipt.Signature, "confirmation": receipt.Confirmation}).Info("[facade] operation OK")
	return nft.TxResult{
		Envelope: nft.Respond(nil, u.detail()),
		Result:   receipt.Signature,
		Receipt:  receipt,
	}, nil
}

func byteList(field string, in []int) ([]uint8, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]uint8, len(in))
	for i, v := range in {
		if v < 0 || v > 255 {
			return nil, nft.E("update", nft.KindValidation, fmt.Errorf("%s[%d]=%d is not a byte", field, i, v))
		}
		out[i] = uint8(v)
	}
	return out, nil
}
