// internal/infra/solana/builder.go
package solana

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	log "github.com/sirupsen/logrus"

	"text2nft/internal/domain/nft"
	"text2nft/internal/infra/solana/metaplex"
)

const (
	// SPL token account layout: mint(32) owner(32) amount(8) delegate(36) state(1)
	tokenAccountSize       = 165
	tokenAccountStateIndex = 108

	tokenInstructionBurn uint8 = 8
)

// Tx is an unsigned transaction: the engine fills in the blockhash and
// signatures at submission time.
type Tx struct {
	FeePayer     common.PublicKey
	Instructions []types.Instruction
}

// MetadataFields are the descriptive fields replaced by an update.
type MetadataFields struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Builder turns operation parameters into unsigned transactions. Only
// read-only queries reach the network.
type Builder struct {
	net Network
}

func NewBuilder(net Network) *Builder {
	return &Builder{net: net}
}

// Deploy creates a new mint with the payer as mint and freeze authority and
// attaches a metadata account listing the payer as sole creator.
func (b *Builder) Deploy(ctx context.Context, payer types.Account, name, symbol string, fee int16) (Tx, []types.Account, string, error) {
	const op = "deploy"

	creators := []metaplex.Creator{{Address: payer.PublicKey, Verified: 1, Share: 100}}
	data, err := metaplex.CreateMetadataInstructionData(name, symbol, fee, creators)
	if err != nil {
		return Tx{}, nil, "", nft.E(op, nft.KindValidation, err)
	}

	mint := types.NewAccount()
	rent, err := b.net.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return Tx{}, nil, "", nft.E(op, nft.KindQuery, err)
	}

	createMetadataIx, err := metaplex.CreateMetadataInstruction(data, payer.PublicKey, mint.PublicKey, payer.PublicKey, payer.PublicKey)
	if err != nil {
		return Tx{}, nil, "", nft.E(op, nft.KindInternal, err)
	}

	tx := Tx{
		FeePayer: payer.PublicKey,
		Instructions: []types.Instruction{
			system.CreateAccount(system.CreateAccountParam{
				From:     payer.PublicKey,
				New:      mint.PublicKey,
				Owner:    common.TokenProgramID,
				Lamports: rent,
				Space:    token.MintAccountSize,
			}),
			token.InitializeMint(token.InitializeMintParam{
				Decimals:   0,
				Mint:       mint.PublicKey,
				MintAuth:   payer.PublicKey,
				FreezeAuth: &payer.PublicKey,
			}),
			createMetadataIx,
		},
	}

	log.WithFields(log.Fields{
		"mint":  mint.PublicKey.ToBase58(),
		"payer": maskShort(payer.PublicKey.ToBase58()),
		"rent":  rent,
	}).Info("[builder] deploy built")

	return tx, []types.Account{payer, mint}, mint.PublicKey.ToBase58(), nil
}

// Topup transfers native currency to destination. A nil amount sends the
// rent-exempt minimum of a token account.
func (b *Builder) Topup(ctx context.Context, payer types.Account, destination string, amount *uint64) (Tx, []types.Account, error) {
	const op = "topup"

	dest, err := ParseAddress(destination)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}

	var lamports uint64
	if amount != nil {
		lamports = *amount
	} else {
		lamports, err = b.net.GetMinimumBalanceForRentExemption(ctx, tokenAccountSize)
		if err != nil {
			return Tx{}, nil, nft.E(op, nft.KindQuery, err)
		}
	}

	tx := Tx{
		FeePayer: payer.PublicKey,
		Instructions: []types.Instruction{
			system.Transfer(system.TransferParam{
				From:   payer.PublicKey,
				To:     dest,
				Amount: lamports,
			}),
		},
	}
	return tx, []types.Account{payer}, nil
}

// Mint issues the single unit of mintAddress to destination, points the
// metadata at uri and locks the supply with a master edition.
func (b *Builder) Mint(ctx context.Context, payer types.Account, mintAddress, destination, uri string, supply *uint64) (Tx, []types.Account, error) {
	const op = "mint"

	mint, err := ParseAddress(mintAddress)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}
	dest, err := ParseAddress(destination)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}
	if len(uri) > metaplex.MaxURILength {
		return Tx{}, nil, nft.E(op, nft.KindValidation, metaplex.ErrURITooLong)
	}

	ata, _, err := common.FindAssociatedTokenAddress(dest, mint)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindInternal, fmt.Errorf("derive ATA: %w", err))
	}

	var ixs []types.Instruction
	initialized, err := b.tokenAccountInitialized(ctx, ata)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindQuery, err)
	}
	if !initialized {
		ixs = append(ixs, metaplex.CreateAssociatedTokenAccountInstruction(ata, payer.PublicKey, dest, mint))
	}

	ixs = append(ixs, token.MintTo(token.MintToParam{
		Mint:   mint,
		To:     ata,
		Auth:   payer.PublicKey,
		Amount: 1,
	}))

	md, err := b.fetchMetadata(ctx, mint)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindQuery, err)
	}

	data := md.Data
	data.URI = uri
	updateData, err := metaplex.UpdateMetadataInstructionData(data)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}
	updateIx, err := metaplex.UpdateMetadataInstruction(updateData, payer.PublicKey, mint)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindInternal, err)
	}
	editionIx, err := metaplex.CreateMasterEditionInstruction(mint, payer.PublicKey, payer.PublicKey, payer.PublicKey, supply)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindInternal, err)
	}
	ixs = append(ixs, updateIx, editionIx)

	log.WithFields(log.Fields{
		"mint":      mintAddress,
		"dest":      maskShort(destination),
		"createATA": !initialized,
		"uriLen":    len(uri),
		"hasSupply": supply != nil,
	}).Info("[builder] mint built")

	return Tx{FeePayer: payer.PublicKey, Instructions: ixs}, []types.Account{payer}, nil
}

// UpdateTokenMetadata overwrites every metadata field of mintAddress in a
// single instruction. It needs no network access.
func UpdateTokenMetadata(payer types.Account, mintAddress, uri string, fields MetadataFields, creators []string, verified, shares []uint8, fee int16) (Tx, []types.Account, error) {
	const op = "update"

	mint, err := ParseAddress(mintAddress)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}

	addrs := make([]common.PublicKey, 0, len(creators))
	for _, c := range creators {
		pk, err := ParseAddress(c)
		if err != nil {
			return Tx{}, nil, nft.E(op, nft.KindValidation, err)
		}
		addrs = append(addrs, pk)
	}
	cs, err := metaplex.NewCreators(addrs, verified, shares)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}

	data, err := metaplex.UpdateMetadataInstructionData(metaplex.Data{
		Name:                 fields.Name,
		Symbol:               fields.Symbol,
		URI:                  uri,
		SellerFeeBasisPoints: fee,
		Creators:             cs,
	})
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}
	ix, err := metaplex.UpdateMetadataInstruction(data, payer.PublicKey, mint)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindInternal, err)
	}

	return Tx{FeePayer: payer.PublicKey, Instructions: []types.Instruction{ix}}, []types.Account{payer}, nil
}

// Send moves the token from sender to destination. The payer funds the
// destination ATA when it has to be created; the owner key authorizes the
// transfer.
func (b *Builder) Send(ctx context.Context, payer types.Account, mintAddress, sender, destination string, ownerPrivateKey []byte) (Tx, []types.Account, error) {
	const op = "send"

	mint, err := ParseAddress(mintAddress)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}
	from, err := ParseAddress(sender)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}
	to, err := ParseAddress(destination)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}
	owner, err := ParsePrivateKey(ownerPrivateKey)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindCrypto, err)
	}
	if owner.PublicKey != from {
		return Tx{}, nil, nft.E(op, nft.KindPrecondition, nft.ErrOwnerMismatch)
	}

	fromATA, _, err := common.FindAssociatedTokenAddress(from, mint)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindInternal, fmt.Errorf("derive sender ATA: %w", err))
	}
	toATA, _, err := common.FindAssociatedTokenAddress(to, mint)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindInternal, fmt.Errorf("derive destination ATA: %w", err))
	}

	_, exists, err := b.net.AccountData(ctx, fromATA)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindQuery, err)
	}
	if !exists {
		return Tx{}, nil, nft.E(op, nft.KindPrecondition, fmt.Errorf("%w: sender ATA %s", nft.ErrTokenAccountEmpty, fromATA.ToBase58()))
	}

	var ixs []types.Instruction
	initialized, err := b.tokenAccountInitialized(ctx, toATA)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindQuery, err)
	}
	if !initialized {
		ixs = append(ixs, metaplex.CreateAssociatedTokenAccountInstruction(toATA, payer.PublicKey, to, mint))
	}
	ixs = append(ixs, token.Transfer(token.TransferParam{
		From:   fromATA,
		To:     toATA,
		Auth:   owner.PublicKey,
		Amount: 1,
	}))

	return Tx{FeePayer: payer.PublicKey, Instructions: ixs}, dedupeSigners(payer, owner), nil
}

// Burn destroys the owner's unit of mintAddress. The owner pays the fee.
func (b *Builder) Burn(ctx context.Context, mintAddress, ownerAddress string, ownerPrivateKey []byte) (Tx, []types.Account, error) {
	const op = "burn"

	mint, err := ParseAddress(mintAddress)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}
	ownerPK, err := ParseAddress(ownerAddress)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindValidation, err)
	}
	owner, err := ParsePrivateKey(ownerPrivateKey)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindCrypto, err)
	}
	if owner.PublicKey != ownerPK {
		return Tx{}, nil, nft.E(op, nft.KindPrecondition, nft.ErrOwnerMismatch)
	}

	ata, _, err := common.FindAssociatedTokenAddress(ownerPK, mint)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindInternal, fmt.Errorf("derive ATA: %w", err))
	}
	_, exists, err := b.net.AccountData(ctx, ata)
	if err != nil {
		return Tx{}, nil, nft.E(op, nft.KindQuery, err)
	}
	if !exists {
		return Tx{}, nil, nft.E(op, nft.KindPrecondition, fmt.Errorf("%w: owner ATA %s", nft.ErrTokenAccountEmpty, ata.ToBase58()))
	}

	tx := Tx{
		FeePayer:     owner.PublicKey,
		Instructions: []types.Instruction{burnInstruction(ata, mint, owner.PublicKey, 1)},
	}
	return tx, []types.Account{owner}, nil
}

// Airdrop asks a test cluster for lamports. Not a transaction build: the
// cluster funds and signs it.
func (b *Builder) Airdrop(ctx context.Context, address string, lamports uint64) (string, error) {
	const op = "airdrop"

	pk, err := ParseAddress(address)
	if err != nil {
		return "", nft.E(op, nft.KindValidation, err)
	}
	sig, err := b.net.RequestAirdrop(ctx, pk, lamports)
	if err != nil {
		return "", nft.E(op, nft.KindSubmission, err)
	}
	return sig, nil
}

// NewWallet creates a fresh keypair.
func NewWallet() (address string, privateKey []int) {
	acc := types.NewAccount()
	return acc.PublicKey.ToBase58(), KeypairInts(acc)
}

func (b *Builder) fetchMetadata(ctx context.Context, mint common.PublicKey) (*metaplex.Metadata, error) {
	md, err := metaplex.FetchMetadata(ctx, b.net, mint)
	if err != nil {
		if errors.Is(err, metaplex.ErrDecode) {
			return nil, nft.E("fetch metadata", nft.KindDecode, err)
		}
		return nil, err
	}
	if md == nil {
		return nil, nft.E("fetch metadata", nft.KindPrecondition, fmt.Errorf("%w: mint %s", nft.ErrMetadataNotFound, mint.ToBase58()))
	}
	return md, nil
}

// tokenAccountInitialized reads the state byte of an SPL token account.
// Missing or short accounts count as uninitialized.
func (b *Builder) tokenAccountInitialized(ctx context.Context, ata common.PublicKey) (bool, error) {
	data, exists, err := b.net.AccountData(ctx, ata)
	if err != nil {
		return false, err
	}
	if !exists || len(data) <= tokenAccountStateIndex {
		return false, nil
	}
	return data[tokenAccountStateIndex] != 0, nil
}

// burnInstruction
// Accounts:
// 0. [writable] token account
// 1. [writable] mint
// 2. [signer] owner
func burnInstruction(account, mint, owner common.PublicKey, amount uint64) types.Instruction {
	data := make([]byte, 9)
	data[0] = tokenInstructionBurn
	binary.LittleEndian.PutUint64(data[1:], amount)
	return types.Instruction{
		ProgramID: common.TokenProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: account, IsSigner: false, IsWritable: true},
			{PubKey: mint, IsSigner: false, IsWritable: true},
			{PubKey: owner, IsSigner: true, IsWritable: false},
		},
		Data: data,
	}
}
