// internal/infra/solana/metaplex/metadata.go
package metaplex

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/near/borsh-go"
)

// Field limits enforced by the token metadata program.
const (
	MaxNameLength    = 32
	MaxSymbolLength  = 10
	MaxURILength     = 200
	MaxCreatorLength = 34 // 32 address + verified + share
	MaxCreatorLimit  = 5

	// MaxSellerFeeBasisPoints is 100%. The wire field is a plain i16.
	MaxSellerFeeBasisPoints = 10000
)

// Instruction discriminants of the token metadata program.
const (
	InstructionCreateMetadata       uint8 = 0
	InstructionUpdateMetadata       uint8 = 1
	InstructionCreateMasterEdition  uint8 = 10
	metadataAccountKey              uint8 = 4 // MetadataV1
	defaultCreatorShare             uint8 = 100
	defaultCreatorVerified          uint8 = 1
	placeholderURILength                  = 64
	associatedTokenIdempotentCreate uint8 = 1
)

var (
	TokenMetadataProgramID = common.PublicKeyFromString("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	SystemProgramID        = common.PublicKeyFromString("11111111111111111111111111111111")
	TokenProgramID         = common.PublicKeyFromString("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgram = common.PublicKeyFromString("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SysVarRentPubkey       = common.PublicKeyFromString("SysvarRent111111111111111111111111111111111")
)

var (
	ErrNameTooLong         = errors.New("metaplex: name exceeds 32 bytes")
	ErrSymbolTooLong       = errors.New("metaplex: symbol exceeds 10 bytes")
	ErrURITooLong          = errors.New("metaplex: uri exceeds 200 bytes")
	ErrTooManyCreators     = errors.New("metaplex: more than 5 creators")
	ErrCreatorListMismatch = errors.New("metaplex: creator, verified and share lists differ in length")
	ErrInvalidVerified     = errors.New("metaplex: verified flag must be 0 or 1")
	ErrInvalidSellerFee    = errors.New("metaplex: seller fee must be within 0..10000 basis points")
)

// Creator is one entry of the creator list. Verified is kept as the raw byte.
type Creator struct {
	Address  common.PublicKey
	Verified uint8
	Share    uint8
}

// Data is the mutable descriptive part of a metadata account.
type Data struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints int16
	Creators             []Creator // empty means no creator list
}

// Metadata is a decoded metadata account.
type Metadata struct {
	UpdateAuthority     common.PublicKey
	Mint                common.PublicKey
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool
}

// NewCreators zips addresses with their flags. A nil verified or shares
// slice takes the defaults (verified=1, share=100).
func NewCreators(addresses []common.PublicKey, verified, shares []uint8) ([]Creator, error) {
	if len(addresses) > MaxCreatorLimit {
		return nil, ErrTooManyCreators
	}
	if verified != nil && len(verified) != len(addresses) {
		return nil, ErrCreatorListMismatch
	}
	if shares != nil && len(shares) != len(addresses) {
		return nil, ErrCreatorListMismatch
	}

	out := make([]Creator, 0, len(addresses))
	for i, a := range addresses {
		c := Creator{Address: a, Verified: defaultCreatorVerified, Share: defaultCreatorShare}
		if verified != nil {
			if verified[i] > 1 {
				return nil, ErrInvalidVerified
			}
			c.Verified = verified[i]
		}
		if shares != nil {
			c.Share = shares[i]
		}
		out = append(out, c)
	}
	return out, nil
}

// Validate checks the length limits of d.
func (d Data) Validate() error {
	switch {
	case len(d.Name) > MaxNameLength:
		return ErrNameTooLong
	case len(d.Symbol) > MaxSymbolLength:
		return ErrSymbolTooLong
	case len(d.URI) > MaxURILength:
		return ErrURITooLong
	case len(d.Creators) > MaxCreatorLimit:
		return ErrTooManyCreators
	}
	for _, c := range d.Creators {
		if c.Verified > 1 {
			return ErrInvalidVerified
		}
	}
	return nil
}

type borshCreator struct {
	Address  common.PublicKey
	Verified uint8
	Share    uint8
}

type borshData struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints int16
	Creators             *[]borshCreator
}

type createMetadataArgs struct {
	Instruction uint8
	Data        borshData
	IsMutable   bool
}

type updateMetadataArgs struct {
	Instruction         uint8
	Data                *borshData
	UpdateAuthority     *common.PublicKey
	PrimarySaleHappened *bool
}

func (d Data) borsh() borshData {
	out := borshData{
		Name:                 d.Name,
		Symbol:               d.Symbol,
		URI:                  d.URI,
		SellerFeeBasisPoints: d.SellerFeeBasisPoints,
	}
	if len(d.Creators) > 0 {
		cs := make([]borshCreator, len(d.Creators))
		for i, c := range d.Creators {
			cs[i] = borshCreator(c)
		}
		out.Creators = &cs
	}
	return out
}

// EncodeData packs d into the on-chain data layout:
// name, symbol, uri as u32 LE length + bytes, fee as i16 LE, then an
// optional creator list (presence byte, u32 count, 34 bytes per creator).
func EncodeData(d Data) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b, err := borsh.Serialize(d.borsh())
	if err != nil {
		return nil, fmt.Errorf("metaplex: encode data: %w", err)
	}
	return b, nil
}

// CreateMetadataInstructionData builds the payload of a create-metadata
// instruction. The URI is a blank placeholder until the token is minted.
func CreateMetadataInstructionData(name, symbol string, fee int16, creators []Creator) ([]byte, error) {
	d := Data{
		Name:                 name,
		Symbol:               symbol,
		URI:                  placeholderURI(),
		SellerFeeBasisPoints: fee,
		Creators:             creators,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b, err := borsh.Serialize(createMetadataArgs{
		Instruction: InstructionCreateMetadata,
		Data:        d.borsh(),
		IsMutable:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("metaplex: encode create metadata: %w", err)
	}
	return b, nil
}

// UpdateMetadataInstructionData builds the payload of an update-metadata
// instruction that replaces the data and leaves the update authority and
// primary-sale flag untouched.
func UpdateMetadataInstructionData(d Data) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	bd := d.borsh()
	b, err := borsh.Serialize(updateMetadataArgs{
		Instruction: InstructionUpdateMetadata,
		Data:        &bd,
	})
	if err != nil {
		return nil, fmt.Errorf("metaplex: encode update metadata: %w", err)
	}
	return b, nil
}

func placeholderURI() string {
	b := make([]byte, placeholderURILength)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
