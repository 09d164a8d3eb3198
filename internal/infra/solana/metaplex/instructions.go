package metaplex

import (
	"encoding/binary"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
)

// MetadataAddress derives the metadata PDA of mint.
func MetadataAddress(mint common.PublicKey) (common.PublicKey, error) {
	pk, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("metaplex: derive metadata address: %w", err)
	}
	return pk, nil
}

// EditionAddress derives the master edition PDA of mint.
func EditionAddress(mint common.PublicKey) (common.PublicKey, error) {
	pk, err := token_metadata.GetMasterEdition(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("metaplex: derive edition address: %w", err)
	}
	return pk, nil
}

// CreateMetadataInstruction
// Accounts:
// 0. [writable] metadata
// 1. [] mint
// 2. [signer] mint authority
// 3. [signer] payer
// 4. [] update authority
// 5. [] system program
// 6. [] rent sysvar
func CreateMetadataInstruction(data []byte, updateAuthority, mint, mintAuthority, payer common.PublicKey) (types.Instruction, error) {
	metadata, err := MetadataAddress(mint)
	if err != nil {
		return types.Instruction{}, err
	}
	return types.Instruction{
		ProgramID: TokenMetadataProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: metadata, IsSigner: false, IsWritable: true},
			{PubKey: mint, IsSigner: false, IsWritable: false},
			{PubKey: mintAuthority, IsSigner: true, IsWritable: false},
			{PubKey: payer, IsSigner: true, IsWritable: false},
			{PubKey: updateAuthority, IsSigner: false, IsWritable: false},
			{PubKey: SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: SysVarRentPubkey, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}

// UpdateMetadataInstruction
// Accounts:
// 0. [writable] metadata
// 1. [signer] update authority
func UpdateMetadataInstruction(data []byte, updateAuthority, mint common.PublicKey) (types.Instruction, error) {
	metadata, err := MetadataAddress(mint)
	if err != nil {
		return types.Instruction{}, err
	}
	return types.Instruction{
		ProgramID: TokenMetadataProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: metadata, IsSigner: false, IsWritable: true},
			{PubKey: updateAuthority, IsSigner: true, IsWritable: false},
		},
		Data: data,
	}, nil
}

// MasterEditionInstructionData is [10, 0] without a supply cap and
// [10, 1, u64 LE supply] with one.
func MasterEditionInstructionData(supply *uint64) []byte {
	if supply == nil {
		return []byte{InstructionCreateMasterEdition, 0}
	}
	b := make([]byte, 10)
	b[0] = InstructionCreateMasterEdition
	b[1] = 1
	binary.LittleEndian.PutUint64(b[2:], *supply)
	return b
}

// CreateMasterEditionInstruction
// Accounts:
// 0. [writable] edition
// 1. [writable] mint
// 2. [signer] update authority
// 3. [signer] mint authority
// 4. [signer] payer
// 5. [] metadata
// 6. [] token program
// 7. [] system program
// 8. [] rent sysvar
func CreateMasterEditionInstruction(mint, updateAuthority, mintAuthority, payer common.PublicKey, supply *uint64) (types.Instruction, error) {
	edition, err := EditionAddress(mint)
	if err != nil {
		return types.Instruction{}, err
	}
	metadata, err := MetadataAddress(mint)
	if err != nil {
		return types.Instruction{}, err
	}
	return types.Instruction{
		ProgramID: TokenMetadataProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: edition, IsSigner: false, IsWritable: true},
			{PubKey: mint, IsSigner: false, IsWritable: true},
			{PubKey: updateAuthority, IsSigner: true, IsWritable: false},
			{PubKey: mintAuthority, IsSigner: true, IsWritable: false},
			{PubKey: payer, IsSigner: true, IsWritable: false},
			{PubKey: metadata, IsSigner: false, IsWritable: false},
			{PubKey: TokenProgramID, IsSigner: false, IsWritable: false},
			{PubKey: SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: SysVarRentPubkey, IsSigner: false, IsWritable: false},
		},
		Data: MasterEditionInstructionData(supply),
	}, nil
}

// CreateAssociatedTokenAccountInstruction builds an idempotent ATA creation.
// Accounts:
// 0. [writable,signer] payer
// 1. [writable] associated token account
// 2. [] owner
// 3. [] mint
// 4. [] system program
// 5. [] token program
// 6. [] rent sysvar
func CreateAssociatedTokenAccountInstruction(ata, payer, owner, mint common.PublicKey) types.Instruction {
	return types.Instruction{
		ProgramID: AssociatedTokenProgram,
		Accounts: []types.AccountMeta{
			{PubKey: payer, IsSigner: true, IsWritable: true},
			{PubKey: ata, IsSigner: false, IsWritable: true},
			{PubKey: owner, IsSigner: false, IsWritable: false},
			{PubKey: mint, IsSigner: false, IsWritable: false},
			{PubKey: SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: TokenProgramID, IsSigner: false, IsWritable: false},
			{PubKey: SysVarRentPubkey, IsSigner: false, IsWritable: false},
		},
		Data: []byte{associatedTokenIdempotentCreate},
	}
}
