package metaplex

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
)

// AccountReader returns the raw data of an account, or exists=false when
// the account has never been created.
type AccountReader interface {
	AccountData(ctx context.Context, address common.PublicKey) (data []byte, exists bool, err error)
}

// FetchMetadata loads and decodes the metadata account of mint. It returns
// (nil, nil) when the account does not exist.
func FetchMetadata(ctx context.Context, r AccountReader, mint common.PublicKey) (*Metadata, error) {
	addr, err := MetadataAddress(mint)
	if err != nil {
		return nil, err
	}
	data, ok, err := r.AccountData(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("metaplex: get metadata account %s: %w", addr.ToBase58(), err)
	}
	if !ok {
		return nil, nil
	}
	md, err := UnpackMetadataAccount(data)
	if err != nil {
		return nil, err
	}
	return &md, nil
}
