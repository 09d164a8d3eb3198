// internal/infra/solana/network.go
package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// Network is everything the builders and the engine need from a cluster.
type Network interface {
	AccountData(ctx context.Context, address common.PublicKey) ([]byte, bool, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (string, error)
	// SendTransaction broadcasts a signed transaction without preflight
	// simulation and returns its signature.
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	// GetSignatureStatuses returns one entry per signature; nil entries are
	// signatures the cluster has not seen yet.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)
	RequestAirdrop(ctx context.Context, address common.PublicKey, lamports uint64) (string, error)
}

// SignatureStatus is one entry of getSignatureStatuses.
type SignatureStatus struct {
	Slot               uint64
	Confirmations      *uint64
	ConfirmationStatus string
	Err                any
}

func (s SignatureStatus) IsFinalized() bool { return s.ConfirmationStatus == "finalized" }
