// internal/infra/solana/rpc_client.go
package solana

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
)

// Solana Devnet RPC endpoint (default)
const DevnetEndpoint = "https://api.devnet.solana.com"

// RPCNetwork implements Network on top of the SDK client.
type RPCNetwork struct {
	c *client.Client
}

// NewRPCNetwork returns a fresh connection to endpoint (DevnetEndpoint when
// empty). Callers running operations concurrently should create one per
// operation.
func NewRPCNetwork(endpoint string) *RPCNetwork {
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		ep = DevnetEndpoint
	}
	return &RPCNetwork{
		c: client.New(
			rpc.WithEndpoint(ep),
			rpc.WithHTTPClient(&http.Client{Timeout: 12 * time.Second}),
		),
	}
}

func (n *RPCNetwork) GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error) {
	v, err := n.c.GetMinimumBalanceForRentExemption(ctx, dataLen)
	if err != nil {
		return 0, fmt.Errorf("solana rpc: getMinimumBalanceForRentExemption: %w", err)
	}
	return v, nil
}

func (n *RPCNetwork) GetLatestBlockhash(ctx context.Context) (string, error) {
	res, err := n.c.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("solana rpc: getLatestBlockhash: %w", err)
	}
	return res.Blockhash, nil
}

// AccountData reports ok=false when the account does not exist. Live
// accounts always hold lamports, so a zero balance means a null value.
func (n *RPCNetwork) AccountData(ctx context.Context, address common.PublicKey) ([]byte, bool, error) {
	info, err := n.c.GetAccountInfoWithConfig(ctx, address.ToBase58(), client.GetAccountInfoConfig{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, false, fmt.Errorf("solana rpc: getAccountInfo: %w", err)
	}
	if info.Lamports == 0 {
		return nil, false, nil
	}
	return info.Data, true, nil
}

func (n *RPCNetwork) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	sig, err := n.c.SendTransactionWithConfig(ctx, tx, client.SendTransactionConfig{SkipPreflight: true})
	if err != nil {
		return "", fmt.Errorf("solana rpc: sendTransaction: %w", err)
	}
	return sig, nil
}

func (n *RPCNetwork) GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error) {
	res, err := n.c.GetSignatureStatuses(ctx, signatures)
	if err != nil {
		return nil, fmt.Errorf("solana rpc: getSignatureStatuses: %w", err)
	}
	out := make([]*SignatureStatus, len(res))
	for i, st := range res {
		if st == nil {
			continue
		}
		s := &SignatureStatus{Slot: st.Slot, Confirmations: st.Confirmations, Err: st.Err}
		if st.ConfirmationStatus != nil {
			s.ConfirmationStatus = string(*st.ConfirmationStatus)
		}
		out[i] = s
	}
	return out, nil
}

func (n *RPCNetwork) RequestAirdrop(ctx context.Context, address common.PublicKey, lamports uint64) (string, error) {
	sig, err := n.c.RequestAirdrop(ctx, address.ToBase58(), lamports)
	if err != nil {
		return "", fmt.Errorf("solana rpc: requestAirdrop: %w", err)
	}
	return sig, nil
}
