package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/mock"
)

type mockedNetwork struct {
	mock.Mock
}

func (m *mockedNetwork) AccountData(ctx context.Context, address common.PublicKey) ([]byte, bool, error) {
	args := m.Called(ctx, address)
	var data []byte
	if v := args.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, args.Bool(1), args.Error(2)
}

func (m *mockedNetwork) GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error) {
	args := m.Called(ctx, dataLen)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockedNetwork) GetLatestBlockhash(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockedNetwork) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

func (m *mockedNetwork) GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error) {
	args := m.Called(ctx, signatures)
	var res []*SignatureStatus
	if v := args.Get(0); v != nil {
		res = v.([]*SignatureStatus)
	}
	return res, args.Error(1)
}

func (m *mockedNetwork) RequestAirdrop(ctx context.Context, address common.PublicKey, lamports uint64) (string, error) {
	args := m.Called(ctx, address, lamports)
	return args.String(0), args.Error(1)
}
