package solana

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/require"
)

// rpcServer answers each JSON-RPC method with a canned result and records
// the params it received.
func rpcServer(t *testing.T, results map[string]string, seen map[string]json.RawMessage) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		if seen != nil {
			seen[req.Method] = req.Params
		}
		res, ok := results[req.Method]
		if !ok {
			_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":`+res+`}`)
	}))
}

func TestAccountData(t *testing.T) {
	seen := map[string]json.RawMessage{}
	srv := rpcServer(t, map[string]string{
		"getAccountInfo": `{"context":{"slot":1},"value":{"lamports":10,"owner":"11111111111111111111111111111111","executable":false,"rentEpoch":0,"data":["AQID","base64"]}}`,
	}, seen)
	defer srv.Close()

	data, ok, err := NewRPCNetwork(srv.URL).AccountData(context.Background(), types.NewAccount().PublicKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, data)

	var params []json.RawMessage
	require.NoError(t, json.Unmarshal(seen["getAccountInfo"], &params))
	require.JSONEq(t, `{"encoding":"base64","commitment":"confirmed"}`, string(params[1]))
}

func TestAccountDataMissing(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getAccountInfo": `{"context":{"slot":1},"value":null}`,
	}, nil)
	defer srv.Close()

	data, ok, err := NewRPCNetwork(srv.URL).AccountData(context.Background(), types.NewAccount().PublicKey)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, data)
}

func TestSendTransactionSkipsPreflight(t *testing.T) {
	seen := map[string]json.RawMessage{}
	srv := rpcServer(t, map[string]string{"sendTransaction": `"5sig"`}, seen)
	defer srv.Close()

	payer := types.NewAccount()
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        payer.PublicKey,
			RecentBlockhash: "11111111111111111111111111111111",
			Instructions: []types.Instruction{
				system.Transfer(system.TransferParam{From: payer.PublicKey, To: payer.PublicKey, Amount: 1}),
			},
		}),
		Signers: []types.Account{payer},
	})
	require.NoError(t, err)

	sig, err := NewRPCNetwork(srv.URL).SendTransaction(context.Background(), tx)
	require.NoError(t, err)
	require.Equal(t, "5sig", sig)

	var params []json.RawMessage
	require.NoError(t, json.Unmarshal(seen["sendTransaction"], &params))
	require.Len(t, params, 2)
	require.JSONEq(t, `{"encoding":"base64","skipPreflight":true}`, string(params[1]))
}

func TestGetSignatureStatuses(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getSignatureStatuses": `{"context":{"slot":5},"value":[null,{"slot":4,"confirmations":7,"err":null,"confirmationStatus":"confirmed"},{"slot":3,"confirmations":null,"err":null,"confirmationStatus":"finalized"}]}`,
	}, nil)
	defer srv.Close()

	st, err := NewRPCNetwork(srv.URL).GetSignatureStatuses(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, st, 3)
	require.Nil(t, st[0])
	require.EqualValues(t, 7, *st[1].Confirmations)
	require.False(t, st[1].IsFinalized())
	require.Nil(t, st[2].Confirmations)
	require.True(t, st[2].IsFinalized())
}

func TestRPCErrorResponse(t *testing.T) {
	srv := rpcServer(t, map[string]string{}, nil)
	defer srv.Close()

	_, err := NewRPCNetwork(srv.URL).RequestAirdrop(context.Background(), types.NewAccount().PublicKey, 1)
	require.ErrorContains(t, err, "Method not found")
}

func TestRPCHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewRPCNetwork(srv.URL).GetSignatureStatuses(context.Background(), []string{"a"})
	require.ErrorContains(t, err, "429")
}
