package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"text2nft/internal/adapters/in/http/handlers"
	usecase "text2nft/internal/application/usecase"
	"text2nft/internal/domain/nft"
)

type mockFacade struct{ mock.Mock }

func (m *mockFacade) Deploy(ctx context.Context, in usecase.DeployInput) (nft.DeployResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(nft.DeployResult), args.Error(1)
}

func (m *mockFacade) Topup(ctx context.Context, in usecase.TopupInput) (nft.TxResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(nft.TxResult), args.Error(1)
}

func (m *mockFacade) Mint(ctx context.Context, in usecase.MintInput) (nft.TxResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(nft.TxResult), args.Error(1)
}

func (m *mockFacade) UpdateTokenMetadata(ctx context.Context, in usecase.UpdateInput) (nft.TxResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(nft.TxResult), args.Error(1)
}

func (m *mockFacade) Send(ctx context.Context, in usecase.SendInput) (nft.TxResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(nft.TxResult), args.Error(1)
}

func (m *mockFacade) Burn(ctx context.Context, in usecase.BurnInput) (nft.TxResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(nft.TxResult), args.Error(1)
}

func (m *mockFacade) Wallet() nft.WalletResult {
	return m.Called().Get(0).(nft.WalletResult)
}

func (m *mockFacade) Airdrop(ctx context.Context, in usecase.AirdropInput) (nft.TxResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(nft.TxResult), args.Error(1)
}

type mockRuns struct{ mock.Mock }

func (m *mockRuns) Run(ctx context.Context, req nft.Request) (nft.Run, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(nft.Run), args.Error(1)
}

func (m *mockRuns) Resume(ctx context.Context, id string) (nft.Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(nft.Run), args.Error(1)
}

func (m *mockRuns) GetRun(ctx context.Context, id string) (nft.Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(nft.Run), args.Error(1)
}

func (m *mockRuns) ListRuns(ctx context.Context) ([]nft.Run, error) {
	args := m.Called(ctx)
	return args.Get(0).([]nft.Run), args.Error(1)
}

func newTestRouter() (http.Handler, *mockFacade, *mockRuns) {
	f, r := new(mockFacade), new(mockRuns)
	h := NewRouter(Deps{
		NFT:      handlers.NewNFTHandler(f, true),
		Text2NFT: handlers.NewText2NFTHandler(r, true),
	})
	return h, f, r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealthz(t *testing.T) {
	h, _, _ := newTestRouter()
	rec, body := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
}

func TestDeployRoute(t *testing.T) {
	h, f, _ := newTestRouter()
	retries := 2
	f.On("Deploy", mock.Anything, usecase.DeployInput{
		CallOptions: usecase.CallOptions{Exec: &usecase.ExecOverrides{MaxRetries: &retries}},
		Name:        "Cat",
		Symbol:      "CAT",
	}).Return(nft.DeployResult{
		Envelope: nft.Envelope{Status: http.StatusOK},
		Contract: "MintAddr",
		Receipt:  &nft.Receipt{Signature: "sig"},
	}, nil).Once()

	rec, body := do(t, h, http.MethodPost, "/nft/deploy", `{"name":"Cat","symbol":"CAT","exec":{"max_retries":2}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 200, body["status"])
	assert.Equal(t, "MintAddr", body["contract"])
	f.AssertExpectations(t)
}

func TestFacadeErrorMirrorsStatus(t *testing.T) {
	h, f, _ := newTestRouter()
	err := nft.E("mint", nft.KindValidation, errors.New("bad destination"))
	f.On("Mint", mock.Anything, mock.Anything).Return(nft.TxResult{Envelope: nft.Respond(err, true)}, err).Once()

	rec, body := do(t, h, http.MethodPost, "/nft/mint", `{"contract_key":"a","dest_key":"b","link":"c"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.EqualValues(t, 400, body["status"])
	assert.Equal(t, "validation", body["error_kind"])
}

func TestMalformedBody(t *testing.T) {
	h, f, _ := newTestRouter()

	rec, body := do(t, h, http.MethodPost, "/nft/send", `{"contract_key":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", body["error_kind"])

	rec, _ = do(t, h, http.MethodPost, "/nft/burn", `{"unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.AssertNotCalled(t, "Burn", mock.Anything, mock.Anything)
}

func TestWalletRoute(t *testing.T) {
	h, f, _ := newTestRouter()
	f.On("Wallet").Return(nft.WalletResult{
		Envelope:   nft.Envelope{Status: http.StatusOK},
		Address:    "Addr",
		PrivateKey: []int{1, 2, 3},
	}).Once()

	rec, body := do(t, h, http.MethodPost, "/nft/wallet", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Addr", body["address"])
}

func TestText2NFTRoutes(t *testing.T) {
	h, _, runs := newTestRouter()
	req := nft.Request{Text: "cat", Name: "Cat", Symbol: "CAT", ReceiverPublicKey: "Recv"}
	runs.On("Run", mock.Anything, req).Return(nft.Run{ID: "r1", Stage: nft.StageCompleted}, nil).Once()
	runs.On("GetRun", mock.Anything, "r1").Return(nft.Run{ID: "r1", Stage: nft.StageCompleted}, nil).Once()
	runs.On("GetRun", mock.Anything, "missing").Return(nft.Run{}, nft.ErrRunNotFound).Once()
	runs.On("ListRuns", mock.Anything).Return([]nft.Run{{ID: "r1"}}, nil).Once()

	rec, body := do(t, h, http.MethodPost, "/text2nft", `{"text":"cat","name":"Cat","symbol":"CAT","receiver_public_key":"Recv"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "r1", body["run"].(map[string]any)["id"])

	rec, body = do(t, h, http.MethodGet, "/text2nft/runs/r1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", body["stage"])

	rec, _ = do(t, h, http.MethodGet, "/text2nft/runs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/text2nft/runs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["runs"], 1)
}

func TestText2NFTFailureKeepsRun(t *testing.T) {
	h, _, runs := newTestRouter()
	err := nft.E("pin image", nft.KindExternal, errors.New("503"))
	runs.On("Run", mock.Anything, mock.Anything).Return(nft.Run{ID: "r2", Stage: nft.StageImageGenerated}, err).Once()
	runs.On("Resume", mock.Anything, "r2").Return(nft.Run{ID: "r2", Stage: nft.StageCompleted}, nil).Once()

	rec, body := do(t, h, http.MethodPost, "/text2nft", `{"text":"cat","name":"Cat","symbol":"CAT","receiver_public_key":"Recv"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "external", body["error_kind"])
	assert.Equal(t, "image_generated", body["run"].(map[string]any)["stage"])

	rec, body = do(t, h, http.MethodPost, "/text2nft/runs/r2/resume", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", body["run"].(map[string]any)["stage"])
}

func TestRecoverMiddleware(t *testing.T) {
	h, f, _ := newTestRouter()
	f.On("Wallet").Run(func(mock.Arguments) { panic("boom") }).Return(nft.WalletResult{})

	rec, body := do(t, h, http.MethodPost, "/nft/wallet", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body["error"])
}
