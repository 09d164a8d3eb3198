// internal/adapters/in/http/handlers/nft_handler.go
package handlers

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	usecase "text2nft/internal/application/usecase"
	"text2nft/internal/domain/nft"
)

// NFTService is the facade surface the handler drives.
type NFTService interface {
	Deploy(ctx context.Context, in usecase.DeployInput) (nft.DeployResult, error)
	Topup(ctx context.Context, in usecase.TopupInput) (nft.TxResult, error)
	Mint(ctx context.Context, in usecase.MintInput) (nft.TxResult, error)
	UpdateTokenMetadata(ctx context.Context, in usecase.UpdateInput) (nft.TxResult, error)
	Send(ctx context.Context, in usecase.SendInput) (nft.TxResult, error)
	Burn(ctx context.Context, in usecase.BurnInput) (nft.TxResult, error)
	Wallet() nft.WalletResult
	Airdrop(ctx context.Context, in usecase.AirdropInput) (nft.TxResult, error)
}

type NFTHandler struct {
	uc     NFTService
	detail bool
}

func NewNFTHandler(uc NFTService, exposeDetail bool) *NFTHandler {
	return &NFTHandler{uc: uc, detail: exposeDetail}
}

// facadeCall decodes In, runs fn and writes the envelope it returns. The
// HTTP status always mirrors the envelope status.
func facadeCall[In any, Out interface{ StatusCode() int }](h *NFTHandler, op string, fn func(context.Context, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeBody(r, &in); err != nil {
			badRequest(w, err, h.detail)
			return
		}
		out, err := fn(r.Context(), in)
		if err != nil {
			log.WithError(err).WithField("op", op).Info("[nft_handler] request failed")
		}
		writeJSON(w, out.StatusCode(), out)
	}
}

func (h *NFTHandler) Deploy() http.HandlerFunc { return facadeCall(h, "deploy", h.uc.Deploy) }

func (h *NFTHandler) Topup() http.HandlerFunc { return facadeCall(h, "topup", h.uc.Topup) }

func (h *NFTHandler) Mint() http.HandlerFunc { return facadeCall(h, "mint", h.uc.Mint) }

func (h *NFTHandler) Update() http.HandlerFunc {
	return facadeCall(h, "update", h.uc.UpdateTokenMetadata)
}

func (h *NFTHandler) Send() http.HandlerFunc { return facadeCall(h, "send", h.uc.Send) }

func (h *NFTHandler) Burn() http.HandlerFunc { return facadeCall(h, "burn", h.uc.Burn) }

func (h *NFTHandler) Airdrop() http.HandlerFunc { return facadeCall(h, "airdrop", h.uc.Airdrop) }

func (h *NFTHandler) Wallet(w http.ResponseWriter, _ *http.Request) {
	res := h.uc.Wallet()
	writeJSON(w, res.Status, res)
}
