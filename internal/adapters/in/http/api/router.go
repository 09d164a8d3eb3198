// internal/adapters/in/http/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"text2nft/internal/adapters/in/http/handlers"
	"text2nft/internal/adapters/in/http/middleware"
)

// Deps is the handler set the API serves.
type Deps struct {
	NFT      *handlers.NFTHandler
	Text2NFT *handlers.Text2NFTHandler
}

// NewRouter mounts every route. Handlers left nil are not mounted.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover, middleware.AccessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	if h := deps.NFT; h != nil {
		r.Route("/nft", func(r chi.Router) {
			r.Post("/deploy", h.Deploy())
			r.Post("/topup", h.Topup())
			r.Post("/mint", h.Mint())
			r.Post("/update", h.Update())
			r.Post("/send", h.Send())
			r.Post("/burn", h.Burn())
			r.Post("/wallet", h.Wallet)
			r.Post("/airdrop", h.Airdrop())
		})
	}

	if h := deps.Text2NFT; h != nil {
		r.Post("/text2nft", h.Create)
		r.Get("/text2nft/runs", h.List)
		r.Get("/text2nft/runs/{id}", h.Get)
		r.Post("/text2nft/runs/{id}/resume", h.Resume)
	}

	return r
}
