// internal/adapters/in/http/handlers/text2nft_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"text2nft/internal/domain/nft"
)

type RunService interface {
	Run(ctx context.Context, req nft.Request) (nft.Run, error)
	Resume(ctx context.Context, id string) (nft.Run, error)
	GetRun(ctx context.Context, id string) (nft.Run, error)
	ListRuns(ctx context.Context) ([]nft.Run, error)
}

type Text2NFTHandler struct {
	uc     RunService
	detail bool
}

func NewText2NFTHandler(uc RunService, exposeDetail bool) *Text2NFTHandler {
	return &Text2NFTHandler{uc: uc, detail: exposeDetail}
}

// runResponse carries the run even when it stopped part way.
type runResponse struct {
	nft.Envelope
	Run *nft.Run `json:"run,omitempty"`
}

// Create handles the event entry point: {text, name, symbol, receiver_public_key}.
func (h *Text2NFTHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req nft.Request
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err, h.detail)
		return
	}
	run, err := h.uc.Run(r.Context(), req)
	h.writeRun(w, run, err)
}

func (h *Text2NFTHandler) Resume(w http.ResponseWriter, r *http.Request) {
	run, err := h.uc.Resume(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, nft.ErrRunNotFound) {
		writeJSON(w, http.StatusNotFound, nft.Respond(err, h.detail))
		return
	}
	h.writeRun(w, run, err)
}

func (h *Text2NFTHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, err := h.uc.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, nft.ErrRunNotFound) {
		writeJSON(w, http.StatusNotFound, nft.Respond(err, h.detail))
		return
	}
	if err != nil {
		log.WithError(err).Error("[text2nft_handler] get run")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Text2NFTHandler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := h.uc.ListRuns(r.Context())
	if err != nil {
		log.WithError(err).Error("[text2nft_handler] list runs")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *Text2NFTHandler) writeRun(w http.ResponseWriter, run nft.Run, err error) {
	resp := runResponse{Envelope: nft.Respond(err, h.detail)}
	if run.ID != "" {
		resp.Run = &run
	}
	writeJSON(w, resp.Status, resp)
}
