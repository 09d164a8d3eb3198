// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"text2nft/internal/domain/nft"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("[http] encode response")
	}
}

// decodeBody reads a JSON body into dst. Unknown fields are rejected.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nft.E("decode request", nft.KindValidation, errors.New("empty body"))
		}
		return nft.E("decode request", nft.KindValidation, fmt.Errorf("invalid json: %w", err))
	}
	return nil
}

func badRequest(w http.ResponseWriter, err error, detail bool) {
	writeJSON(w, http.StatusBadRequest, nft.Respond(err, detail))
}
