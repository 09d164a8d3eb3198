package stability

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	var gotPath, gotAuth string
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"artifacts": []map[string]any{{"base64": base64.StdEncoding.EncodeToString(png), "seed": 1}},
		})
	}))
	defer srv.Close()

	img, err := NewClient(srv.URL+"/", "", "sk-test").Generate(context.Background(), "a red fox")
	require.NoError(t, err)
	require.Equal(t, png, img)
	require.Equal(t, "/v1/generation/"+DefaultEngineID+"/text-to-image", gotPath)
	require.Equal(t, "Bearer sk-test", gotAuth)
	require.Equal(t, "a red fox", gotBody.TextPrompts[0].Text)
}

func TestGenerateFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer empty" {
			_, _ = w.Write([]byte(`{"artifacts":[]}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad key"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", "wrong").Generate(context.Background(), "x")
	require.ErrorContains(t, err, "status=401")
	require.ErrorContains(t, err, "bad key")

	_, err = NewClient(srv.URL, "", "empty").Generate(context.Background(), "x")
	require.ErrorIs(t, err, ErrNoArtifacts)

	_, err = NewClient(srv.URL, "", "").Generate(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(srv.URL, "", "k").Generate(context.Background(), " ")
	require.ErrorIs(t, err, ErrEmptyPrompt)
}
