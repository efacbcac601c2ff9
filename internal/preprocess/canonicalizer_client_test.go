package preprocess

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RishiKendai/overlap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteCanonicalizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/canonicalize", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("x-api-key"))

		var req models.CanonicalizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "english", req.Language)

		_ = json.NewEncoder(w).Encode(models.CanonicalizeResponse{NormalizedText: "normal " + req.Text})
	}))
	defer srv.Close()

	c := NewRemoteCanonicalizer(srv.URL, "key-123", "english")
	out, err := c.Canonicalize(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "normal text", out)
}

func TestRemoteCanonicalizerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"structured error", http.StatusUnprocessableEntity, `{"error":"EMPTY","message":"no text"}`, "API error: EMPTY - no text"},
		{"unstructured error", http.StatusBadRequest, `oops`, "API error (status 400): oops"},
		{"server error", http.StatusInternalServerError, `down`, "unexpected status code 500: down"},
		{"bad body", http.StatusOK, `{`, "failed to unmarshal response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewRemoteCanonicalizer(srv.URL, "", "").Canonicalize(context.Background(), "x")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
