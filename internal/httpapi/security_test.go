package httpapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"

	"github.com/emiliogarza/distrimax/internal/domain/auth"
)

type mockAPIKeyRepo struct {
	byHash map[string]*auth.APIKeyInfo
	err    error
}

func (m *mockAPIKeyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byHash[hash], nil
}

func hashKey(key string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestAPIKeyAuth(t *testing.T) {
	pepper := []byte("test-pepper")
	goodHash := hashKey("valid-key", pepper)
	repo := &mockAPIKeyRepo{byHash: map[string]*auth.APIKeyInfo{
		goodHash: {ID: "k1", KeyHash: goodHash, Name: "admin"},
	}}

	protected := APIKeyAuth(repo, pepper)(okHandler())

	tests := []struct {
		name   string
		header string
		key    string
		want   int
	}{
		{"valid key", "X-API-Key", "valid-key", http.StatusOK},
		{"valid key legacy header", "api_key", "valid-key", http.StatusOK},
		{"wrong key", "X-API-Key", "wrong-key", http.StatusUnauthorized},
		{"missing key", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.key)
			}
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAPIKeyAuthRepoError(t *testing.T) {
	repo := &mockAPIKeyRepo{err: errors.New("db down")}
	protected := APIKeyAuth(repo, []byte("pepper"))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("X-API-Key", "any")
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
