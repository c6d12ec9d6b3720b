package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesias/mswdo-backend/internal/auth/jwt"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/config"
)

func newManager() *jwt.Manager {
	return jwt.NewManager(&config.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "mswdo-test"})
}

// echo writes the authenticated actor back so tests can inspect it.
var echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	a := actor.FromContext(r.Context())
	_ = json.NewEncoder(w).Encode(a)
})

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAuthenticate(t *testing.T) {
	m := newManager()
	tok, err := m.Generate("user-1", "bhw")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{"missing header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, "TOKEN_INVALID"},
		{"valid", "Bearer " + tok.AccessToken, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + tok.AccessToken, http.StatusOK, ""},
	}

	h := Authenticate(m)(echo)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorCode(t, rr))
				return
			}
			var a actor.Actor
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &a))
			assert.Equal(t, "user-1", a.ID)
			assert.Equal(t, "bhw", a.Role)
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := newManager()
	h := Authenticate(m)(RequireRole("mswdo", "admin")(echo))

	for role, want := range map[string]int{
		"admin":       http.StatusOK,
		"mswdo":       http.StatusOK,
		"bhw":         http.StatusForbidden,
		"beneficiary": http.StatusForbidden,
	} {
		t.Run(role, func(t *testing.T) {
			tok, err := m.Generate("u-"+role, role)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, want, rr.Code)
		})
	}
}

func TestRequireRole_WithoutActor(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireRole("admin")(echo).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
