package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/logger"
	"github.com/mesias/mswdo-backend/pkg/testutil"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestError_AppError(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, fmt.Errorf("verify: %w", errors.StateConflict("application is not pending")))

	assert.Equal(t, http.StatusConflict, rr.Code)
	resp := decode(t, rr)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "STATE_CONFLICT", resp.Error.Code)
	assert.Equal(t, "application is not pending", resp.Error.Message)
}

func TestError_PlainErrorIsHidden(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, fmt.Errorf("pq: relation \"users\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "relation")
	assert.Equal(t, "INTERNAL_ERROR", decode(t, rr).Error.Code)
}

func TestJSONWithMeta(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONWithMeta(rr, http.StatusOK, []string{"a"}, PageMeta(2, 10, 21))

	testutil.AssertJSONBody(t, rr, Response{
		Success: true,
		Data:    []string{"a"},
		Meta:    &Meta{Page: 2, PerPage: 10, Total: 21, TotalPages: 3},
	})
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query        string
		page, perPag int
	}{
		{"", 1, 20},
		{"page=3&per_page=50", 3, 50},
		{"page=-1&per_page=1000", 1, 20},
		{"page=abc", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/applications?"+tt.query, nil)
			page, perPage := Pagination(r)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.perPag, perPage)
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	type body struct {
		Email string `json:"email" validate:"required,email"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	err := DecodeAndValidate(r, &body{})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	r = testutil.NewHTTPRequest(http.MethodPost, "/", body{Email: "nope"})
	err = DecodeAndValidate(r, &body{})
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "must be a valid email address", appErr.Details["email"])
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rr := testutil.ExecuteRequest(h, testutil.WithRequestID(httptest.NewRequest(http.MethodGet, "/", nil), "req-42"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "req-42", seen)
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := testutil.ExecuteRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	testutil.AssertBodyContains(t, rr, "INTERNAL_ERROR")
}

func TestLogger_RecordsActorSetByInnerHandler(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("mswdo-test", &buf)

	h := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor.WithActor(r.Context(), &actor.Actor{ID: "user-7", Role: "bhw"})
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/programs", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "user-7", entry["user_id"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, "/api/programs", entry["path"])
}
