package common_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-logistik/internal/common"
)

func TestIdemReplaysStoredResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var calls int32
	handler := common.Idem{R: rdb, TTL: time.Minute}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		common.JSON(w, http.StatusCreated, map[string]any{"inserted_count": 2})
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/resi-vuoti/batch", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "abc")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	first := send()
	second := send()
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)
	require.JSONEq(t, first.Body.String(), second.Body.String())
	require.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIdemForgetsServerErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var calls int32
	handler := common.Idem{R: rdb, TTL: time.Minute}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "boom", nil)
	}))
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/batch", nil)
		req.Header.Set("Idempotency-Key", "k")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusInternalServerError, rr.Code)
	}
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdemRejectsInFlightDuplicate(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var inner http.Handler
	outer := common.Idem{R: rdb, TTL: time.Minute}
	inner = outer.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler := outer.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rr := httptest.NewRecorder()
		inner.ServeHTTP(rr, r)
		require.Equal(t, http.StatusConflict, rr.Code)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/batch", nil)
	req.Header.Set("Idempotency-Key", "same")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=1000", nil)
	page, perPage := common.ParsePagination(req, 20)
	require.Equal(t, 3, page)
	require.Equal(t, common.MaxPerPage, perPage)
	require.Equal(t, 2*common.MaxPerPage, common.Offset(page, perPage))

	req = httptest.NewRequest(http.MethodGet, "/?page=-1&limit=x", nil)
	page, perPage = common.ParsePagination(req, 20)
	require.Equal(t, 1, page)
	require.Equal(t, 20, perPage)

	p := common.NewPagination(2, 20, 41)
	require.Equal(t, 3, p.TotalPages)
}

func TestWriteAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	ok := common.WriteAppError(rr, common.BadRequest(common.CodeValidation, "bad").WithDetails([]string{"x"}))
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"error":{"code":"VALIDATION_FAILED","message":"bad","details":["x"]}}`, rr.Body.String())

	require.False(t, common.WriteAppError(httptest.NewRecorder(), http.ErrBodyNotAllowed))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4000"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	require.Equal(t, "192.168.1.5", common.ClientIP(req))

	req.RemoteAddr = "10.9.9.9"
	require.Equal(t, "10.9.9.9", common.ClientIP(req))

	req.RemoteAddr = ""
	require.Equal(t, "10.0.0.1", common.ClientIP(req))
	req.Header.Set("X-Real-IP", "10.0.0.7")
	require.Equal(t, "10.0.0.7", common.ClientIP(req))
}

func TestJSONPage(t *testing.T) {
	rr := httptest.NewRecorder()
	common.JSONPage(rr, []int{1, 2}, common.NewPagination(1, 2, 5))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "5", rr.Header().Get("X-Total-Count"))
	require.JSONEq(t, `{"data":[1,2],"pagination":{"page":1,"per_page":2,"total_items":5,"total_pages":3}}`, rr.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Depot string `json:"depot"`
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"depot":"D01"}`))
	require.True(t, common.DecodeJSON(rr, req, &dst))
	require.Equal(t, "D01", dst.Depot)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"depot":`))
	require.False(t, common.DecodeJSON(rr, req, &dst))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), common.CodeBadRequest)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"depot":"`+strings.Repeat("x", 64)+`"}`))
	req.Body = http.MaxBytesReader(rr, req.Body, 16)
	require.False(t, common.DecodeJSON(rr, req, &dst))
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestJSONValidation(t *testing.T) {
	rr := httptest.NewRecorder()
	common.JSONValidation(rr, []map[string]any{{"line": 2, "field": "quantity", "reason": "must be greater than 0"}})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"error":{"code":"VALIDATION_FAILED","message":"validation failed"},"errors":[{"line":2,"field":"quantity","reason":"must be greater than 0"}]}`, rr.Body.String())
}

func TestPrincipalContext(t *testing.T) {
	ctx := common.WithPrincipal(httptest.NewRequest(http.MethodGet, "/", nil).Context(), common.Principal{Subject: "op-1", Roles: []string{"resi:write"}})
	id, ok := common.UserID(ctx)
	require.True(t, ok)
	require.Equal(t, "op-1", id)
	p, _ := common.PrincipalFrom(ctx)
	require.True(t, p.HasRole("resi:write"))
	require.False(t, p.HasRole("admin"))
}
