package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sandwichcheck/cache"
	"sandwichcheck/logger"
	"sandwichcheck/sandwich"
	"sandwichcheck/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Discard()
}

const wallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

type fakeAnalyzer struct {
	calls int
	err   error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, w string) (*types.WalletReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &types.WalletReport{
		Wallet:            w,
		AttackCount:       2,
		TotalLossLamports: decimal.NewFromInt(150000000),
		TotalLossSOL:      0.15,
		AnalyzedAt:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func validate(w string) error {
	if w != wallet {
		return errors.New("bad address")
	}
	return nil
}

func get(t *testing.T, s *Server, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCheckReturnsReport(t *testing.T) {
	a := &fakeAnalyzer{}
	s := NewServer(":0", a, validate, nil)

	rec := get(t, s, "/api/sandwich-check/"+wallet, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, CacheControl, rec.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body types.WalletReportJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, wallet, body.Wallet)
	assert.Equal(t, 2, body.AttackCount)
	assert.Equal(t, "150000000", body.TotalLossLamports)
	assert.Equal(t, "2024-01-01T00:00:00Z", body.AnalyzedAt)
	assert.NotNil(t, body.Attacks)
}

func TestCheckRejectsInvalidWallet(t *testing.T) {
	a := &fakeAnalyzer{}
	s := NewServer(":0", a, validate, nil)

	rec := get(t, s, "/api/sandwich-check/not-a-wallet", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid Solana wallet address")
	assert.Zero(t, a.calls)
}

func TestCheckMapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: listing: boom", sandwich.ErrUpstreamUnavailable), http.StatusBadGateway},
		{fmt.Errorf("%w: off curve", sandwich.ErrInvalidInput), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		s := NewServer(":0", &fakeAnalyzer{err: c.err}, nil, nil)
		rec := get(t, s, "/api/sandwich-check/"+wallet, nil)
		assert.Equal(t, c.code, rec.Code, c.err.Error())
		assert.Empty(t, rec.Header().Get("Cache-Control"))
	}
}

func TestCheckRateLimitsPerClient(t *testing.T) {
	s := NewServer(":0", &fakeAnalyzer{}, validate, nil)
	first := map[string]string{"X-Forwarded-For": "1.1.1.1"}

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(t, s, "/api/sandwich-check/"+wallet, first).Code)
	}
	rec := get(t, s, "/api/sandwich-check/"+wallet, first)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	other := map[string]string{"X-Real-IP": "2.2.2.2"}
	assert.Equal(t, http.StatusOK, get(t, s, "/api/sandwich-check/"+wallet, other).Code)
}

func TestCheckUsesCache(t *testing.T) {
	a := &fakeAnalyzer{}
	s := NewServer(":0", a, validate, cache.NewMemoryCache(10, time.Hour))

	first := get(t, s, "/api/sandwich-check/"+wallet, map[string]string{"X-Real-IP": "a"})
	second := get(t, s, "/api/sandwich-check/"+wallet, map[string]string{"X-Real-IP": "b"})
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, a.calls)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, CacheControl, second.Header().Get("Cache-Control"))
}

func TestCheckOnlyServesGet(t *testing.T) {
	s := NewServer(":0", &fakeAnalyzer{}, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/sandwich-check/"+wallet, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := get(t, NewServer(":0", &fakeAnalyzer{}, nil, nil), "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCheckSetsRequestID(t *testing.T) {
	s := NewServer(":0", &fakeAnalyzer{}, nil, nil)

	rec := get(t, s, "/api/sandwich-check/"+wallet, map[string]string{"X-Request-Id": "abc"})
	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))

	rec = get(t, s, "/api/sandwich-check/"+wallet, map[string]string{"X-Real-IP": "other"})
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
}
