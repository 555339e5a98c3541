package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sandwichcheck/cache"
	"sandwichcheck/config"
	"sandwichcheck/logger"
	"sandwichcheck/sandwich"
	"sandwichcheck/types"

	"github.com/google/uuid"
)

const CacheControl = "public, s-maxage=3600, stale-while-revalidate=600"

type Analyzer interface {
	Analyze(ctx context.Context, wallet string) (*types.WalletReport, error)
}

// Server exposes wallet checks over HTTP.
type Server struct {
	analyzer Analyzer
	validate func(string) error
	cache    cache.ReportCache
	limiter  *Limiter
	mux      *http.ServeMux
	server   *http.Server
	Logger   *slog.Logger
}

// NewServer wires the routes. validate and reportCache may be nil.
func NewServer(addr string, analyzer Analyzer, validate func(string) error, reportCache cache.ReportCache) *Server {
	mux := http.NewServeMux()
	s := &Server{
		analyzer: analyzer,
		validate: validate,
		cache:    reportCache,
		limiter:  NewLimiter(config.API_RATE_LIMIT, config.API_RATE_WINDOW),
		mux:      mux,
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logger.GlobalLogger
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/sandwich-check/{wallet}", s.handleCheck)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.log().Info("HTTP server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErr(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// requestID keeps a caller-supplied X-Request-Id, else makes a new one.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	w.Header().Set("X-Request-Id", reqID)
	ip := ClientIP(r)
	if !s.limiter.Allow(ip) {
		writeErr(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a minute.")
		return
	}

	wallet := r.PathValue("wallet")
	if wallet == "" || (s.validate != nil && s.validate(wallet) != nil) {
		writeErr(w, http.StatusBadRequest, "Invalid Solana wallet address")
		return
	}

	ctx := r.Context()
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, wallet)
		if err != nil {
			s.log().Warn("Report cache read failed", "request_id", reqID, "wallet", wallet, "err", err)
		} else if ok {
			w.Header().Set("Cache-Control", CacheControl)
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	report, err := s.analyzer.Analyze(ctx, wallet)
	if err != nil {
		s.log().Error("Sandwich check failed", "request_id", reqID, "wallet", wallet, "ip", ip, "err", err)
		switch {
		case errors.Is(err, sandwich.ErrInvalidInput):
			writeErr(w, http.StatusBadRequest, "Invalid Solana wallet address")
		case errors.Is(err, sandwich.ErrUpstreamUnavailable):
			writeErr(w, http.StatusBadGateway, "Ledger service unavailable. Please try again.")
		default:
			writeErr(w, http.StatusInternalServerError, "Failed to analyze wallet. Please try again.")
		}
		return
	}

	out := types.SerializeReport(report)
	if s.cache != nil {
		if err := s.cache.Set(ctx, wallet, out); err != nil {
			s.log().Warn("Report cache write failed", "wallet", wallet, "err", err)
		}
	}
	w.Header().Set("Cache-Control", CacheControl)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
