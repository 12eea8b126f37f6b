// Package http exposes the REST API over the ledger, auth, and predict
// services.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yawwnann/fintrack/internal/auth"
	"github.com/yawwnann/fintrack/internal/core"
	"github.com/yawwnann/fintrack/internal/ledger"
	"github.com/yawwnann/fintrack/internal/middleware/ratelimit"
	"github.com/yawwnann/fintrack/internal/middleware/security"
	"github.com/yawwnann/fintrack/internal/middleware/trace"
	"github.com/yawwnann/fintrack/internal/predict"
)

type contextKey string

const userIDKey contextKey = "user_id"

type Server struct {
	httpServer *http.Server
	limiter    *ratelimit.Limiter

	auth    *auth.Service
	ledger  *ledger.Service
	predict *predict.Service
}

type Options struct {
	Addr              string
	AllowedOrigin     string
	RequestsPerMinute int
}

// NewServer wires routes and the middleware chain, returning a
// ready-to-run server.
func NewServer(opts Options, authSvc *auth.Service, ledgerSvc *ledger.Service, predictSvc *predict.Service) *Server {
	s := &Server{
		auth:    authSvc,
		ledger:  ledgerSvc,
		predict: predictSvc,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("GET /api/accounts", s.authenticated(s.handleListAccounts))
	mux.Handle("POST /api/accounts", s.authenticated(s.handleCreateAccount))
	mux.Handle("GET /api/accounts/{id}", s.authenticated(s.handleGetAccount))
	mux.Handle("PUT /api/accounts/{id}", s.authenticated(s.handleUpdateAccount))
	mux.Handle("DELETE /api/accounts/{id}", s.authenticated(s.handleDeleteAccount))
	mux.Handle("POST /api/accounts/{id}/deposit", s.authenticated(s.handleDeposit))

	mux.Handle("GET /api/expenses", s.authenticated(s.handleListExpenses))
	mux.Handle("POST /api/expenses", s.authenticated(s.handleCreateExpense))
	mux.Handle("GET /api/expenses/{id}", s.authenticated(s.handleGetExpense))
	mux.Handle("PUT /api/expenses/{id}", s.authenticated(s.handleUpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", s.authenticated(s.handleDeleteExpense))

	mux.Handle("GET /api/incomes", s.authenticated(s.handleListIncomes))
	mux.Handle("POST /api/incomes", s.authenticated(s.handleCreateIncome))
	mux.Handle("GET /api/incomes/{id}", s.authenticated(s.handleGetIncome))
	mux.Handle("PUT /api/incomes/{id}", s.authenticated(s.handleUpdateIncome))
	mux.Handle("DELETE /api/incomes/{id}", s.authenticated(s.handleDeleteIncome))

	mux.Handle("GET /api/transfers", s.authenticated(s.handleListTransfers))
	mux.Handle("POST /api/transfers", s.authenticated(s.handleCreateTransfer))

	mux.Handle("GET /api/saving-goals", s.authenticated(s.handleListGoals))
	mux.Handle("POST /api/saving-goals", s.authenticated(s.handleCreateGoal))
	mux.Handle("GET /api/saving-goals/{id}", s.authenticated(s.handleGetGoal))
	mux.Handle("PUT /api/saving-goals/{id}", s.authenticated(s.handleUpdateGoal))
	mux.Handle("DELETE /api/saving-goals/{id}", s.authenticated(s.handleDeleteGoal))
	mux.Handle("POST /api/saving-goals/{id}/allocate", s.authenticated(s.handleAllocate))

	mux.Handle("GET /api/users/balance", s.authenticated(s.handleTotalBalance))
	mux.Handle("POST /api/predict-expense", s.authenticated(s.handlePredictExpense))

	traceMW := trace.NewMiddleware(extractClientIP)
	headersMW := security.NewHeadersMiddleware(security.HeadersConfig{AllowedOrigin: opts.AllowedOrigin})
	limitMW := s.limiter.Middleware(extractClientIP)

	handler := traceMW.Middleware(headersMW.Middleware(limitMW(mux)))

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) ListenAndServe() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.httpServer.Shutdown(ctx)
}

// authenticated resolves the bearer token and stores the acting user id
// in the request context.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, r, core.ErrUnauthenticated)
			return
		}

		userID, err := s.auth.Verify(token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

// pathID parses the {id} wildcard of the matched route.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", core.ErrInvalidInput)
	}
	return id, nil
}

func extractClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
