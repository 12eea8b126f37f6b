package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yawwnann/fintrack/internal/auth"
	"github.com/yawwnann/fintrack/internal/ledger"
	"github.com/yawwnann/fintrack/internal/predict"
	"github.com/yawwnann/fintrack/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewRepository(":memory:")
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	predictSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"predicted_expense": 50000}`)
	}))
	t.Cleanup(predictSrv.Close)

	authSvc := auth.NewService(repo, auth.NewTokenManager("server-test-secret", time.Hour))
	ledgerSvc := ledger.NewService(repo, nil)
	predictSvc := predict.NewService(repo, predict.NewClient(predictSrv.URL))

	srv := NewServer(Options{Addr: ":0", AllowedOrigin: "*", RequestsPerMinute: 10_000},
		authSvc, ledgerSvc, predictSvc)
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, parsed
}

func registerUser(t *testing.T, srv *Server, email string, initialBalance int64) string {
	t.Helper()
	rec, body := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":          email,
		"name":           "Test User",
		"password":       "hunter22",
		"initialBalance": initialBalance,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", rec.Code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("register returned no token")
	}
	return token
}

func mainAccountID(t *testing.T, srv *Server, token string) int64 {
	t.Helper()
	rec, body := doJSON(t, srv, http.MethodGet, "/api/accounts", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list accounts status = %d", rec.Code)
	}
	accounts := body["accounts"].([]any)
	if len(accounts) == 0 {
		t.Fatal("no accounts")
	}
	return int64(accounts[0].(map[string]any)["id"].(float64))
}

func TestRegisterLoginFlow(t *testing.T) {
	srv := newTestServer(t)

	token := registerUser(t, srv, "flow@example.com", 100_000)
	if id := mainAccountID(t, srv, token); id == 0 {
		t.Fatal("expected default account")
	}

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "flow@example.com", "password": "hunter22",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", rec.Code)
	}

	rec, body := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "flow@example.com", "password": "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	if tok, _ := body["token"].(string); tok == "" {
		t.Fatal("login returned no token")
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "flow@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/accounts", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rec.Code)
	}

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/accounts", "not-a-real-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}
}

func TestExpenseFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "exp@example.com", 100_000)
	accountID := mainAccountID(t, srv, token)

	rec, body := doJSON(t, srv, http.MethodPost, "/api/expenses", token, map[string]any{
		"accountId": accountID,
		"amount":    30_000,
		"date":      "2026-05-10",
		"category":  "Food",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d, body %v", rec.Code, body)
	}
	if got := body["newAccountBalance"].(float64); got != 70_000 {
		t.Fatalf("newAccountBalance = %v, want 70000", got)
	}

	// Over-budget expense carries the balance detail in the payload.
	rec, body = doJSON(t, srv, http.MethodPost, "/api/expenses", token, map[string]any{
		"accountId": accountID,
		"amount":    100_000,
		"date":      "2026-05-11",
		"category":  "Rent",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("insufficient funds status = %d, want 400", rec.Code)
	}
	if got := body["accountBalance"].(float64); got != 70_000 {
		t.Fatalf("accountBalance = %v, want 70000", got)
	}
	if got := body["requestedAmount"].(float64); got != 100_000 {
		t.Fatalf("requestedAmount = %v, want 100000", got)
	}

	// Decimal string amounts are accepted too.
	rec, body = doJSON(t, srv, http.MethodPost, "/api/expenses", token, map[string]any{
		"accountId": accountID,
		"amount":    "150.50",
		"date":      "2026-05-12",
		"category":  "Transport",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("decimal amount status = %d, body %v", rec.Code, body)
	}
	expense := body["expense"].(map[string]any)
	if got := expense["amount"].(float64); got != 15050 {
		t.Fatalf("amount = %v, want 15050 cents", got)
	}
}

func TestTransferFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "tr@example.com", 100_000)
	srcID := mainAccountID(t, srv, token)

	rec, body := doJSON(t, srv, http.MethodPost, "/api/accounts", token, map[string]any{
		"name": "Savings", "type": "Savings", "initialBalance": 10_000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account status = %d", rec.Code)
	}
	dstID := int64(body["account"].(map[string]any)["id"].(float64))

	rec, body = doJSON(t, srv, http.MethodPost, "/api/transfers", token, map[string]any{
		"sourceAccountId":      srcID,
		"destinationAccountId": dstID,
		"amount":               40_000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("transfer status = %d, body %v", rec.Code, body)
	}
	details := body["transferDetails"].(map[string]any)
	if got := details["sourceBalance"].(float64); got != 60_000 {
		t.Fatalf("sourceBalance = %v, want 60000", got)
	}
	if got := details["destinationBalance"].(float64); got != 50_000 {
		t.Fatalf("destinationBalance = %v, want 50000", got)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/transfers", token, map[string]any{
		"sourceAccountId":      srcID,
		"destinationAccountId": srcID,
		"amount":               1_000,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self transfer status = %d, want 400", rec.Code)
	}
}

func TestGoalAllocationFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "goal@example.com", 300_000)
	accountID := mainAccountID(t, srv, token)

	rec, body := doJSON(t, srv, http.MethodPost, "/api/saving-goals", token, map[string]any{
		"name": "Vacation", "targetAmount": 200_000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal status = %d", rec.Code)
	}
	goalID := int64(body["goal"].(map[string]any)["id"].(float64))

	rec, body = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/saving-goals/%d/allocate", goalID), token, map[string]any{
		"sourceAccountId": accountID,
		"amount":          150_000,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("allocate status = %d, body %v", rec.Code, body)
	}

	// Overshooting the target reports the remaining headroom.
	rec, body = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/saving-goals/%d/allocate", goalID), token, map[string]any{
		"sourceAccountId": accountID,
		"amount":          60_000,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("overshoot status = %d, want 400", rec.Code)
	}
	if got := body["remainingTarget"].(float64); got != 50_000 {
		t.Fatalf("remainingTarget = %v, want 50000", got)
	}
}

func TestOwnershipAcrossUsers(t *testing.T) {
	srv := newTestServer(t)
	ownerToken := registerUser(t, srv, "owner@example.com", 100_000)
	intruderToken := registerUser(t, srv, "intruder@example.com", 0)
	accountID := mainAccountID(t, srv, ownerToken)

	rec, _ := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/accounts/%d", accountID), intruderToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cross-user account read status = %d, want 403", rec.Code)
	}
}

func TestTotalBalanceAndPredict(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "sum@example.com", 100_000)
	accountID := mainAccountID(t, srv, token)

	rec, body := doJSON(t, srv, http.MethodGet, "/api/users/balance", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance status = %d", rec.Code)
	}
	if got := body["totalBalance"].(float64); got != 100_000 {
		t.Fatalf("totalBalance = %v, want 100000", got)
	}

	date := time.Now().UTC().Format("2006-01-02")
	if rec, _ := doJSON(t, srv, http.MethodPost, "/api/expenses", token, map[string]any{
		"accountId": accountID, "amount": 20_000, "date": date, "category": "Food",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d", rec.Code)
	}

	rec, body = doJSON(t, srv, http.MethodPost, "/api/predict-expense", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("predict status = %d, body %v", rec.Code, body)
	}
	if got := body["predictedExpense"].(float64); got != 50_000 {
		t.Fatalf("predictedExpense = %v, want 50000", got)
	}
}

func TestNotFoundAndBadID(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "nf@example.com", 0)

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/expenses/9999", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing expense status = %d, want 404", rec.Code)
	}

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/expenses/abc", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/accounts", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec, _ := doJSON(t, srv, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, rec.Code)
		}
	}
}
