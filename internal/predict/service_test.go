package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yawwnann/fintrack/internal/core"
	"github.com/yawwnann/fintrack/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(":memory:")
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedExpense(t *testing.T, repo *storage.Repository, userID, accountID int64, cents int64, date time.Time) {
	t.Helper()
	_, err := repo.CreateExpense(context.Background(), core.Expense{
		UserID:    userID,
		AccountID: accountID,
		Amount:    core.Money{Cents: cents},
		Date:      date,
		Category:  "Misc",
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
}

func TestClientPredict(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("path = %q, want /predict", r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"predicted_expense": 123456.7}`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Predict(context.Background(), []int64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got.Cents != 123457 {
		t.Fatalf("predicted = %d, want rounded 123457", got.Cents)
	}

	var req struct {
		Series []int64 `json:"last_6_months_data"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if len(req.Series) != 6 || req.Series[0] != 1 || req.Series[5] != 6 {
		t.Fatalf("request series = %v", req.Series)
	}
}

func TestClientPredictServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Predict(context.Background(), []int64{1}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestRefreshRecommendation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, core.User{Email: "p@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	acct, err := repo.CreateAccount(ctx, core.Account{UserID: u.ID, Name: "Main"})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	seedExpense(t, repo, u.ID, acct.ID, 10_000, time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC))
	seedExpense(t, repo, u.ID, acct.ID, 20_000, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC))

	var gotSeries []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Series []int64 `json:"last_6_months_data"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotSeries = req.Series
		fmt.Fprint(w, `{"predicted_expense": 15000}`)
	}))
	defer srv.Close()

	svc := NewService(repo, NewClient(srv.URL))
	rec, err := svc.RefreshRecommendation(ctx, u.ID, now)
	if err != nil {
		t.Fatalf("RefreshRecommendation: %v", err)
	}
	if rec.Amount.Cents != 15_000 {
		t.Fatalf("recommendation = %d, want 15000", rec.Amount.Cents)
	}
	if want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC); !rec.Month.Equal(want) {
		t.Fatalf("recommendation month = %v, want %v", rec.Month, want)
	}

	want := []int64{0, 0, 0, 0, 10_000, 20_000}
	if len(gotSeries) != len(want) {
		t.Fatalf("series length = %d, want %d", len(gotSeries), len(want))
	}
	for i := range want {
		if gotSeries[i] != want[i] {
			t.Fatalf("series = %v, want %v", gotSeries, want)
		}
	}

	// Refreshing again replaces the stored row instead of conflicting.
	if _, err := svc.RefreshRecommendation(ctx, u.ID, now); err != nil {
		t.Fatalf("second RefreshRecommendation: %v", err)
	}

	stored, err := svc.Recommendation(ctx, u.ID, now)
	if err != nil {
		t.Fatalf("Recommendation: %v", err)
	}
	if stored.Amount.Cents != 15_000 {
		t.Fatalf("stored recommendation = %d, want 15000", stored.Amount.Cents)
	}
}

func TestRefreshRecommendationNoHistorySkipsService(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, core.User{Email: "empty@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		fmt.Fprint(w, `{"predicted_expense": 999}`)
	}))
	defer srv.Close()

	svc := NewService(repo, NewClient(srv.URL))
	rec, err := svc.RefreshRecommendation(ctx, u.ID, time.Now())
	if err != nil {
		t.Fatalf("RefreshRecommendation: %v", err)
	}
	if called {
		t.Fatal("prediction service should not be called without history")
	}
	if rec.Amount.Cents != 0 {
		t.Fatalf("recommendation = %d, want 0", rec.Amount.Cents)
	}
}
