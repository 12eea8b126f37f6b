package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yawwnann/fintrack/internal/auth"
	"github.com/yawwnann/fintrack/internal/config"
	"github.com/yawwnann/fintrack/internal/core"
	"github.com/yawwnann/fintrack/internal/ledger"
	"github.com/yawwnann/fintrack/internal/storage"
)

// Seeds a demo user with a few months of ledger history for local
// development. Running it twice is a no-op: the duplicate email check
// stops the second run.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	secret := cfg.JWTSecret
	if secret == "" {
		secret = "seed-only-secret"
	}
	authSvc := auth.NewService(repo, auth.NewTokenManager(secret, time.Hour))
	ledgerSvc := ledger.NewService(repo, nil)

	ctx := context.Background()

	user, _, err := authSvc.Register(ctx, "demo@fintrack.local", "Demo User", "password123", core.Money{Cents: 500_000})
	if err != nil {
		logger.Error("Failed to create demo user (already seeded?)", "error", err)
		os.Exit(1)
	}
	logger.Info("Created demo user", "user_id", user.ID, "email", user.Email)

	accounts, err := ledgerSvc.ListAccounts(ctx, user.ID)
	if err != nil || len(accounts) == 0 {
		logger.Error("Failed to load default account", "error", err)
		os.Exit(1)
	}
	mainAcct := accounts[0]

	savings, err := ledgerSvc.CreateAccount(ctx, user.ID, "Savings", "Savings", core.Money{Cents: 100_000})
	if err != nil {
		logger.Error("Failed to create savings account", "error", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	monthsAgo := func(n int, day int) time.Time {
		return time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
	}

	incomes := []core.Income{
		{AccountID: mainAcct.ID, Amount: core.Money{Cents: 350_000}, Date: monthsAgo(2, 1), Source: "Salary"},
		{AccountID: mainAcct.ID, Amount: core.Money{Cents: 350_000}, Date: monthsAgo(1, 1), Source: "Salary"},
		{AccountID: mainAcct.ID, Amount: core.Money{Cents: 350_000}, Date: monthsAgo(0, 1), Source: "Salary"},
	}
	for _, in := range incomes {
		if _, _, err := ledgerSvc.CreateIncome(ctx, user.ID, in); err != nil {
			logger.Error("Failed to seed income", "error", err)
			os.Exit(1)
		}
	}

	expenses := []core.Expense{
		{AccountID: mainAcct.ID, Amount: core.Money{Cents: 120_000}, Date: monthsAgo(2, 3), Category: "Rent"},
		{AccountID: mainAcct.ID, Amount: core.Money{Cents: 42_500}, Date: monthsAgo(2, 8), Category: "Groceries"},
		{AccountID: mainAcct.ID, Amount: core.Money{Cents: 120_000}, Date: monthsAgo(1, 3), Category: "Rent"},
		{AccountID: mainAcct.ID, Amount: core.Money{Cents: 38_900}, Date: monthsAgo(1, 12), Category: "Groceries", Description: "weekly shop"},
		{AccountID: mainAcct.ID, Amount: core.Money{Cents: 15_000}, Date: monthsAgo(1, 20), Category: "Transport"},
		{AccountID: mainAcct.ID, Amount: core.Money{Cents: 120_000}, Date: monthsAgo(0, 3), Category: "Rent"},
		{AccountID: mainAcct.ID, Amount: core.Money{Cents: 27_400}, Date: monthsAgo(0, 9), Category: "Groceries"},
	}
	for _, e := range expenses {
		if _, _, err := ledgerSvc.CreateExpense(ctx, user.ID, e); err != nil {
			logger.Error("Failed to seed expense", "error", err)
			os.Exit(1)
		}
	}

	if _, err := ledgerSvc.Transfer(ctx, user.ID, mainAcct.ID, savings.ID, core.Money{Cents: 50_000}, "monthly savings"); err != nil {
		logger.Error("Failed to seed transfer", "error", err)
		os.Exit(1)
	}

	goal, err := ledgerSvc.CreateSavingGoal(ctx, user.ID, core.SavingGoal{
		Name:         "Emergency Fund",
		TargetAmount: core.Money{Cents: 1_000_000},
	})
	if err != nil {
		logger.Error("Failed to seed saving goal", "error", err)
		os.Exit(1)
	}
	if _, err := ledgerSvc.Allocate(ctx, user.ID, goal.ID, mainAcct.ID, core.Money{Cents: 150_000}); err != nil {
		logger.Error("Failed to seed goal allocation", "error", err)
		os.Exit(1)
	}

	total, err := ledgerSvc.TotalBalance(ctx, user.ID)
	if err != nil {
		logger.Error("Failed to read total balance", "error", err)
		os.Exit(1)
	}
	logger.Info("Seed complete",
		"email", user.Email,
		"accounts", 2,
		"total_balance_cents", total.Cents)
}
