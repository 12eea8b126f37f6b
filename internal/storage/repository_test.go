package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/yawwnann/fintrack/internal/core"
)

type RepositorySuite struct {
	suite.Suite
	repo *Repository
	ctx  context.Context
}

func (s *RepositorySuite) SetupTest() {
	repo, err := NewRepository(":memory:")
	require.NoError(s.T(), err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RepositorySuite) TearDownTest() {
	s.repo.Close()
}

func (s *RepositorySuite) mustUser(email string) core.User {
	u, err := s.repo.CreateUser(s.ctx, core.User{Email: email, Name: "Test User", PasswordHash: "x"})
	s.Require().NoError(err)
	return u
}

func (s *RepositorySuite) mustAccount(userID int64, name string, cents int64) core.Account {
	a, err := s.repo.CreateAccount(s.ctx, core.Account{
		UserID:         userID,
		Name:           name,
		Type:           "General",
		CurrentBalance: core.Money{Cents: cents},
	})
	s.Require().NoError(err)
	return a
}

func (s *RepositorySuite) TestCreateUserDuplicateEmail() {
	s.mustUser("dup@example.com")
	_, err := s.repo.CreateUser(s.ctx, core.User{Email: "dup@example.com", PasswordHash: "y"})
	s.ErrorIs(err, core.ErrConflict)
}

func (s *RepositorySuite) TestGetUserByEmailNotFound() {
	_, err := s.repo.GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *RepositorySuite) TestAccountLifecycle() {
	u := s.mustUser("acct@example.com")
	a := s.mustAccount(u.ID, "Main Account", 50_00)

	got, err := s.repo.GetAccount(s.ctx, a.ID)
	s.NoError(err)
	s.Equal(int64(50_00), got.CurrentBalance.Cents)

	s.NoError(s.repo.UpdateAccountInfo(s.ctx, a.ID, "Renamed", "Savings"))
	s.NoError(s.repo.UpdateAccountBalance(s.ctx, a.ID, core.Money{Cents: 75_00}))

	got, err = s.repo.GetAccount(s.ctx, a.ID)
	s.NoError(err)
	s.Equal("Renamed", got.Name)
	s.Equal("Savings", got.Type)
	s.Equal(int64(75_00), got.CurrentBalance.Cents)

	s.NoError(s.repo.DeleteAccount(s.ctx, a.ID))
	_, err = s.repo.GetAccount(s.ctx, a.ID)
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *RepositorySuite) TestTotalBalanceByUser() {
	u := s.mustUser("total@example.com")
	s.mustAccount(u.ID, "A", 10_00)
	s.mustAccount(u.ID, "B", 25_50)

	other := s.mustUser("other@example.com")
	s.mustAccount(other.ID, "C", 999_99)

	total, err := s.repo.TotalBalanceByUser(s.ctx, u.ID)
	s.NoError(err)
	s.Equal(int64(35_50), total.Cents)
}

func (s *RepositorySuite) TestExpenseCRUD() {
	u := s.mustUser("exp@example.com")
	a := s.mustAccount(u.ID, "Main", 100_00)

	e, err := s.repo.CreateExpense(s.ctx, core.Expense{
		UserID:    u.ID,
		AccountID: a.ID,
		Amount:    core.Money{Cents: 12_34},
		Date:      time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Category:  "Food",
	})
	s.NoError(err)
	s.NotZero(e.ID)

	got, err := s.repo.GetExpense(s.ctx, e.ID)
	s.NoError(err)
	s.Equal(int64(12_34), got.Amount.Cents)
	s.Equal("Food", got.Category)

	got.Amount = core.Money{Cents: 20_00}
	got.Description = "groceries"
	s.NoError(s.repo.UpdateExpense(s.ctx, got))

	got, err = s.repo.GetExpense(s.ctx, e.ID)
	s.NoError(err)
	s.Equal(int64(20_00), got.Amount.Cents)
	s.Equal("groceries", got.Description)

	s.NoError(s.repo.DeleteExpense(s.ctx, e.ID))
	s.ErrorIs(s.repo.DeleteExpense(s.ctx, e.ID), core.ErrNotFound)
}

func (s *RepositorySuite) TestMonthlyExpenseTotal() {
	u := s.mustUser("month@example.com")
	a := s.mustAccount(u.ID, "Main", 0)

	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	april := march.AddDate(0, 1, 0)

	for _, e := range []core.Expense{
		{UserID: u.ID, AccountID: a.ID, Amount: core.Money{Cents: 10_00}, Date: march.AddDate(0, 0, 4), Category: "Food"},
		{UserID: u.ID, AccountID: a.ID, Amount: core.Money{Cents: 5_00}, Date: march.AddDate(0, 0, 20), Category: "Transport"},
		{UserID: u.ID, AccountID: a.ID, Amount: core.Money{Cents: 99_00}, Date: april, Category: "Rent"},
	} {
		_, err := s.repo.CreateExpense(s.ctx, e)
		s.Require().NoError(err)
	}

	total, err := s.repo.MonthlyExpenseTotal(s.ctx, u.ID, march, april)
	s.NoError(err)
	s.Equal(int64(15_00), total.Cents)
}

func (s *RepositorySuite) TestSavingGoalProgress() {
	u := s.mustUser("goal@example.com")
	g, err := s.repo.CreateSavingGoal(s.ctx, core.SavingGoal{
		UserID:       u.ID,
		Name:         "Vacation",
		TargetAmount: core.Money{Cents: 500_00},
	})
	s.NoError(err)

	s.NoError(s.repo.UpdateSavingGoalProgress(s.ctx, g.ID, core.Money{Cents: 500_00}, true))

	got, err := s.repo.GetSavingGoal(s.ctx, g.ID)
	s.NoError(err)
	s.True(got.IsCompleted)
	s.Equal(int64(500_00), got.CurrentSavedAmount.Cents)
}

func (s *RepositorySuite) TestTransferAuditRow() {
	u := s.mustUser("transfer@example.com")
	src := s.mustAccount(u.ID, "Src", 100_00)
	dst := s.mustAccount(u.ID, "Dst", 0)

	t, err := s.repo.CreateTransfer(s.ctx, core.Transfer{
		Reference:            "TRF-abc",
		UserID:               u.ID,
		SourceAccountID:      src.ID,
		DestinationAccountID: dst.ID,
		Amount:               core.Money{Cents: 40_00},
	})
	s.NoError(err)
	s.NotZero(t.ID)

	// Reference must be unique.
	_, err = s.repo.CreateTransfer(s.ctx, core.Transfer{
		Reference:            "TRF-abc",
		UserID:               u.ID,
		SourceAccountID:      src.ID,
		DestinationAccountID: dst.ID,
		Amount:               core.Money{Cents: 1_00},
	})
	s.True(IsUniqueViolation(err))

	in, err := s.repo.SumTransfersIn(s.ctx, dst.ID)
	s.NoError(err)
	s.Equal(int64(40_00), in.Cents)

	out, err := s.repo.SumTransfersOut(s.ctx, src.ID)
	s.NoError(err)
	s.Equal(int64(40_00), out.Cents)
}

func (s *RepositorySuite) TestCountAccountLedgerEntries() {
	u := s.mustUser("count@example.com")
	a := s.mustAccount(u.ID, "Main", 100_00)
	b := s.mustAccount(u.ID, "Other", 0)

	n, err := s.repo.CountAccountLedgerEntries(s.ctx, a.ID)
	s.NoError(err)
	s.Zero(n)

	_, err = s.repo.CreateExpense(s.ctx, core.Expense{
		UserID: u.ID, AccountID: a.ID, Amount: core.Money{Cents: 1_00},
		Date: time.Now(), Category: "Misc",
	})
	s.Require().NoError(err)
	_, err = s.repo.CreateTransfer(s.ctx, core.Transfer{
		Reference: "TRF-1", UserID: u.ID,
		SourceAccountID: a.ID, DestinationAccountID: b.ID,
		Amount: core.Money{Cents: 2_00},
	})
	s.Require().NoError(err)

	n, err = s.repo.CountAccountLedgerEntries(s.ctx, a.ID)
	s.NoError(err)
	s.Equal(int64(2), n)
}

func (s *RepositorySuite) TestWithTxRollsBackOnError() {
	u := s.mustUser("tx@example.com")
	a := s.mustAccount(u.ID, "Main", 100_00)

	sentinel := errors.New("boom")
	err := s.repo.WithTx(s.ctx, func(q *Queries) error {
		if err := q.UpdateAccountBalance(s.ctx, a.ID, core.Money{Cents: 0}); err != nil {
			return err
		}
		return sentinel
	})
	s.ErrorIs(err, sentinel)

	got, err := s.repo.GetAccount(s.ctx, a.ID)
	s.NoError(err)
	s.Equal(int64(100_00), got.CurrentBalance.Cents)
}

func (s *RepositorySuite) TestWithTxCommits() {
	u := s.mustUser("tx2@example.com")
	a := s.mustAccount(u.ID, "Main", 100_00)
	b := s.mustAccount(u.ID, "Second", 0)

	err := s.repo.WithTx(s.ctx, func(q *Queries) error {
		if err := q.UpdateAccountBalance(s.ctx, a.ID, core.Money{Cents: 60_00}); err != nil {
			return err
		}
		return q.UpdateAccountBalance(s.ctx, b.ID, core.Money{Cents: 40_00})
	})
	s.NoError(err)

	gotA, _ := s.repo.GetAccount(s.ctx, a.ID)
	gotB, _ := s.repo.GetAccount(s.ctx, b.ID)
	s.Equal(int64(60_00), gotA.CurrentBalance.Cents)
	s.Equal(int64(40_00), gotB.CurrentBalance.Cents)
}

func (s *RepositorySuite) TestUpsertBudgetRecommendation() {
	u := s.mustUser("rec@example.com")
	month := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	s.NoError(s.repo.UpsertBudgetRecommendation(s.ctx, core.BudgetRecommendation{
		UserID: u.ID, Month: month, Amount: core.Money{Cents: 300_00},
	}))
	s.NoError(s.repo.UpsertBudgetRecommendation(s.ctx, core.BudgetRecommendation{
		UserID: u.ID, Month: month, Amount: core.Money{Cents: 275_00},
	}))

	got, err := s.repo.GetBudgetRecommendation(s.ctx, u.ID, month)
	s.NoError(err)
	s.Equal(int64(275_00), got.Amount.Cents)
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}
