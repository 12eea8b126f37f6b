package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/yawwnann/fintrack/internal/core"
	"github.com/yawwnann/fintrack/internal/storage"
)

// CreateExpense writes the entry and debits the account as one unit. The
// debit is guarded: it fails with InsufficientFundsError when the account
// cannot cover the amount.
func (s *Service) CreateExpense(ctx context.Context, userID int64, e core.Expense) (core.Expense, core.Money, error) {
	e.UserID = userID
	if err := e.Validate(); err != nil {
		return core.Expense{}, core.Money{}, err
	}

	var (
		created    core.Expense
		newBalance core.Money
	)
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		account, err := ownedAccount(ctx, q, e.AccountID, userID)
		if err != nil {
			return err
		}
		newBalance, err = applyDelta(ctx, q, account, e.Amount.Neg(), false)
		if err != nil {
			return err
		}
		created, err = q.CreateExpense(ctx, e)
		return err
	})
	if err != nil {
		return core.Expense{}, core.Money{}, err
	}

	slog.InfoContext(ctx, "expense created", "user_id", userID, "expense_id", created.ID, "amount_cents", created.Amount.Cents)
	s.notify(ctx, userID, "expense", "created")
	return created, newBalance, nil
}

func (s *Service) GetExpense(ctx context.Context, userID, expenseID int64) (core.Expense, error) {
	e, err := s.repo.GetExpense(ctx, expenseID)
	if err != nil {
		return core.Expense{}, err
	}
	if err := assertOwned(e, userID); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *Service) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.repo.ListExpensesByUser(ctx, userID)
}

// UpdateExpense applies the amount change as a balance delta. Only an
// amount increase is guarded; lowering the amount gives money back
// unconditionally.
func (s *Service) UpdateExpense(ctx context.Context, userID, expenseID int64, amount core.Money, date time.Time, category, description string) (core.Expense, core.Money, error) {
	var (
		updated    core.Expense
		newBalance core.Money
	)
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := assertOwned(existing, userID); err != nil {
			return err
		}

		updated = existing
		updated.Amount = amount
		updated.Date = date
		updated.Category = category
		updated.Description = description
		if err := updated.Validate(); err != nil {
			return err
		}

		account, err := ownedAccount(ctx, q, existing.AccountID, userID)
		if err != nil {
			return err
		}

		delta := core.Money{Cents: amount.Cents - existing.Amount.Cents}
		newBalance, err = applyDelta(ctx, q, account, delta.Neg(), delta.Cents <= 0)
		if err != nil {
			return err
		}
		return q.UpdateExpense(ctx, updated)
	})
	if err != nil {
		return core.Expense{}, core.Money{}, err
	}

	slog.InfoContext(ctx, "expense updated", "user_id", userID, "expense_id", expenseID)
	s.notify(ctx, userID, "expense", "updated")
	return updated, newBalance, nil
}

// DeleteExpense removes the entry and restores its amount to the account.
func (s *Service) DeleteExpense(ctx context.Context, userID, expenseID int64) (core.Money, error) {
	var newBalance core.Money
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := assertOwned(existing, userID); err != nil {
			return err
		}
		account, err := ownedAccount(ctx, q, existing.AccountID, userID)
		if err != nil {
			return err
		}
		newBalance, err = applyDelta(ctx, q, account, existing.Amount, true)
		if err != nil {
			return err
		}
		return q.DeleteExpense(ctx, expenseID)
	})
	if err != nil {
		return core.Money{}, err
	}

	slog.InfoContext(ctx, "expense deleted", "user_id", userID, "expense_id", expenseID)
	s.notify(ctx, userID, "expense", "deleted")
	return newBalance, nil
}

// CreateIncome writes the entry and credits the account as one unit.
func (s *Service) CreateIncome(ctx context.Context, userID int64, in core.Income) (core.Income, core.Money, error) {
	in.UserID = userID
	if err := in.Validate(); err != nil {
		return core.Income{}, core.Money{}, err
	}

	var (
		created    core.Income
		newBalance core.Money
	)
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		account, err := ownedAccount(ctx, q, in.AccountID, userID)
		if err != nil {
			return err
		}
		newBalance, err = applyDelta(ctx, q, account, in.Amount, true)
		if err != nil {
			return err
		}
		created, err = q.CreateIncome(ctx, in)
		return err
	})
	if err != nil {
		return core.Income{}, core.Money{}, err
	}

	slog.InfoContext(ctx, "income created", "user_id", userID, "income_id", created.ID, "amount_cents", created.Amount.Cents)
	s.notify(ctx, userID, "income", "created")
	return created, newBalance, nil
}

func (s *Service) GetIncome(ctx context.Context, userID, incomeID int64) (core.Income, error) {
	in, err := s.repo.GetIncome(ctx, incomeID)
	if err != nil {
		return core.Income{}, err
	}
	if err := assertOwned(in, userID); err != nil {
		return core.Income{}, err
	}
	return in, nil
}

func (s *Service) ListIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	return s.repo.ListIncomesByUser(ctx, userID)
}

// UpdateIncome applies newAmount-oldAmount to the balance. Income deltas
// are never guarded, so lowering a past income can take the balance
// negative.
func (s *Service) UpdateIncome(ctx context.Context, userID, incomeID int64, amount core.Money, date time.Time, source, description string) (core.Income, core.Money, error) {
	var (
		updated    core.Income
		newBalance core.Money
	)
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetIncome(ctx, incomeID)
		if err != nil {
			return err
		}
		if err := assertOwned(existing, userID); err != nil {
			return err
		}

		updated = existing
		updated.Amount = amount
		updated.Date = date
		updated.Source = source
		updated.Description = description
		if err := updated.Validate(); err != nil {
			return err
		}

		account, err := ownedAccount(ctx, q, existing.AccountID, userID)
		if err != nil {
			return err
		}

		delta := core.Money{Cents: amount.Cents - existing.Amount.Cents}
		newBalance, err = applyDelta(ctx, q, account, delta, true)
		if err != nil {
			return err
		}
		return q.UpdateIncome(ctx, updated)
	})
	if err != nil {
		return core.Income{}, core.Money{}, err
	}

	slog.InfoContext(ctx, "income updated", "user_id", userID, "income_id", incomeID)
	s.notify(ctx, userID, "income", "updated")
	return updated, newBalance, nil
}

// DeleteIncome removes the entry and subtracts its amount back out,
// unguarded.
func (s *Service) DeleteIncome(ctx context.Context, userID, incomeID int64) (core.Money, error) {
	var newBalance core.Money
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetIncome(ctx, incomeID)
		if err != nil {
			return err
		}
		if err := assertOwned(existing, userID); err != nil {
			return err
		}
		account, err := ownedAccount(ctx, q, existing.AccountID, userID)
		if err != nil {
			return err
		}
		newBalance, err = applyDelta(ctx, q, account, existing.Amount.Neg(), true)
		if err != nil {
			return err
		}
		return q.DeleteIncome(ctx, incomeID)
	})
	if err != nil {
		return core.Money{}, err
	}

	slog.InfoContext(ctx, "income deleted", "user_id", userID, "income_id", incomeID)
	s.notify(ctx, userID, "income", "deleted")
	return newBalance, nil
}
