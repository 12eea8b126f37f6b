package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yawwnann/fintrack/internal/core"
	"github.com/yawwnann/fintrack/internal/storage"
)

func (s *Service) CreateAccount(ctx context.Context, userID int64, name, accountType string, initialBalance core.Money) (core.Account, error) {
	if strings.TrimSpace(name) == "" {
		return core.Account{}, core.ErrEmptyName
	}
	if initialBalance.Cents < 0 {
		return core.Account{}, core.ErrInvalidAmount
	}

	account, err := s.repo.CreateAccount(ctx, core.Account{
		UserID:         userID,
		Name:           strings.TrimSpace(name),
		Type:           accountType,
		CurrentBalance: initialBalance,
	})
	if err != nil {
		return core.Account{}, err
	}

	slog.InfoContext(ctx, "account created", "user_id", userID, "account_id", account.ID)
	s.notify(ctx, userID, "account", "created")
	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, userID, accountID int64) (core.Account, error) {
	return ownedAccount(ctx, s.repo.Queries, accountID, userID)
}

func (s *Service) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	return s.repo.ListAccountsByUser(ctx, userID)
}

func (s *Service) UpdateAccount(ctx context.Context, userID, accountID int64, name, accountType string) (core.Account, error) {
	if strings.TrimSpace(name) == "" {
		return core.Account{}, core.ErrEmptyName
	}

	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if _, err := ownedAccount(ctx, q, accountID, userID); err != nil {
			return err
		}
		return q.UpdateAccountInfo(ctx, accountID, strings.TrimSpace(name), accountType)
	})
	if err != nil {
		return core.Account{}, err
	}
	return s.repo.GetAccount(ctx, accountID)
}

// DeleteAccount removes an account with no ledger history. Accounts that
// still back expenses, incomes, or transfers are refused so that past
// entries always resolve to a real account.
func (s *Service) DeleteAccount(ctx context.Context, userID, accountID int64) error {
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if _, err := ownedAccount(ctx, q, accountID, userID); err != nil {
			return err
		}
		n, err := q.CountAccountLedgerEntries(ctx, accountID)
		if err != nil {
			return err
		}
		if n > 0 {
			return core.ErrAccountHasLedger
		}
		return q.DeleteAccount(ctx, accountID)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "account deleted", "user_id", userID, "account_id", accountID)
	s.notify(ctx, userID, "account", "deleted")
	return nil
}

// Deposit credits an account directly, outside any ledger entry. It is
// the only balance increase with no row behind it, so the invariant
// treats it as part of the initial balance.
func (s *Service) Deposit(ctx context.Context, userID, accountID int64, amount core.Money) (core.Money, error) {
	if err := amount.Validate(); err != nil {
		return core.Money{}, err
	}

	var newBalance core.Money
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		account, err := ownedAccount(ctx, q, accountID, userID)
		if err != nil {
			return err
		}
		newBalance, err = applyDelta(ctx, q, account, amount, true)
		return err
	})
	if err != nil {
		return core.Money{}, err
	}

	slog.InfoContext(ctx, "deposit applied", "user_id", userID, "account_id", accountID, "amount_cents", amount.Cents)
	s.notify(ctx, userID, "account", "deposited")
	return newBalance, nil
}
