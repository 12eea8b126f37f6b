// Package ledger is the balance-consistency core. Every mutation that
// touches an account balance goes through here, inside one transaction
// with its ledger row, so the stored balance never diverges from the sum
// of ledger effects.
package ledger

import (
	"context"

	"github.com/yawwnann/fintrack/internal/core"
	"github.com/yawwnann/fintrack/internal/storage"
)

// Notifier receives a best-effort notification after a mutation commits.
// Failures are logged and ignored; the ledger never rolls back for it.
type Notifier interface {
	Notify(ctx context.Context, userID int64, entity, op string)
}

type Service struct {
	repo     *storage.Repository
	notifier Notifier
}

// NewService wires the ledger core to its repository. notifier may be nil.
func NewService(repo *storage.Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) notify(ctx context.Context, userID int64, entity, op string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, entity, op)
}

// assertOwned rejects any record whose owner is not the acting user.
// Applied before every read or mutation that dereferences a record id.
func assertOwned(rec core.Owned, userID int64) error {
	if rec.OwnerID() != userID {
		return core.ErrForbidden
	}
	return nil
}

// applyDelta is the balance mutator: it adds delta to the account's
// balance inside the caller's transaction. allowNegative is false only
// when the delta is money leaving the account as the caller-intended
// amount (expense creation, expense increase, goal allocation, transfer
// debit); reversals of past entries are applied unguarded.
func applyDelta(ctx context.Context, q *storage.Queries, account core.Account, delta core.Money, allowNegative bool) (core.Money, error) {
	next := core.Money{Cents: account.CurrentBalance.Cents + delta.Cents}
	if !allowNegative && next.Cents < 0 {
		return core.Money{}, &core.InsufficientFundsError{
			Available: account.CurrentBalance,
			Requested: delta.Neg(),
		}
	}
	if err := q.UpdateAccountBalance(ctx, account.ID, next); err != nil {
		return core.Money{}, err
	}
	return next, nil
}

// ownedAccount loads an account and checks it belongs to userID.
func ownedAccount(ctx context.Context, q *storage.Queries, accountID, userID int64) (core.Account, error) {
	account, err := q.GetAccount(ctx, accountID)
	if err != nil {
		return core.Account{}, err
	}
	if err := assertOwned(account, userID); err != nil {
		return core.Account{}, err
	}
	return account, nil
}

// TotalBalance sums the balances of all of the user's accounts.
func (s *Service) TotalBalance(ctx context.Context, userID int64) (core.Money, error) {
	return s.repo.TotalBalanceByUser(ctx, userID)
}
