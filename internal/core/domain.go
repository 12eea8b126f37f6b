package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error taxonomy shared by every layer. Handlers map these onto HTTP
// status codes; the ledger core only ever returns values from this set
// (or wraps them) so that no partial mutation leaks to the caller.
var (
	ErrUnauthenticated = errors.New("invalid or missing token")
	ErrForbidden       = errors.New("record does not belong to the acting user")
	ErrNotFound        = errors.New("record not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflicting state")

	ErrInvalidAmount    = fmt.Errorf("%w: amount must be a positive number", ErrInvalidInput)
	ErrInvalidDate      = fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrInvalidInput)
	ErrEmptyName        = fmt.Errorf("%w: name is required", ErrInvalidInput)
	ErrEmptyCategory    = fmt.Errorf("%w: category is required", ErrInvalidInput)
	ErrEmptySource      = fmt.Errorf("%w: source is required", ErrInvalidInput)
	ErrSameAccount      = fmt.Errorf("%w: source and destination accounts cannot be the same", ErrInvalidInput)
	ErrGoalCompleted    = fmt.Errorf("%w: saving goal is already completed", ErrInvalidInput)
	ErrAccountHasLedger = fmt.Errorf("%w: account still has ledger entries", ErrConflict)
)

// InsufficientFundsError reports a rejected debit together with the data
// the client needs to act on it.
type InsufficientFundsError struct {
	Available Money
	Requested Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: available %d, requested %d",
		e.Available.Cents, e.Requested.Cents)
}

// GoalTargetError reports an allocation that would overshoot the goal target.
type GoalTargetError struct {
	Remaining Money
}

func (e *GoalTargetError) Error() string {
	return fmt.Sprintf("allocation exceeds remaining goal target of %d", e.Remaining.Cents)
}

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

type Account struct {
	ID             int64
	UserID         int64
	Name           string
	Type           string
	CurrentBalance Money
	CreatedAt      time.Time
}

// Expense is a balance-decreasing ledger entry.
type Expense struct {
	ID          int64
	UserID      int64
	AccountID   int64
	Amount      Money
	Date        time.Time
	Category    string
	Description string
	CreatedAt   time.Time
}

// Income is a balance-increasing ledger entry.
type Income struct {
	ID          int64
	UserID      int64
	AccountID   int64
	Amount      Money
	Date        time.Time
	Source      string
	Description string
	CreatedAt   time.Time
}

type SavingGoal struct {
	ID                 int64
	UserID             int64
	Name               string
	TargetAmount       Money
	CurrentSavedAmount Money
	IsCompleted        bool
	CreatedAt          time.Time
}

// Transfer is the audit row persisted alongside the two balance updates
// of a two-account transfer.
type Transfer struct {
	ID                   int64
	Reference            string
	UserID               int64
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               Money
	Description          string
	CreatedAt            time.Time
}

// BudgetRecommendation is the predicted spending budget for one user and
// month, upserted by the prediction flow. Unique on (UserID, Month).
type BudgetRecommendation struct {
	ID     int64
	UserID int64
	Month  time.Time // first day of the month, UTC
	Amount Money
}

// Owned is implemented by every record that carries an owner. The
// ownership guard compares it against the acting user before any read or
// mutation touches the record.
type Owned interface {
	OwnerID() int64
}

func (a Account) OwnerID() int64    { return a.UserID }
func (e Expense) OwnerID() int64    { return e.UserID }
func (i Income) OwnerID() int64     { return i.UserID }
func (g SavingGoal) OwnerID() int64 { return g.UserID }
func (t Transfer) OwnerID() int64   { return t.UserID }

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrInvalidInput)
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if i.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	if len(i.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrInvalidInput)
	}
	return nil
}

func (g SavingGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	return g.TargetAmount.Validate()
}

// Remaining returns how much can still be allocated before the goal
// target is reached.
func (g SavingGoal) Remaining() Money {
	return Money{Cents: g.TargetAmount.Cents - g.CurrentSavedAmount.Cents}
}

// MonthStart normalizes t to the first day of its month in UTC, the key
// used for budget recommendations.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
