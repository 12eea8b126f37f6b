package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yawwnann/fintrack/internal/core"
)

// --- users ---

func (q *Queries) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.Email, u.Name, u.PasswordHash, now)
	if err != nil {
		if IsUniqueViolation(err) {
			return core.User{}, fmt.Errorf("%w: user with this email already exists", core.ErrConflict)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user id: %w", err)
	}
	u.CreatedAt = now
	return u, nil
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := q.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (q *Queries) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := q.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUserIDs returns every user id; the worker uses it for periodic
// recommendation refreshes.
func (q *Queries) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- accounts ---

func (q *Queries) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name, type, current_balance_cents, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.Type, a.CurrentBalance.Cents, now)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("create account id: %w", err)
	}
	a.CreatedAt = now
	return a, nil
}

func (q *Queries) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	var a core.Account
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, current_balance_cents, created_at
		 FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.CurrentBalance.Cents, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (q *Queries) ListAccountsByUser(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, current_balance_cents, created_at
		 FROM accounts WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.CurrentBalance.Cents, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccountBalance stores the already-computed balance. Callers must
// hold a transaction; the ledger's balance mutator is the only writer.
func (q *Queries) UpdateAccountBalance(ctx context.Context, id int64, balance core.Money) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET current_balance_cents = ? WHERE id = ?`, balance.Cents, id)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("account: %w", core.ErrNotFound)
	}
	return nil
}

func (q *Queries) UpdateAccountInfo(ctx context.Context, id int64, name, accountType string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ? WHERE id = ?`, name, accountType, id)
	if err != nil {
		return fmt.Errorf("update account info: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("account: %w", core.ErrNotFound)
	}
	return nil
}

func (q *Queries) DeleteAccount(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// CountAccountLedgerEntries reports how many ledger rows still reference
// the account; deletion is refused while it is non-zero.
func (q *Queries) CountAccountLedgerEntries(ctx context.Context, accountID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM expenses WHERE account_id = ?1)
		      + (SELECT COUNT(*) FROM incomes WHERE account_id = ?1)
		      + (SELECT COUNT(*) FROM transfers WHERE source_account_id = ?1 OR destination_account_id = ?1)`,
		accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count account ledger entries: %w", err)
	}
	return n, nil
}

func (q *Queries) TotalBalanceByUser(ctx context.Context, userID int64) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(current_balance_cents), 0) FROM accounts WHERE user_id = ?`, userID).
		Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("total balance: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// --- expenses ---

func (q *Queries) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, account_id, amount_cents, date, category, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.AccountID, e.Amount.Cents, e.Date.UTC(), e.Category, e.Description, now)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense id: %w", err)
	}
	e.CreatedAt = now
	return e, nil
}

func (q *Queries) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	var e core.Expense
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, amount_cents, date, category, description, created_at
		 FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.UserID, &e.AccountID, &e.Amount.Cents, &e.Date, &e.Category, &e.Description, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (q *Queries) ListExpensesByUser(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, account_id, amount_cents, date, category, description, created_at
		 FROM expenses WHERE user_id = ? ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.AccountID, &e.Amount.Cents, &e.Date, &e.Category, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (q *Queries) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, date = ?, category = ?, description = ? WHERE id = ?`,
		e.Amount.Cents, e.Date.UTC(), e.Category, e.Description, e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense: %w", core.ErrNotFound)
	}
	return nil
}

func (q *Queries) DeleteExpense(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense: %w", core.ErrNotFound)
	}
	return nil
}

// SumExpensesByAccount returns the total of all expense rows against an
// account; the invariant check in tests recomputes balances from it.
func (q *Queries) SumExpensesByAccount(ctx context.Context, accountID int64) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE account_id = ?`, accountID).
		Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// MonthlyExpenseTotal sums a user's expenses inside [from, to).
func (q *Queries) MonthlyExpenseTotal(ctx context.Context, userID int64, from, to time.Time) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE user_id = ? AND date >= ? AND date < ?`,
		userID, from.UTC(), to.UTC()).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("monthly expense total: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// --- incomes ---

func (q *Queries) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO incomes (user_id, account_id, amount_cents, date, source, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.UserID, in.AccountID, in.Amount.Cents, in.Date.UTC(), in.Source, in.Description, now)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	in.ID, err = res.LastInsertId()
	if err != nil {
		return core.Income{}, fmt.Errorf("create income id: %w", err)
	}
	in.CreatedAt = now
	return in, nil
}

func (q *Queries) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	var in core.Income
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, amount_cents, date, source, description, created_at
		 FROM incomes WHERE id = ?`, id).
		Scan(&in.ID, &in.UserID, &in.AccountID, &in.Amount.Cents, &in.Date, &in.Source, &in.Description, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, fmt.Errorf("income: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	return in, nil
}

func (q *Queries) ListIncomesByUser(ctx context.Context, userID int64) ([]core.Income, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, account_id, amount_cents, date, source, description, created_at
		 FROM incomes WHERE user_id = ? ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var in core.Income
		if err := rows.Scan(&in.ID, &in.UserID, &in.AccountID, &in.Amount.Cents, &in.Date, &in.Source, &in.Description, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

func (q *Queries) UpdateIncome(ctx context.Context, in core.Income) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE incomes SET amount_cents = ?, date = ?, source = ?, description = ? WHERE id = ?`,
		in.Amount.Cents, in.Date.UTC(), in.Source, in.Description, in.ID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("income: %w", core.ErrNotFound)
	}
	return nil
}

func (q *Queries) DeleteIncome(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("income: %w", core.ErrNotFound)
	}
	return nil
}

func (q *Queries) SumIncomesByAccount(ctx context.Context, accountID int64) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM incomes WHERE account_id = ?`, accountID).
		Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum incomes: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// --- saving goals ---

func (q *Queries) CreateSavingGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO saving_goals (user_id, name, target_amount_cents, current_saved_amount_cents, is_completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.TargetAmount.Cents, g.CurrentSavedAmount.Cents, g.IsCompleted, now)
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("create saving goal: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("create saving goal id: %w", err)
	}
	g.CreatedAt = now
	return g, nil
}

func (q *Queries) GetSavingGoal(ctx context.Context, id int64) (core.SavingGoal, error) {
	var g core.SavingGoal
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, target_amount_cents, current_saved_amount_cents, is_completed, created_at
		 FROM saving_goals WHERE id = ?`, id).
		Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents, &g.CurrentSavedAmount.Cents, &g.IsCompleted, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingGoal{}, fmt.Errorf("saving goal: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("get saving goal: %w", err)
	}
	return g, nil
}

func (q *Queries) ListSavingGoalsByUser(ctx context.Context, userID int64) ([]core.SavingGoal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_amount_cents, current_saved_amount_cents, is_completed, created_at
		 FROM saving_goals WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saving goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingGoal
	for rows.Next() {
		var g core.SavingGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents, &g.CurrentSavedAmount.Cents, &g.IsCompleted, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan saving goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (q *Queries) UpdateSavingGoalInfo(ctx context.Context, id int64, name string, target core.Money) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE saving_goals SET name = ?, target_amount_cents = ? WHERE id = ?`,
		name, target.Cents, id)
	if err != nil {
		return fmt.Errorf("update saving goal info: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("saving goal: %w", core.ErrNotFound)
	}
	return nil
}

// UpdateSavingGoalProgress stores the new saved amount and the completion
// flag computed by the allocator.
func (q *Queries) UpdateSavingGoalProgress(ctx context.Context, id int64, saved core.Money, completed bool) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE saving_goals SET current_saved_amount_cents = ?, is_completed = ? WHERE id = ?`,
		saved.Cents, completed, id)
	if err != nil {
		return fmt.Errorf("update saving goal progress: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("saving goal: %w", core.ErrNotFound)
	}
	return nil
}

func (q *Queries) DeleteSavingGoal(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM saving_goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete saving goal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("saving goal: %w", core.ErrNotFound)
	}
	return nil
}

// --- transfers ---

func (q *Queries) CreateTransfer(ctx context.Context, t core.Transfer) (core.Transfer, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO transfers (reference, user_id, source_account_id, destination_account_id, amount_cents, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Reference, t.UserID, t.SourceAccountID, t.DestinationAccountID, t.Amount.Cents, t.Description, now)
	if err != nil {
		return core.Transfer{}, fmt.Errorf("create transfer: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transfer{}, fmt.Errorf("create transfer id: %w", err)
	}
	t.CreatedAt = now
	return t, nil
}

func (q *Queries) ListTransfersByUser(ctx context.Context, userID int64) ([]core.Transfer, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, reference, user_id, source_account_id, destination_account_id, amount_cents, description, created_at
		 FROM transfers WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []core.Transfer
	for rows.Next() {
		var t core.Transfer
		if err := rows.Scan(&t.ID, &t.Reference, &t.UserID, &t.SourceAccountID, &t.DestinationAccountID, &t.Amount.Cents, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// SumTransfersIn / SumTransfersOut support invariant recomputation.

func (q *Queries) SumTransfersIn(ctx context.Context, accountID int64) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transfers WHERE destination_account_id = ?`, accountID).
		Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum transfers in: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func (q *Queries) SumTransfersOut(ctx context.Context, accountID int64) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transfers WHERE source_account_id = ?`, accountID).
		Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum transfers out: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// --- budget recommendations ---

// UpsertBudgetRecommendation creates or replaces the recommendation for
// (userID, month); the prediction flow re-runs freely.
func (q *Queries) UpsertBudgetRecommendation(ctx context.Context, rec core.BudgetRecommendation) error {
	now := time.Now().UTC()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO budget_recommendations (user_id, month, amount_cents, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, month) DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = excluded.updated_at`,
		rec.UserID, rec.Month.UTC(), rec.Amount.Cents, now, now)
	if err != nil {
		return fmt.Errorf("upsert budget recommendation: %w", err)
	}
	return nil
}

func (q *Queries) GetBudgetRecommendation(ctx context.Context, userID int64, month time.Time) (core.BudgetRecommendation, error) {
	var rec core.BudgetRecommendation
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, month, amount_cents FROM budget_recommendations
		 WHERE user_id = ? AND month = ?`, userID, month.UTC()).
		Scan(&rec.ID, &rec.UserID, &rec.Month, &rec.Amount.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetRecommendation{}, fmt.Errorf("budget recommendation: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.BudgetRecommendation{}, fmt.Errorf("get budget recommendation: %w", err)
	}
	return rec, nil
}
