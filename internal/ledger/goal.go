package ledger

import (
	"context"
	"log/slog"

	"github.com/yawwnann/fintrack/internal/core"
	"github.com/yawwnann/fintrack/internal/storage"
)

func (s *Service) CreateSavingGoal(ctx context.Context, userID int64, g core.SavingGoal) (core.SavingGoal, error) {
	g.UserID = userID
	if err := g.Validate(); err != nil {
		return core.SavingGoal{}, err
	}

	created, err := s.repo.CreateSavingGoal(ctx, g)
	if err != nil {
		return core.SavingGoal{}, err
	}

	slog.InfoContext(ctx, "saving goal created", "user_id", userID, "goal_id", created.ID)
	s.notify(ctx, userID, "saving_goal", "created")
	return created, nil
}

func (s *Service) GetSavingGoal(ctx context.Context, userID, goalID int64) (core.SavingGoal, error) {
	g, err := s.repo.GetSavingGoal(ctx, goalID)
	if err != nil {
		return core.SavingGoal{}, err
	}
	if err := assertOwned(g, userID); err != nil {
		return core.SavingGoal{}, err
	}
	return g, nil
}

func (s *Service) ListSavingGoals(ctx context.Context, userID int64) ([]core.SavingGoal, error) {
	return s.repo.ListSavingGoalsByUser(ctx, userID)
}

// UpdateSavingGoal renames the goal or changes its target. Saved progress
// is untouched; raising the target can reopen a completed goal, so the
// completion flag is recomputed against the new target.
func (s *Service) UpdateSavingGoal(ctx context.Context, userID, goalID int64, name string, target core.Money) (core.SavingGoal, error) {
	var updated core.SavingGoal
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetSavingGoal(ctx, goalID)
		if err != nil {
			return err
		}
		if err := assertOwned(existing, userID); err != nil {
			return err
		}

		updated = existing
		updated.Name = name
		updated.TargetAmount = target
		if err := updated.Validate(); err != nil {
			return err
		}
		updated.IsCompleted = updated.CurrentSavedAmount.Cents >= target.Cents

		if err := q.UpdateSavingGoalInfo(ctx, goalID, updated.Name, target); err != nil {
			return err
		}
		return q.UpdateSavingGoalProgress(ctx, goalID, updated.CurrentSavedAmount, updated.IsCompleted)
	})
	if err != nil {
		return core.SavingGoal{}, err
	}

	slog.InfoContext(ctx, "saving goal updated", "user_id", userID, "goal_id", goalID)
	s.notify(ctx, userID, "saving_goal", "updated")
	return updated, nil
}

// DeleteSavingGoal drops the goal. Allocated funds are not returned to
// any account; the allocations already left their source balances.
func (s *Service) DeleteSavingGoal(ctx context.Context, userID, goalID int64) error {
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetSavingGoal(ctx, goalID)
		if err != nil {
			return err
		}
		if err := assertOwned(existing, userID); err != nil {
			return err
		}
		return q.DeleteSavingGoal(ctx, goalID)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "saving goal deleted", "user_id", userID, "goal_id", goalID)
	s.notify(ctx, userID, "saving_goal", "deleted")
	return nil
}

// AllocationResult carries the updated goal and the source account's
// post-debit balance.
type AllocationResult struct {
	Goal           core.SavingGoal
	AccountBalance core.Money
}

// Allocate moves amount from an account into a goal's saved progress.
// The goal must be open and the allocation must fit the remaining
// target; the account debit is guarded like an expense.
func (s *Service) Allocate(ctx context.Context, userID, goalID, sourceAccountID int64, amount core.Money) (AllocationResult, error) {
	if err := amount.Validate(); err != nil {
		return AllocationResult{}, err
	}

	var result AllocationResult
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		goal, err := q.GetSavingGoal(ctx, goalID)
		if err != nil {
			return err
		}
		if err := assertOwned(goal, userID); err != nil {
			return err
		}
		if goal.IsCompleted {
			return core.ErrGoalCompleted
		}
		if goal.CurrentSavedAmount.Cents+amount.Cents > goal.TargetAmount.Cents {
			return &core.GoalTargetError{Remaining: goal.Remaining()}
		}

		account, err := ownedAccount(ctx, q, sourceAccountID, userID)
		if err != nil {
			return err
		}
		result.AccountBalance, err = applyDelta(ctx, q, account, amount.Neg(), false)
		if err != nil {
			return err
		}

		goal.CurrentSavedAmount.Cents += amount.Cents
		goal.IsCompleted = goal.CurrentSavedAmount.Cents >= goal.TargetAmount.Cents
		result.Goal = goal
		return q.UpdateSavingGoalProgress(ctx, goalID, goal.CurrentSavedAmount, goal.IsCompleted)
	})
	if err != nil {
		return AllocationResult{}, err
	}

	slog.InfoContext(ctx, "goal allocation applied",
		"user_id", userID,
		"goal_id", goalID,
		"amount_cents", amount.Cents,
		"completed", result.Goal.IsCompleted)
	s.notify(ctx, userID, "saving_goal", "allocated")
	return result, nil
}
