package predict

import (
	"context"
	"log/slog"
	"time"

	"github.com/yawwnann/fintrack/internal/core"
	"github.com/yawwnann/fintrack/internal/storage"
)

const seriesMonths = 6

// Predictor is the external-service surface the service depends on.
type Predictor interface {
	Predict(ctx context.Context, series []int64) (core.Money, error)
}

type Service struct {
	repo      *storage.Repository
	predictor Predictor
}

func NewService(repo *storage.Repository, predictor Predictor) *Service {
	return &Service{repo: repo, predictor: predictor}
}

// monthlySeries returns the user's expense totals for the six months up
// to and including the month of now, oldest first.
func (s *Service) monthlySeries(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	series := make([]int64, 0, seriesMonths)
	current := core.MonthStart(now)
	for i := seriesMonths - 1; i >= 0; i-- {
		from := current.AddDate(0, -i, 0)
		to := from.AddDate(0, 1, 0)
		total, err := s.repo.MonthlyExpenseTotal(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		series = append(series, total.Cents)
	}
	return series, nil
}

// RefreshRecommendation predicts next month's spending from the user's
// recent history and upserts the stored recommendation. A user with no
// expense history at all gets a zero recommendation without calling the
// external service.
func (s *Service) RefreshRecommendation(ctx context.Context, userID int64, now time.Time) (core.BudgetRecommendation, error) {
	series, err := s.monthlySeries(ctx, userID, now)
	if err != nil {
		return core.BudgetRecommendation{}, err
	}

	var predicted core.Money
	if hasHistory(series) {
		predicted, err = s.predictor.Predict(ctx, series)
		if err != nil {
			return core.BudgetRecommendation{}, err
		}
	}

	rec := core.BudgetRecommendation{
		UserID: userID,
		Month:  core.MonthStart(now).AddDate(0, 1, 0),
		Amount: predicted,
	}
	if err := s.repo.UpsertBudgetRecommendation(ctx, rec); err != nil {
		return core.BudgetRecommendation{}, err
	}

	slog.InfoContext(ctx, "budget recommendation refreshed",
		"user_id", userID,
		"month", rec.Month.Format("2006-01"),
		"amount_cents", rec.Amount.Cents)
	return rec, nil
}

// RefreshAll refreshes every user's recommendation; the worker runs this
// on a timer. Per-user failures are logged and skipped.
func (s *Service) RefreshAll(ctx context.Context, now time.Time) error {
	userIDs, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		return err
	}
	for _, userID := range userIDs {
		if _, err := s.RefreshRecommendation(ctx, userID, now); err != nil {
			slog.ErrorContext(ctx, "failed to refresh recommendation", "error", err, "user_id", userID)
		}
	}
	return nil
}

// Recommendation returns the stored recommendation for the month after
// now, the one the prediction flow maintains.
func (s *Service) Recommendation(ctx context.Context, userID int64, now time.Time) (core.BudgetRecommendation, error) {
	return s.repo.GetBudgetRecommendation(ctx, userID, core.MonthStart(now).AddDate(0, 1, 0))
}

func hasHistory(series []int64) bool {
	for _, v := range series {
		if v != 0 {
			return true
		}
	}
	return false
}
