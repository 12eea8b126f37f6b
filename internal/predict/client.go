// Package predict talks to the external expense-prediction service and
// maintains per-user budget recommendations from its answers.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/yawwnann/fintrack/internal/core"
)

// Client calls the prediction HTTP service. It sends a fixed-length
// series of monthly totals in minor units and gets the predicted
// next-month total back.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type predictRequest struct {
	LastSixMonthsData []int64 `json:"last_6_months_data"`
}

type predictResponse struct {
	PredictedExpense float64 `json:"predicted_expense"`
}

func (c *Client) Predict(ctx context.Context, series []int64) (core.Money, error) {
	body, err := json.Marshal(predictRequest{LastSixMonthsData: series})
	if err != nil {
		return core.Money{}, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return core.Money{}, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return core.Money{}, fmt.Errorf("call prediction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.Money{}, fmt.Errorf("prediction service returned status %d", resp.StatusCode)
	}

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return core.Money{}, fmt.Errorf("decode predict response: %w", err)
	}
	if parsed.PredictedExpense < 0 {
		return core.Money{}, fmt.Errorf("prediction service returned negative amount %f", parsed.PredictedExpense)
	}

	return core.Money{Cents: int64(math.Round(parsed.PredictedExpense))}, nil
}
