package http

import (
	"time"

	"github.com/yawwnann/fintrack/internal/core"
)

const dateLayout = "2006-01-02"

// parseDate accepts the YYYY-MM-DD wire format.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, core.ErrInvalidDate
	}
	return t, nil
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

type accountResponse struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	CurrentBalance core.Money `json:"currentBalance"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           a.Type,
		CurrentBalance: a.CurrentBalance,
		CreatedAt:      a.CreatedAt,
	}
}

func toAccountResponses(accounts []core.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out
}

type expenseResponse struct {
	ID          int64      `json:"id"`
	AccountID   int64      `json:"accountId"`
	Amount      core.Money `json:"amount"`
	Date        string     `json:"date"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		AccountID:   e.AccountID,
		Amount:      e.Amount,
		Date:        e.Date.Format(dateLayout),
		Category:    e.Category,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func toExpenseResponses(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

type incomeResponse struct {
	ID          int64      `json:"id"`
	AccountID   int64      `json:"accountId"`
	Amount      core.Money `json:"amount"`
	Date        string     `json:"date"`
	Source      string     `json:"source"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toIncomeResponse(in core.Income) incomeResponse {
	return incomeResponse{
		ID:          in.ID,
		AccountID:   in.AccountID,
		Amount:      in.Amount,
		Date:        in.Date.Format(dateLayout),
		Source:      in.Source,
		Description: in.Description,
		CreatedAt:   in.CreatedAt,
	}
}

func toIncomeResponses(incomes []core.Income) []incomeResponse {
	out := make([]incomeResponse, 0, len(incomes))
	for _, in := range incomes {
		out = append(out, toIncomeResponse(in))
	}
	return out
}

type goalResponse struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	TargetAmount       core.Money `json:"targetAmount"`
	CurrentSavedAmount core.Money `json:"currentSavedAmount"`
	IsCompleted        bool       `json:"isCompleted"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func toGoalResponse(g core.SavingGoal) goalResponse {
	return goalResponse{
		ID:                 g.ID,
		Name:               g.Name,
		TargetAmount:       g.TargetAmount,
		CurrentSavedAmount: g.CurrentSavedAmount,
		IsCompleted:        g.IsCompleted,
		CreatedAt:          g.CreatedAt,
	}
}

func toGoalResponses(goals []core.SavingGoal) []goalResponse {
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	return out
}

type transferResponse struct {
	Reference            string     `json:"reference"`
	SourceAccountID      int64      `json:"sourceAccountId"`
	DestinationAccountID int64      `json:"destinationAccountId"`
	Amount               core.Money `json:"amount"`
	Description          string     `json:"description"`
	CreatedAt            time.Time  `json:"createdAt"`
}

func toTransferResponse(t core.Transfer) transferResponse {
	return transferResponse{
		Reference:            t.Reference,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Amount:               t.Amount,
		Description:          t.Description,
		CreatedAt:            t.CreatedAt,
	}
}

func toTransferResponses(transfers []core.Transfer) []transferResponse {
	out := make([]transferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, toTransferResponse(t))
	}
	return out
}
