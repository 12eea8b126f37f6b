package http

import (
	"net/http"

	"github.com/yawwnann/fintrack/internal/core"
)

type incomeRequest struct {
	AccountID   int64      `json:"accountId"`
	Amount      core.Money `json:"amount"`
	Date        string     `json:"date"`
	Source      string     `json:"source"`
	Description string     `json:"description"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	income, newBalance, err := s.ledger.CreateIncome(r.Context(), userIDFrom(r), core.Income{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Date:        date,
		Source:      req.Source,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"income":            toIncomeResponse(income),
		"newAccountBalance": newBalance,
	})
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.ledger.ListIncomes(r.Context(), userIDFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"incomes": toIncomeResponses(incomes)})
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	income, err := s.ledger.GetIncome(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"income": toIncomeResponse(income)})
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req incomeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	income, newBalance, err := s.ledger.UpdateIncome(r.Context(), userIDFrom(r), id, req.Amount, date, req.Source, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"income":            toIncomeResponse(income),
		"newAccountBalance": newBalance,
	})
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	newBalance, err := s.ledger.DeleteIncome(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Income deleted",
		"newAccountBalance": newBalance,
	})
}
