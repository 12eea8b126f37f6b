package http

import (
	"net/http"
	"time"

	"github.com/yawwnann/fintrack/internal/core"
)

type goalRequest struct {
	Name         string     `json:"name"`
	TargetAmount core.Money `json:"targetAmount"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := s.ledger.CreateSavingGoal(r.Context(), userIDFrom(r), core.SavingGoal{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"goal": toGoalResponse(goal)})
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.ledger.ListSavingGoals(r.Context(), userIDFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": toGoalResponses(goals)})
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goal, err := s.ledger.GetSavingGoal(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goal": toGoalResponse(goal)})
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := s.ledger.UpdateSavingGoal(r.Context(), userIDFrom(r), id, req.Name, req.TargetAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goal": toGoalResponse(goal)})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteSavingGoal(r.Context(), userIDFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Saving goal deleted"})
}

type allocateRequest struct {
	SourceAccountID int64      `json:"sourceAccountId"`
	Amount          core.Money `json:"amount"`
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req allocateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.ledger.Allocate(r.Context(), userIDFrom(r), id, req.SourceAccountID, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"goal":              toGoalResponse(result.Goal),
		"newAccountBalance": result.AccountBalance,
	})
}

func (s *Server) handlePredictExpense(w http.ResponseWriter, r *http.Request) {
	rec, err := s.predict.RefreshRecommendation(r.Context(), userIDFrom(r), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"predictedExpense": rec.Amount,
		"month":            rec.Month.Format("2006-01"),
	})
}
