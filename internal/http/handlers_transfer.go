package http

import (
	"net/http"

	"github.com/yawwnann/fintrack/internal/core"
)

type transferRequest struct {
	SourceAccountID      int64      `json:"sourceAccountId"`
	DestinationAccountID int64      `json:"destinationAccountId"`
	Amount               core.Money `json:"amount"`
	Description          string     `json:"description"`
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.ledger.Transfer(r.Context(), userIDFrom(r),
		req.SourceAccountID, req.DestinationAccountID, req.Amount, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Transfer successful",
		"transferDetails": map[string]any{
			"reference":            result.Transfer.Reference,
			"sourceAccountId":      result.Transfer.SourceAccountID,
			"destinationAccountId": result.Transfer.DestinationAccountID,
			"amount":               result.Transfer.Amount,
			"sourceBalance":        result.SourceBalance,
			"destinationBalance":   result.DestinationBalance,
		},
	})
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := s.ledger.ListTransfers(r.Context(), userIDFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transfers": toTransferResponses(transfers)})
}
