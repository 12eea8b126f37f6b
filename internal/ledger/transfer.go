package ledger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yawwnann/fintrack/internal/core"
	"github.com/yawwnann/fintrack/internal/storage"
)

// TransferResult carries the audit row plus both post-transfer balances.
type TransferResult struct {
	Transfer           core.Transfer
	SourceBalance      core.Money
	DestinationBalance core.Money
}

// Transfer moves amount between two of the user's accounts: a guarded
// debit on the source, a credit on the destination, and an audit row,
// committed together or not at all.
func (s *Service) Transfer(ctx context.Context, userID, sourceID, destinationID int64, amount core.Money, description string) (TransferResult, error) {
	if err := amount.Validate(); err != nil {
		return TransferResult{}, err
	}
	if sourceID == destinationID {
		return TransferResult{}, core.ErrSameAccount
	}

	var result TransferResult
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		source, err := ownedAccount(ctx, q, sourceID, userID)
		if err != nil {
			return err
		}
		destination, err := ownedAccount(ctx, q, destinationID, userID)
		if err != nil {
			return err
		}

		result.SourceBalance, err = applyDelta(ctx, q, source, amount.Neg(), false)
		if err != nil {
			return err
		}
		result.DestinationBalance, err = applyDelta(ctx, q, destination, amount, true)
		if err != nil {
			return err
		}

		result.Transfer, err = q.CreateTransfer(ctx, core.Transfer{
			Reference:            "TRF-" + uuid.NewString(),
			UserID:               userID,
			SourceAccountID:      sourceID,
			DestinationAccountID: destinationID,
			Amount:               amount,
			Description:          description,
		})
		return err
	})
	if err != nil {
		return TransferResult{}, err
	}

	slog.InfoContext(ctx, "transfer completed",
		"user_id", userID,
		"reference", result.Transfer.Reference,
		"amount_cents", amount.Cents)
	s.notify(ctx, userID, "transfer", "created")
	return result, nil
}

func (s *Service) ListTransfers(ctx context.Context, userID int64) ([]core.Transfer, error) {
	return s.repo.ListTransfersByUser(ctx, userID)
}
