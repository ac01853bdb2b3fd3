package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories"
	"github.com/ArowuTest/jackpot-ledger/internal/utils"
	"github.com/ArowuTest/jackpot-ledger/pkg/payments"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// PayWinner transfers the frozen jackpot of a processing draw to its winner.
// The draw only completes if the transfer settles; a failed transfer leaves
// the draw in Processing so the payout can be retried.
func (s *LotteryServiceImpl) PayWinner(ctx context.Context, payee string, cadence models.Cadence, sequence uint32) (*models.Draw, error) {
	var draw *models.Draw
	var receipt *payments.TransferReceipt
	err := s.transact(ctx, "pay_winner", func(ctx context.Context, scope *txScope) error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		if err := checkAdmission(ledger); err != nil {
			return err
		}

		d, err := s.findDraw(ctx, cadence, sequence)
		if err != nil {
			return err
		}
		if d.Status.Terminal() {
			return fmt.Errorf("%w: draw %s is already settled as %s", models.ErrInvalidLotteryStatus, d.ID, d.Status)
		}
		if d.Status != models.DrawStatusProcessing {
			return fmt.Errorf("%w: draw %s is %s", models.ErrInvalidLotteryStatus, d.ID, d.Status)
		}
		if payee == "" || payee != d.Winner {
			return models.ErrInvalidWinner
		}
		if d.JackpotAmount == 0 {
			return models.ErrInsufficientJackpot
		}

		available, err := s.payments.Balance(ctx)
		if err != nil {
			return fmt.Errorf("failed to read payout balance: %w", err)
		}
		if available < d.JackpotAmount {
			return fmt.Errorf("%w: %d available, %d owed", models.ErrInsufficientProgramBalance, available, d.JackpotAmount)
		}

		winner, err := s.participantRepo.FindByWallet(ctx, d.Winner)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			// The record was created by the balance report the draw was
			// executed against; its absence means the store is damaged.
			return fmt.Errorf("%w: winner %s has no participant record", models.ErrAccountNotFound, d.Winner)
		case err != nil:
			return fmt.Errorf("failed to load winner: %w", err)
		}
		if winner.TotalWinnings, err = addUint64(winner.TotalWinnings, d.JackpotAmount); err != nil {
			return err
		}
		winner.LastWinTime = scope.now
		if err := s.participantRepo.Save(ctx, winner); err != nil {
			return fmt.Errorf("failed to save winner: %w", err)
		}

		// The key is derived from the draw, so a payout retried after a failed
		// commit settles at most once.
		receipt, err = s.payments.Transfer(ctx, payments.TransferRequest{
			IdempotencyKey: uuid.NewSHA1(uuid.NameSpaceURL, []byte("payout/"+d.ID)).String(),
			Destination:    d.Winner,
			Amount:         d.JackpotAmount,
			Memo:           "jackpot " + d.ID,
		})
		if err != nil {
			return fmt.Errorf("payout transfer for %s failed: %w", d.ID, err)
		}

		d.Status = models.DrawStatusCompleted
		d.PayoutTime = scope.now
		d.PayoutReference = receipt.Reference
		d.UpdatedAt = scope.now
		if err := s.drawRepo.Update(ctx, d); err != nil {
			return fmt.Errorf("failed to update draw: %w", err)
		}
		if err := s.saveLedger(ctx, ledger, scope.now); err != nil {
			return err
		}

		draw = d
		return scope.emit(ctx, models.EventWinnerPaid, payee, map[string]interface{}{
			"cadence":              string(d.Cadence),
			"sequenceId":           d.SequenceID,
			"winner":               d.Winner,
			"amount":               d.JackpotAmount,
			"payoutReference":      receipt.Reference,
			"transactionSignature": d.TransactionSignature,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Winner paid", "draw", draw.ID, "winner", utils.MaskWallet(draw.Winner), "amount", draw.JackpotAmount, "reference", receipt.Reference)
	return draw, nil
}
