package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories"
	"github.com/ArowuTest/jackpot-ledger/internal/utils"
	"golang.org/x/exp/slog"
)

// CreateLottery opens the next draw of a cadence, freezing the live pool and
// the participant totals into it.
func (s *LotteryServiceImpl) CreateLottery(ctx context.Context, caller string, req CreateDrawRequest) (*models.Draw, error) {
	if !req.Cadence.Valid() {
		return nil, fmt.Errorf("%w: unknown cadence %q", models.ErrInvalidInstructionData, req.Cadence)
	}

	var draw *models.Draw
	err := s.transact(ctx, "create_lottery", func(ctx context.Context, scope *txScope) error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		if err := checkAdmission(ledger); err != nil {
			return err
		}
		if err := requireAdmin(ledger, caller); err != nil {
			return err
		}
		if !req.ScheduledTime.After(scope.now) {
			return fmt.Errorf("%w: %s is not after %s", models.ErrInvalidScheduledTime, req.ScheduledTime, scope.now)
		}

		count := ledger.DrawCount(req.Cadence)
		if count == math.MaxUint32 {
			return models.ErrArithmeticOverflow
		}
		sequence := count + 1
		if req.SequenceID != nil && *req.SequenceID != sequence {
			return fmt.Errorf("%w: expected sequence %d for %s, got %d", models.ErrInvalidProgramState, sequence, req.Cadence, *req.SequenceID)
		}

		draw = &models.Draw{
			ID:                models.DrawKey(req.Cadence, sequence),
			SequenceID:        sequence,
			Cadence:           req.Cadence,
			ScheduledTime:     req.ScheduledTime.UTC(),
			Status:            models.DrawStatusPending,
			JackpotAmount:     ledger.Pool(req.Cadence),
			TotalParticipants: ledger.TotalParticipants,
			TotalTickets:      ledger.TotalTickets,
			CreatedAt:         scope.now,
			UpdatedAt:         scope.now,
		}
		draw.CheckpointHash = checkpointHash(ledger, draw)

		if err := s.drawRepo.Create(ctx, draw); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return fmt.Errorf("%w: draw %s already exists", models.ErrInvalidProgramState, draw.ID)
			}
			return fmt.Errorf("failed to create draw: %w", err)
		}
		ledger.SetDrawCount(req.Cadence, sequence)
		if err := s.saveLedger(ctx, ledger, scope.now); err != nil {
			return err
		}

		return scope.emit(ctx, models.EventLotteryCreated, caller, map[string]interface{}{
			"cadence":           string(draw.Cadence),
			"sequenceId":        draw.SequenceID,
			"scheduledTime":     draw.ScheduledTime,
			"jackpotAmount":     draw.JackpotAmount,
			"totalParticipants": draw.TotalParticipants,
			"totalTickets":      draw.TotalTickets,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Draw created", "draw", draw.ID, "scheduledTime", draw.ScheduledTime, "jackpot", draw.JackpotAmount, "tickets", draw.TotalTickets)
	return draw, nil
}

// ExecuteLottery records the winner of a pending draw and releases its frozen
// amount from the live pool of its cadence. No funds move until PayWinner.
func (s *LotteryServiceImpl) ExecuteLottery(ctx context.Context, caller string, req ExecuteDrawRequest) (*models.Draw, error) {
	var draw *models.Draw
	err := s.transact(ctx, "execute_lottery", func(ctx context.Context, scope *txScope) error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		if err := checkAdmission(ledger); err != nil {
			return err
		}
		if err := requireAdmin(ledger, caller); err != nil {
			return err
		}

		d, err := s.findDraw(ctx, req.Cadence, req.SequenceID)
		if err != nil {
			return err
		}
		if d.Status != models.DrawStatusPending {
			return fmt.Errorf("%w: draw %s is %s", models.ErrInvalidLotteryStatus, d.ID, d.Status)
		}
		if scope.now.Before(d.ScheduledTime) {
			return fmt.Errorf("%w: draw %s is scheduled for %s", models.ErrTooEarly, d.ID, d.ScheduledTime)
		}
		if d.JackpotAmount == 0 {
			return models.ErrInsufficientJackpot
		}
		if d.TotalTickets == 0 {
			return models.ErrNoParticipants
		}
		if req.RandomSeed == 0 {
			return models.ErrInvalidVRFSeed
		}
		if err := checkReference(req.ExternalReference); err != nil {
			return err
		}

		winner := strings.TrimSpace(req.Winner)
		if winner == "" {
			return fmt.Errorf("%w: winner is required", models.ErrInvalidWinner)
		}
		participant, err := s.participantRepo.FindByWallet(ctx, winner)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return fmt.Errorf("%w: %s is not a participant", models.ErrWinnerHasNoTickets, winner)
		case err != nil:
			return fmt.Errorf("failed to load winner: %w", err)
		}
		if participant.TicketsCount == 0 {
			return models.ErrWinnerHasNoTickets
		}
		if !participant.IsEligible {
			return models.ErrWinnerNotEligible
		}

		d.Winner = winner
		d.WinnerTickets = participant.TicketsCount
		d.RandomSeed = req.RandomSeed
		d.TransactionSignature = req.ExternalReference
		d.ExecutedTime = scope.now
		d.Status = models.DrawStatusProcessing
		d.UpdatedAt = scope.now
		if err := s.drawRepo.Update(ctx, d); err != nil {
			return fmt.Errorf("failed to update draw: %w", err)
		}

		// Contributions made after the snapshot stay in the live pool for
		// the next draw of the cadence.
		live := ledger.Pool(d.Cadence)
		if live >= d.JackpotAmount {
			live -= d.JackpotAmount
		} else {
			slog.Warn("Draw owes more than the live pool holds",
				"draw", d.ID, "jackpot", d.JackpotAmount, "pool", live, "shortfall", d.JackpotAmount-live)
			live = 0
		}
		ledger.SetPool(d.Cadence, live)
		ledger.SetLastDraw(d.Cadence, scope.now)
		if err := s.saveLedger(ctx, ledger, scope.now); err != nil {
			return err
		}

		draw = d
		return scope.emit(ctx, models.EventLotteryExecuted, caller, map[string]interface{}{
			"cadence":              string(d.Cadence),
			"sequenceId":           d.SequenceID,
			"winner":               d.Winner,
			"jackpotAmount":        d.JackpotAmount,
			"totalParticipants":    d.TotalParticipants,
			"totalTickets":         d.TotalTickets,
			"winnerTickets":        d.WinnerTickets,
			"randomSeed":           d.RandomSeed,
			"transactionSignature": d.TransactionSignature,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Draw executed", "draw", draw.ID, "winner", utils.MaskWallet(draw.Winner), "jackpot", draw.JackpotAmount)
	return draw, nil
}

// ExecuteWithSelector executes a draw with the winner and seed chosen by
// selector from the draw's snapshot.
func (s *LotteryServiceImpl) ExecuteWithSelector(ctx context.Context, caller string, cadence models.Cadence, sequence uint32, selector WinnerSelector) (*models.Draw, error) {
	draw, err := s.GetDraw(ctx, cadence, sequence)
	if err != nil {
		return nil, err
	}
	if draw.Status != models.DrawStatusPending {
		return nil, fmt.Errorf("%w: draw %s is %s", models.ErrInvalidLotteryStatus, draw.ID, draw.Status)
	}

	winner, seed, err := selector.Select(ctx, *draw)
	if err != nil {
		return nil, fmt.Errorf("winner selection for %s failed: %w", draw.ID, err)
	}

	return s.ExecuteLottery(ctx, caller, ExecuteDrawRequest{
		Cadence:           cadence,
		SequenceID:        sequence,
		Winner:            winner,
		RandomSeed:        seed,
		ExternalReference: fmt.Sprintf("selector/%s/%d", draw.ID, seed),
	})
}

// CancelLottery moves a pending draw to Cancelled. The live pool was never
// reset for it, so nothing is restored.
func (s *LotteryServiceImpl) CancelLottery(ctx context.Context, caller string, cadence models.Cadence, sequence uint32, reason string) (*models.Draw, error) {
	if err := checkReference(reason); err != nil {
		return nil, err
	}

	var draw *models.Draw
	err := s.transact(ctx, "cancel_lottery", func(ctx context.Context, scope *txScope) error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		if err := requireAdmin(ledger, caller); err != nil {
			return err
		}
		d, err := s.findDraw(ctx, cadence, sequence)
		if err != nil {
			return err
		}
		if d.Status != models.DrawStatusPending {
			return fmt.Errorf("%w: draw %s is %s", models.ErrInvalidLotteryStatus, d.ID, d.Status)
		}

		d.Status = models.DrawStatusCancelled
		d.CancelReason = reason
		d.UpdatedAt = scope.now
		if err := s.drawRepo.Update(ctx, d); err != nil {
			return fmt.Errorf("failed to update draw: %w", err)
		}

		draw = d
		return scope.emit(ctx, models.EventLotteryCancelled, caller, map[string]interface{}{
			"cadence":    string(d.Cadence),
			"sequenceId": d.SequenceID,
			"reason":     reason,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Draw cancelled", "draw", draw.ID, "reason", reason)
	return draw, nil
}

// GetDraw returns the draw for cadence and sequence
func (s *LotteryServiceImpl) GetDraw(ctx context.Context, cadence models.Cadence, sequence uint32) (*models.Draw, error) {
	return s.findDraw(ctx, cadence, sequence)
}

// ListDraws returns draws in status, earliest scheduled first
func (s *LotteryServiceImpl) ListDraws(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error) {
	draws, err := s.drawRepo.FindByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list draws: %w", err)
	}
	return draws, nil
}

func (s *LotteryServiceImpl) findDraw(ctx context.Context, cadence models.Cadence, sequence uint32) (*models.Draw, error) {
	draw, err := s.drawRepo.Find(ctx, cadence, sequence)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: draw %s", models.ErrAccountNotFound, models.DrawKey(cadence, sequence))
		}
		return nil, fmt.Errorf("failed to load draw: %w", err)
	}
	return draw, nil
}
