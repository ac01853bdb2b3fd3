package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories"
	"github.com/ArowuTest/jackpot-ledger/internal/utils"
	"golang.org/x/exp/slog"
)

// UpdateParticipant stores a balance report for wallet and moves the ledger
// totals by the change in the participant's eligible contribution.
func (s *LotteryServiceImpl) UpdateParticipant(ctx context.Context, wallet string, req ParticipantUpdate) (*models.Participant, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, fmt.Errorf("%w: wallet is required", models.ErrInvalidInstructionData)
	}

	var out *models.Participant
	err := s.transact(ctx, "update_participant", func(ctx context.Context, scope *txScope) error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		if err := checkAdmission(ledger); err != nil {
			return err
		}
		if err := checkTokenAccount(ledger, wallet, req); err != nil {
			return err
		}

		tickets := models.TicketsFor(req.ReportedBalance, ledger.TicketUnit)
		if tickets > ledger.MaxTicketsPerWallet {
			return fmt.Errorf("%w: %d tickets, max %d", models.ErrTooManyTickets, tickets, ledger.MaxTicketsPerWallet)
		}

		participant, err := s.participantRepo.FindByWallet(ctx, wallet)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			participant = &models.Participant{Wallet: wallet, CreatedAt: scope.now}
		case err != nil:
			return fmt.Errorf("failed to load participant: %w", err)
		}

		oldTickets, oldEligible := participant.TicketsCount, participant.IsEligible
		oldCount, oldContribution := participant.Contribution()

		participant.Balance = req.ReportedBalance
		participant.TicketsCount = tickets
		participant.IsEligible = models.EligibleFor(tickets, ledger.MinTicketRequirement)
		participant.LastUpdated = scope.now
		if req.TokenAccount != nil {
			participant.TokenAccount = req.TokenAccount.Address
		}
		if oldTickets == 0 && tickets > 0 {
			participant.ParticipationCount++
		}

		newCount, newContribution := participant.Contribution()
		if err := applyContributionDelta(ledger, oldCount, oldContribution, newCount, newContribution); err != nil {
			return err
		}

		if err := s.participantRepo.Save(ctx, participant); err != nil {
			return fmt.Errorf("failed to save participant: %w", err)
		}
		if err := s.saveLedger(ctx, ledger, scope.now); err != nil {
			return err
		}

		out = participant
		return scope.emit(ctx, models.EventParticipantUpdated, wallet, map[string]interface{}{
			"wallet":      wallet,
			"balance":     req.ReportedBalance,
			"oldTickets":  oldTickets,
			"newTickets":  tickets,
			"wasEligible": oldEligible,
			"isEligible":  participant.IsEligible,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Participant updated", "wallet", utils.MaskWallet(wallet), "tickets", out.TicketsCount, "eligible", out.IsEligible)
	return out, nil
}

// checkTokenAccount validates the optional account a balance was read from.
func checkTokenAccount(ledger *models.Ledger, wallet string, req ParticipantUpdate) error {
	acct := req.TokenAccount
	if acct == nil {
		return nil
	}
	if acct.Mint != ledger.EligibilityTokenReference {
		return models.ErrInvalidTokenMint
	}
	if acct.Owner != wallet {
		return models.ErrInvalidTokenOwner
	}
	if acct.Amount < req.ReportedBalance {
		return fmt.Errorf("%w: account holds %d, reported %d", models.ErrInsufficientTokenBalance, acct.Amount, req.ReportedBalance)
	}
	return nil
}

// applyContributionDelta replaces one participant's old share of the ledger
// totals with its new share.
func applyContributionDelta(ledger *models.Ledger, oldCount, oldTickets, newCount, newTickets uint64) error {
	participants, err := subUint64(ledger.TotalParticipants, oldCount)
	if err != nil {
		return err
	}
	if participants, err = addUint64(participants, newCount); err != nil {
		return err
	}
	tickets, err := subUint64(ledger.TotalTickets, oldTickets)
	if err != nil {
		return err
	}
	if tickets, err = addUint64(tickets, newTickets); err != nil {
		return err
	}
	ledger.TotalParticipants = participants
	ledger.TotalTickets = tickets
	return nil
}

// GetParticipant returns the participant record for wallet
func (s *LotteryServiceImpl) GetParticipant(ctx context.Context, wallet string) (*models.Participant, error) {
	p, err := s.participantRepo.FindByWallet(ctx, wallet)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: participant %s", models.ErrAccountNotFound, wallet)
		}
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}
	return p, nil
}
