package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories"
	"github.com/ArowuTest/jackpot-ledger/pkg/payments"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Initialize creates the ledger with default configuration
func (s *LotteryServiceImpl) Initialize(ctx context.Context, caller string, req InitializeRequest) (*models.LotteryState, error) {
	admin := strings.TrimSpace(req.AdminAuthority)
	if admin == "" {
		admin = caller
	}
	if admin == "" || strings.TrimSpace(req.EligibilityTokenReference) == "" {
		return nil, fmt.Errorf("%w: admin and eligibility token reference are required", models.ErrInvalidInstructionData)
	}

	var state *models.LotteryState
	err := s.transact(ctx, "initialize", func(ctx context.Context, scope *txScope) error {
		ledger := &models.Ledger{
			ID:                        models.LedgerID,
			Admin:                     admin,
			EligibilityTokenReference: req.EligibilityTokenReference,
			TicketUnit:                s.ticketUnit,
			MinTicketRequirement:      models.DefaultMinTicketRequirement,
			MaxTicketsPerWallet:       models.DefaultMaxTicketsPerWallet,
			FeePercentage:             models.DefaultFeePercentage,
			Version:                   models.LedgerSchemaVersion,
			InitializedAt:             scope.now,
			LastUpdated:               scope.now,
		}
		if err := s.ledgerRepo.Create(ctx, ledger); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return fmt.Errorf("%w: ledger already initialized", models.ErrInvalidProgramState)
			}
			return fmt.Errorf("failed to create ledger: %w", err)
		}
		state = models.NewLotteryState(ledger)
		return scope.emit(ctx, models.EventProgramInitialized, caller, map[string]interface{}{
			"admin":                     admin,
			"eligibilityTokenReference": ledger.EligibilityTokenReference,
			"ticketUnit":                ledger.TicketUnit,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Ledger initialized", "admin", admin, "ticketUnit", state.TicketUnit)
	return state, nil
}

// UpdateConfig applies patch. Changing the minimum re-derives the
// eligibility of every participant so the ledger totals stay exact.
func (s *LotteryServiceImpl) UpdateConfig(ctx context.Context, caller string, patch ConfigPatch) (*models.LotteryState, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var state *models.LotteryState
	err := s.transact(ctx, "update_config", func(ctx context.Context, scope *txScope) error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		if err := requireAdmin(ledger, caller); err != nil {
			return err
		}

		data := map[string]interface{}{}
		if v := patch.MinTicketRequirement; v != nil {
			data["oldMinTicketRequirement"] = ledger.MinTicketRequirement
			data["newMinTicketRequirement"] = *v
			if *v != ledger.MinTicketRequirement {
				ledger.MinTicketRequirement = *v
				if err := s.rederiveEligibility(ctx, ledger, scope); err != nil {
					return err
				}
			}
		}
		if v := patch.MaxTicketsPerWallet; v != nil {
			data["oldMaxTicketsPerWallet"] = ledger.MaxTicketsPerWallet
			data["newMaxTicketsPerWallet"] = *v
			ledger.MaxTicketsPerWallet = *v
		}
		if v := patch.FeePercentage; v != nil {
			data["oldFeePercentage"] = ledger.FeePercentage
			data["newFeePercentage"] = *v
			ledger.FeePercentage = *v
		}

		if err := s.saveLedger(ctx, ledger, scope.now); err != nil {
			return err
		}
		state = models.NewLotteryState(ledger)
		return scope.emit(ctx, models.EventConfigUpdated, caller, data)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Configuration updated",
		"minTicketRequirement", state.MinTicketRequirement,
		"maxTicketsPerWallet", state.MaxTicketsPerWallet,
		"feePercentage", state.FeePercentage)
	return state, nil
}

func validatePatch(p ConfigPatch) error {
	if v := p.MinTicketRequirement; v != nil && (*v < 1 || *v > models.MinTicketRequirementLimit) {
		return fmt.Errorf("%w: minTicketRequirement must be in [1, %d]", models.ErrInvalidConfig, models.MinTicketRequirementLimit)
	}
	if v := p.MaxTicketsPerWallet; v != nil && (*v < 1 || *v > models.MaxTicketsPerWalletLimit) {
		return fmt.Errorf("%w: maxTicketsPerWallet must be in [1, %d]", models.ErrInvalidConfig, models.MaxTicketsPerWalletLimit)
	}
	if v := p.FeePercentage; v != nil && *v > models.FeePercentageLimit {
		return fmt.Errorf("%w: feePercentage must be in [0, %d]", models.ErrInvalidConfig, models.FeePercentageLimit)
	}
	return nil
}

// rederiveEligibility recomputes every participant against the ledger's
// current minimum and rebuilds the ledger totals from the result.
func (s *LotteryServiceImpl) rederiveEligibility(ctx context.Context, ledger *models.Ledger, scope *txScope) error {
	participants, err := s.participantRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}

	var totalParticipants, totalTickets uint64
	for _, p := range participants {
		eligible := models.EligibleFor(p.TicketsCount, ledger.MinTicketRequirement)
		if eligible != p.IsEligible {
			p.IsEligible = eligible
			p.LastUpdated = scope.now
			if err := s.participantRepo.Save(ctx, p); err != nil {
				return fmt.Errorf("failed to save participant %s: %w", p.Wallet, err)
			}
		}
		n, t := p.Contribution()
		totalParticipants += n
		if totalTickets, err = addUint64(totalTickets, t); err != nil {
			return err
		}
	}
	ledger.TotalParticipants = totalParticipants
	ledger.TotalTickets = totalTickets
	return nil
}

// TogglePause flips the maintenance pause flag
func (s *LotteryServiceImpl) TogglePause(ctx context.Context, caller string) (*models.LotteryState, error) {
	var state *models.LotteryState
	err := s.transact(ctx, "toggle_pause", func(ctx context.Context, scope *txScope) error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		if err := requireAdmin(ledger, caller); err != nil {
			return err
		}
		ledger.IsPaused = !ledger.IsPaused
		if err := s.saveLedger(ctx, ledger, scope.now); err != nil {
			return err
		}
		state = models.NewLotteryState(ledger)
		return scope.emit(ctx, models.EventPauseToggled, caller, map[string]interface{}{
			"isPaused": ledger.IsPaused,
		})
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Pause toggled", "isPaused", state.IsPaused)
	return state, nil
}

// EmergencyPause sets the emergency stop. The maintenance pause is untouched.
func (s *LotteryServiceImpl) EmergencyPause(ctx context.Context, caller, reason string) (*models.LotteryState, error) {
	return s.setEmergencyStop(ctx, caller, reason, true)
}

// EmergencyResume clears the emergency stop.
func (s *LotteryServiceImpl) EmergencyResume(ctx context.Context, caller, reason string) (*models.LotteryState, error) {
	return s.setEmergencyStop(ctx, caller, reason, false)
}

func (s *LotteryServiceImpl) setEmergencyStop(ctx context.Context, caller, reason string, stop bool) (*models.LotteryState, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a reason is required", models.ErrInvalidInstructionData)
	}
	if err := checkReference(reason); err != nil {
		return nil, err
	}

	op, typ := "emergency_resume", models.EventEmergencyResume
	if stop {
		op, typ = "emergency_pause", models.EventEmergencyPause
	}

	var state *models.LotteryState
	err := s.transact(ctx, op, func(ctx context.Context, scope *txScope) error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		if err := requireAdmin(ledger, caller); err != nil {
			return err
		}
		previous := ledger.EmergencyStop
		ledger.EmergencyStop = stop
		if err := s.saveLedger(ctx, ledger, scope.now); err != nil {
			return err
		}
		state = models.NewLotteryState(ledger)
		return scope.emit(ctx, typ, caller, map[string]interface{}{
			"reason":        reason,
			"wasStopped":    previous,
			"emergencyStop": stop,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Warn("Emergency stop changed", "emergencyStop", stop, "reason", reason, "admin", caller)
	return state, nil
}

// WithdrawTreasury pays amount out of the treasury to destination. The
// treasury is only debited if the transfer settles.
func (s *LotteryServiceImpl) WithdrawTreasury(ctx context.Context, caller string, req WithdrawRequest) (*payments.TransferReceipt, error) {
	if strings.TrimSpace(req.Destination) == "" {
		return nil, fmt.Errorf("%w: destination is required", models.ErrInvalidInstructionData)
	}

	var receipt *payments.TransferReceipt
	err := s.transact(ctx, "withdraw_treasury", func(ctx context.Context, scope *txScope) error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		if err := requireAdmin(ledger, caller); err != nil {
			return err
		}
		if req.Amount == 0 {
			return models.ErrInvalidAmount
		}
		if ledger.TreasuryBalance < req.Amount {
			return fmt.Errorf("%w: treasury holds %d", models.ErrInsufficientTreasuryBalance, ledger.TreasuryBalance)
		}

		// The key depends only on the state this attempt read, so a retried
		// transaction reuses it.
		key := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("treasury/%d/%d/%d",
			ledger.LastUpdated.UnixNano(), ledger.TreasuryBalance, req.Amount))).String()

		before := ledger.TreasuryBalance
		ledger.TreasuryBalance -= req.Amount
		if err := s.saveLedger(ctx, ledger, scope.now); err != nil {
			return err
		}

		receipt, err = s.payments.Transfer(ctx, payments.TransferRequest{
			IdempotencyKey: key,
			Destination:    req.Destination,
			Amount:         req.Amount,
			Memo:           "treasury withdrawal",
		})
		if err != nil {
			return fmt.Errorf("treasury transfer failed: %w", err)
		}

		return scope.emit(ctx, models.EventTreasuryWithdrawal, caller, map[string]interface{}{
			"destination":    req.Destination,
			"amount":         req.Amount,
			"treasuryBefore": before,
			"treasuryAfter":  ledger.TreasuryBalance,
			"reference":      receipt.Reference,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Treasury withdrawal", "amount", req.Amount, "destination", req.Destination, "reference", receipt.Reference)
	return receipt, nil
}
