package services

import (
	"context"
	"fmt"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/utils"
	"golang.org/x/exp/slog"
)

// SplitContribution divides amount for the given source. For deposits and
// swap fees the pool shares are taken from the gross amount, the fee is
// capped by what remains, and any rest is unallocated.
func SplitContribution(amount, feePercentage uint64, source models.ContributionSource) models.ContributionSplit {
	split := models.ContributionSplit{Source: source, Gross: amount}
	if source == models.SourceTreasury {
		split.Hourly = amount / 2
		split.Daily = amount - split.Hourly
		return split
	}

	split.Hourly = percentOf(amount, models.HourlyJackpotPercentage)
	split.Daily = percentOf(amount, models.DailyJackpotPercentage)
	remainder := amount - split.Hourly - split.Daily
	split.Fee = percentOf(amount, feePercentage)
	if split.Fee > remainder {
		split.Fee = remainder
	}
	split.Unallocated = remainder - split.Fee
	return split
}

// ContributeToJackpot adds a contribution to the live pools
func (s *LotteryServiceImpl) ContributeToJackpot(ctx context.Context, contributor string, req ContributionRequest) (*models.ContributionSplit, error) {
	var source models.ContributionSource
	var split models.ContributionSplit
	err := s.transact(ctx, "contribute_to_jackpot", func(ctx context.Context, scope *txScope) error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		if err := checkAdmission(ledger); err != nil {
			return err
		}
		if req.Amount == 0 {
			return models.ErrInvalidAmount
		}
		if err := checkReference(req.ExternalReference); err != nil {
			return err
		}
		if source, err = models.ParseContributionSource(string(req.Source)); err != nil {
			return err
		}
		if source == models.SourceTreasury {
			if err := requireAdmin(ledger, contributor); err != nil {
				return err
			}
			if ledger.TreasuryBalance < req.Amount {
				return fmt.Errorf("%w: treasury holds %d", models.ErrInsufficientTreasuryBalance, ledger.TreasuryBalance)
			}
		}

		split = SplitContribution(req.Amount, ledger.FeePercentage, source)
		if err := applySplit(ledger, split); err != nil {
			return err
		}
		if err := s.saveLedger(ctx, ledger, scope.now); err != nil {
			return err
		}

		return scope.emit(ctx, models.EventJackpotContribution, contributor, map[string]interface{}{
			"contributor":       contributor,
			"source":            string(source),
			"gross":             split.Gross,
			"hourly":            split.Hourly,
			"daily":             split.Daily,
			"fee":               split.Fee,
			"unallocated":       split.Unallocated,
			"externalReference": req.ExternalReference,
			"hourlyJackpot":     ledger.HourlyJackpot,
			"dailyJackpot":      ledger.DailyJackpot,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Jackpot contribution", "contributor", utils.MaskWallet(contributor), "source", source,
		"gross", split.Gross, "hourly", split.Hourly, "daily", split.Daily, "fee", split.Fee)
	return &split, nil
}

// applySplit credits split to ledger. Every sum is checked and the pools are
// capped; on error ledger may be partly modified and must be discarded.
func applySplit(ledger *models.Ledger, split models.ContributionSplit) error {
	hourly, err := addUint64(ledger.HourlyJackpot, split.Hourly)
	if err != nil {
		return err
	}
	daily, err := addUint64(ledger.DailyJackpot, split.Daily)
	if err != nil {
		return err
	}
	if hourly > models.MaxJackpotAmount || daily > models.MaxJackpotAmount {
		return fmt.Errorf("%w: pools may not exceed %d", models.ErrJackpotTooLarge, models.MaxJackpotAmount)
	}
	ledger.HourlyJackpot, ledger.DailyJackpot = hourly, daily

	if split.Source == models.SourceTreasury {
		ledger.TreasuryBalance, err = subUint64(ledger.TreasuryBalance, split.Gross)
		return err
	}

	if ledger.TreasuryBalance, err = addUint64(ledger.TreasuryBalance, split.Fee); err != nil {
		return err
	}
	if ledger.UnallocatedBalance, err = addUint64(ledger.UnallocatedBalance, split.Unallocated); err != nil {
		return err
	}
	ledger.TotalVolumeProcessed, err = addUint64(ledger.TotalVolumeProcessed, split.Gross)
	return err
}
