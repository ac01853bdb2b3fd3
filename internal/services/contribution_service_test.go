package services

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
)

func TestSplitContribution(t *testing.T) {
	tests := []struct {
		name   string
		amount uint64
		fee    uint64
		source models.ContributionSource
		want   models.ContributionSplit
	}{
		{
			name:   "default fee takes the whole remainder",
			amount: 1_000_000,
			fee:    85,
			source: models.SourceDirectDeposit,
			want:   models.ContributionSplit{Hourly: 100_000, Daily: 50_000, Fee: 850_000},
		},
		{
			name:   "lower fee leaves an unallocated rest",
			amount: 1_000_000,
			fee:    50,
			source: models.SourceSwapFee,
			want:   models.ContributionSplit{Hourly: 100_000, Daily: 50_000, Fee: 500_000, Unallocated: 350_000},
		},
		{
			name:   "fee is capped by the remainder",
			amount: 1_000,
			fee:    100,
			source: models.SourceDirectDeposit,
			want:   models.ContributionSplit{Hourly: 100, Daily: 50, Fee: 850},
		},
		{
			name:   "shares round down independently",
			amount: 19,
			fee:    0,
			source: models.SourceDirectDeposit,
			want:   models.ContributionSplit{Hourly: 1, Daily: 0, Unallocated: 18},
		},
		{
			name:   "treasury halves with the odd unit to daily",
			amount: 101,
			fee:    85,
			source: models.SourceTreasury,
			want:   models.ContributionSplit{Hourly: 50, Daily: 51},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitContribution(tt.amount, tt.fee, tt.source)
			tt.want.Source, tt.want.Gross = tt.source, tt.amount
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSplitContributionConserves(t *testing.T) {
	amounts := []uint64{1, 7, 19, 99, 100, 101, 12_345, 999_999, 1 << 40, math.MaxUint64}
	for _, fee := range []uint64{0, 1, 50, 85, 100} {
		for _, amount := range amounts {
			s := SplitContribution(amount, fee, models.SourceDirectDeposit)
			parts := []uint64{s.Hourly, s.Daily, s.Fee, s.Unallocated}
			var sum uint64
			for _, p := range parts {
				if sum+p < sum {
					t.Fatalf("amount %d fee %d: parts overflow", amount, fee)
				}
				sum += p
			}
			if sum != amount {
				t.Errorf("amount %d fee %d: parts sum to %d", amount, fee, sum)
			}
		}
	}
}

func TestContributeAccumulatesIndependentFloors(t *testing.T) {
	f := newInitialized(t)
	f.contribute(t, 19)
	f.contribute(t, 19)

	s := f.state(t)
	// One contribution of 38 would give 3 and 1.
	if s.HourlyJackpot != 2 || s.DailyJackpot != 0 {
		t.Errorf("expected pools 2/0, got %d/%d", s.HourlyJackpot, s.DailyJackpot)
	}
	if s.TreasuryBalance != 32 || s.UnallocatedBalance != 4 || s.TotalVolumeProcessed != 38 {
		t.Errorf("expected treasury 32, rest 4 and volume 38, got %d/%d/%d", s.TreasuryBalance, s.UnallocatedBalance, s.TotalVolumeProcessed)
	}
}

func TestContributeToJackpot(t *testing.T) {
	f := newInitialized(t)
	split := f.contribute(t, 1_000_000)
	if split.Hourly != 100_000 || split.Daily != 50_000 || split.Fee != 850_000 {
		t.Errorf("unexpected split %+v", split)
	}

	s := f.state(t)
	if s.HourlyJackpot != 100_000 || s.DailyJackpot != 50_000 || s.TreasuryBalance != 850_000 {
		t.Errorf("unexpected balances %+v", s.Ledger)
	}
	if s.TotalVolumeProcessed != 1_000_000 || s.UnallocatedBalance != 0 {
		t.Errorf("unexpected volume or rest %+v", s.Ledger)
	}

	events, _ := f.svc.RecentEvents(f.ctx, 1)
	if events[0].Type != models.EventJackpotContribution || events[0].Data["hourlyJackpot"] != uint64(100_000) {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestContributeRejections(t *testing.T) {
	tests := []struct {
		name        string
		contributor string
		req         ContributionRequest
		want        error
	}{
		{"zero amount", "c", ContributionRequest{Amount: 0}, models.ErrInvalidAmount},
		{"reference too long", "c", ContributionRequest{Amount: 10, ExternalReference: strings.Repeat("s", models.SignatureMaxLen+1)}, models.ErrSignatureTooLong},
		{"unknown source", "c", ContributionRequest{Amount: 10, Source: "AIRDROP"}, models.ErrInvalidInstructionData},
		{"pool cap", "c", ContributionRequest{Amount: 10 * (models.MaxJackpotAmount + 1)}, models.ErrJackpotTooLarge},
		{"treasury source needs admin", stranger, ContributionRequest{Amount: 10, Source: models.SourceTreasury}, models.ErrUnauthorized},
		{"treasury source over balance", admin, ContributionRequest{Amount: 1_000, Source: models.SourceTreasury}, models.ErrInsufficientTreasuryBalance},
	}

	f := newInitialized(t)
	f.contribute(t, 100)
	before := f.state(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ContributeToJackpot(f.ctx, tt.contributor, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			after := f.state(t)
			if after.HourlyJackpot != before.HourlyJackpot || after.TreasuryBalance != before.TreasuryBalance ||
				after.TotalVolumeProcessed != before.TotalVolumeProcessed {
				t.Errorf("rejected contribution changed the ledger: %+v", after.Ledger)
			}
		})
	}
}

func TestContributeFromTreasury(t *testing.T) {
	f := newInitialized(t)
	f.contribute(t, 1_000_000)

	split, err := f.svc.ContributeToJackpot(f.ctx, admin, ContributionRequest{Amount: 100_001, Source: models.SourceTreasury})
	if err != nil {
		t.Fatalf("treasury contribution: %v", err)
	}
	if split.Hourly != 50_000 || split.Daily != 50_001 || split.Fee != 0 {
		t.Errorf("unexpected split %+v", split)
	}

	s := f.state(t)
	if s.HourlyJackpot != 150_000 || s.DailyJackpot != 100_001 {
		t.Errorf("unexpected pools %d/%d", s.HourlyJackpot, s.DailyJackpot)
	}
	if s.TreasuryBalance != 850_000-100_001 {
		t.Errorf("treasury not debited: %d", s.TreasuryBalance)
	}
	if s.TotalVolumeProcessed != 1_000_000 {
		t.Errorf("recycled treasury funds must not count as volume: %d", s.TotalVolumeProcessed)
	}
}
