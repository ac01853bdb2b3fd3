package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	all := AllErrors()
	if len(all) != 28 {
		t.Fatalf("expected 28 errors, got %d", len(all))
	}
	names := make(map[string]bool)
	for i, e := range all {
		if e == nil {
			t.Fatalf("no error registered for code %d", 6000+i)
		}
		if e.Code != ErrorCode(6000+i) {
			t.Errorf("error %s has code %d, want %d", e.Name, e.Code, 6000+i)
		}
		if names[e.Name] {
			t.Errorf("duplicate error name %s", e.Name)
		}
		names[e.Name] = true
		if ErrorByCode(e.Code) != e {
			t.Errorf("ErrorByCode(%d) does not return %s", e.Code, e.Name)
		}
	}
	if ErrProgramPaused.Code != 6000 || ErrInvalidProgramState.Code != 6027 {
		t.Errorf("unexpected boundary codes %d/%d", ErrProgramPaused.Code, ErrInvalidProgramState.Code)
	}
	if ErrorByCode(6028) != nil {
		t.Error("unexpected error past the last code")
	}

	wrapped := fmt.Errorf("%w: draw HOURLY-000001", ErrTooEarly)
	var lerr *LotteryError
	if !errors.As(wrapped, &lerr) || lerr.Code != CodeTooEarly {
		t.Errorf("wrapped error lost its code: %v", wrapped)
	}
}

func TestTicketsAndEligibility(t *testing.T) {
	tests := []struct {
		balance, unit, min uint64
		tickets            uint64
		eligible           bool
	}{
		{0, 10_000, 1, 0, false},
		{9_999, 10_000, 1, 0, false},
		{10_000, 10_000, 1, 1, true},
		{29_999, 10_000, 3, 2, false},
		{30_000, 10_000, 3, 3, true},
		{50_000_000_000_000, 10_000_000_000, 1, 5_000, true},
		{100, 0, 1, 0, false},
	}
	for _, tt := range tests {
		tickets := TicketsFor(tt.balance, tt.unit)
		if tickets != tt.tickets {
			t.Errorf("TicketsFor(%d, %d) = %d, want %d", tt.balance, tt.unit, tickets, tt.tickets)
		}
		if got := EligibleFor(tickets, tt.min); got != tt.eligible {
			t.Errorf("EligibleFor(%d, %d) = %v, want %v", tickets, tt.min, got, tt.eligible)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if c, err := ParseCadence(" hourly "); err != nil || c != CadenceHourly {
		t.Errorf("ParseCadence(hourly) = %q, %v", c, err)
	}
	if _, err := ParseCadence("weekly"); !errors.Is(err, ErrInvalidInstructionData) {
		t.Errorf("expected ErrInvalidInstructionData, got %v", err)
	}
	if s, err := ParseContributionSource(""); err != nil || s != SourceDirectDeposit {
		t.Errorf("empty source = %q, %v", s, err)
	}
	if s, err := ParseContributionSource("treasury"); err != nil || s != SourceTreasury {
		t.Errorf("treasury source = %q, %v", s, err)
	}
	if _, err := ParseDrawStatus("DONE"); !errors.Is(err, ErrInvalidInstructionData) {
		t.Errorf("expected ErrInvalidInstructionData, got %v", err)
	}
	if DrawKey(CadenceDaily, 42) != "DAILY-000042" {
		t.Errorf("unexpected key %s", DrawKey(CadenceDaily, 42))
	}
	if !DrawStatusCancelled.Terminal() || DrawStatusProcessing.Terminal() {
		t.Error("unexpected terminal states")
	}
}

func TestLedgerCadenceAccessors(t *testing.T) {
	var l Ledger
	l.SetPool(CadenceHourly, 7)
	l.SetPool(CadenceDaily, 9)
	l.SetDrawCount(CadenceDaily, 3)
	if l.HourlyJackpot != 7 || l.Pool(CadenceDaily) != 9 || l.DrawCount(CadenceHourly) != 0 || l.DrawCount(CadenceDaily) != 3 {
		t.Errorf("unexpected ledger %+v", l)
	}
	s := NewLotteryState(&l)
	if s.NextHourlySequence != 1 || s.NextDailySequence != 4 {
		t.Errorf("unexpected next sequences %d/%d", s.NextHourlySequence, s.NextDailySequence)
	}
}
