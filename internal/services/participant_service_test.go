package services

import (
	"errors"
	"testing"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
)

func TestTicketDerivation(t *testing.T) {
	unit := models.DefaultTicketUnit
	tests := []struct {
		name    string
		balance uint64
		tickets uint64
	}{
		{"zero balance", 0, 0},
		{"just below one unit", unit - 1, 0},
		{"exactly one unit", unit, 1},
		{"just below two units", 2*unit - 1, 1},
		{"many units", 37 * unit, 37},
		{"at the wallet maximum", 10_000 * unit, 10_000},
	}

	f := newInitialized(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := f.report(t, "wallet-derivation", tt.balance)
			if p.TicketsCount != tt.tickets {
				t.Errorf("balance %d: expected %d tickets, got %d", tt.balance, tt.tickets, p.TicketsCount)
			}
			if p.IsEligible != (tt.tickets >= 1) {
				t.Errorf("balance %d: unexpected eligibility %v", tt.balance, p.IsEligible)
			}
			f.assertInvariant(t)
		})
	}
}

func TestEligibilityBoundary(t *testing.T) {
	f := newInitialized(t)
	if _, err := f.svc.UpdateConfig(f.ctx, admin, ConfigPatch{MinTicketRequirement: ptr(uint64(3))}); err != nil {
		t.Fatalf("update config: %v", err)
	}

	below := f.report(t, "below", 2*models.DefaultTicketUnit)
	at := f.report(t, "at", 3*models.DefaultTicketUnit)
	if below.IsEligible {
		t.Error("wallet with min-1 tickets must not be eligible")
	}
	if !at.IsEligible {
		t.Error("wallet with exactly min tickets must be eligible")
	}

	s := f.state(t)
	if s.TotalParticipants != 1 || s.TotalTickets != 3 {
		t.Errorf("expected totals 1/3, got %d/%d", s.TotalParticipants, s.TotalTickets)
	}
}

func TestUpdateParticipantMaintainsTotals(t *testing.T) {
	f := newInitialized(t)
	unit := models.DefaultTicketUnit

	steps := []struct {
		wallet  string
		balance uint64
	}{
		{"alice-wallet", 5 * unit},
		{"bob-wallet", 2 * unit},
		{"alice-wallet", 8 * unit},
		{"carol-wallet", unit / 2},
		{"bob-wallet", 0},
		{"carol-wallet", 4 * unit},
		{"bob-wallet", 6 * unit},
	}
	for _, step := range steps {
		f.report(t, step.wallet, step.balance)
		f.assertInvariant(t)
	}

	s := f.state(t)
	if s.TotalParticipants != 3 || s.TotalTickets != 18 {
		t.Errorf("expected totals 3/18, got %d/%d", s.TotalParticipants, s.TotalTickets)
	}

	bob, err := f.svc.GetParticipant(f.ctx, "bob-wallet")
	if err != nil {
		t.Fatalf("get bob: %v", err)
	}
	if bob.ParticipationCount != 2 {
		t.Errorf("bob went from zero tickets twice, expected participation count 2, got %d", bob.ParticipationCount)
	}
	if bob.Balance != 6*unit || bob.LastUpdated.IsZero() || bob.CreatedAt.IsZero() {
		t.Errorf("unexpected bob record: %+v", bob)
	}
}

func TestUpdateParticipantRejections(t *testing.T) {
	unit := models.DefaultTicketUnit
	tests := []struct {
		name   string
		wallet string
		update ParticipantUpdate
		want   error
	}{
		{
			name:   "empty wallet",
			wallet: "  ",
			update: ParticipantUpdate{ReportedBalance: unit},
			want:   models.ErrInvalidInstructionData,
		},
		{
			name:   "too many tickets",
			wallet: "whale",
			update: ParticipantUpdate{ReportedBalance: 10_001 * unit},
			want:   models.ErrTooManyTickets,
		},
		{
			name:   "wrong mint",
			wallet: "holder",
			update: ParticipantUpdate{ReportedBalance: unit, TokenAccount: &models.TokenAccount{Mint: "OTHER", Owner: "holder", Amount: unit}},
			want:   models.ErrInvalidTokenMint,
		},
		{
			name:   "wrong owner",
			wallet: "holder",
			update: ParticipantUpdate{ReportedBalance: unit, TokenAccount: &models.TokenAccount{Mint: mint, Owner: "thief", Amount: unit}},
			want:   models.ErrInvalidTokenOwner,
		},
		{
			name:   "account holds less than reported",
			wallet: "holder",
			update: ParticipantUpdate{ReportedBalance: 2 * unit, TokenAccount: &models.TokenAccount{Mint: mint, Owner: "holder", Amount: unit}},
			want:   models.ErrInsufficientTokenBalance,
		},
	}

	f := newInitialized(t)
	f.report(t, "holder", 3*unit)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateParticipant(f.ctx, tt.wallet, tt.update)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			holder, _ := f.svc.GetParticipant(f.ctx, "holder")
			if holder.TicketsCount != 3 {
				t.Errorf("rejected update changed the record: %+v", holder)
			}
			if s := f.state(t); s.TotalTickets != 3 || s.TotalParticipants != 1 {
				t.Errorf("rejected update changed the totals: %d/%d", s.TotalParticipants, s.TotalTickets)
			}
		})
	}
}

func TestUpdateParticipantWithTokenAccount(t *testing.T) {
	f := newInitialized(t)
	unit := models.DefaultTicketUnit
	p, err := f.svc.UpdateParticipant(f.ctx, "holder", ParticipantUpdate{
		ReportedBalance: 2 * unit,
		TokenAccount:    &models.TokenAccount{Address: "ata-1", Mint: mint, Owner: "holder", Amount: 5 * unit},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.TokenAccount != "ata-1" || p.TicketsCount != 2 {
		t.Errorf("unexpected participant: %+v", p)
	}
}

func TestGetParticipantNotFound(t *testing.T) {
	f := newInitialized(t)
	if _, err := f.svc.GetParticipant(f.ctx, "nobody"); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
