package services

import (
	"errors"
	"testing"
	"time"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/pkg/payments"
	"go.uber.org/mock/gomock"
)

func TestLeaderboardAndStats(t *testing.T) {
	f, _ := newDrawScenario(t)
	unit := models.DefaultTicketUnit
	f.report(t, "carol-wallet", 60*unit)
	f.report(t, "dave-wallet", 5*unit)

	top, err := f.svc.Leaderboard(f.ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].Wallet != "carol-wallet" || top[1].Wallet != "alice-wallet" {
		t.Errorf("unexpected leaderboard %+v", top)
	}
	all, _ := f.svc.Leaderboard(f.ctx, 0)
	if len(all) != 3 {
		t.Errorf("ineligible holders on the leaderboard: %d entries", len(all))
	}

	stats, err := f.svc.ParticipantStats(f.ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalParticipants != 3 || stats.TotalTickets != 70 || stats.AverageTickets != 23.33 {
		t.Errorf("unexpected totals %+v", stats)
	}
	want := map[string]uint64{"1-10": 2, "11-50": 0, "51-100": 1, "101-500": 0, "500+": 0}
	for _, r := range stats.TicketRanges {
		if want[r.Label] != r.Count {
			t.Errorf("range %s has %d holders, want %d", r.Label, r.Count, want[r.Label])
		}
	}
	if len(stats.TopHolders) != 3 || stats.TopHolders[0].Wallet != "caro****llet" || stats.TopHolders[0].Tickets != 60 {
		t.Errorf("unexpected top holders %+v", stats.TopHolders)
	}

	s := f.state(t)
	if s.TotalParticipants != stats.TotalParticipants || s.TotalTickets != stats.TotalTickets {
		t.Errorf("stats disagree with the ledger: %d/%d", s.TotalParticipants, s.TotalTickets)
	}
}

func TestWinnerQueries(t *testing.T) {
	f, d := newProcessingDraw(t)

	won, err := f.svc.DrawsWonBy(f.ctx, models.DrawStatusProcessing, "alice-wallet")
	if err != nil {
		t.Fatalf("draws won: %v", err)
	}
	if len(won) != 1 || won[0].ID != d.ID {
		t.Errorf("unexpected wins %+v", won)
	}
	if none, _ := f.svc.DrawsWonBy(f.ctx, models.DrawStatusProcessing, "bob-wallet"); len(none) != 0 {
		t.Errorf("bob has no wins, got %+v", none)
	}
	if _, err := f.svc.DrawsWonBy(f.ctx, models.DrawStatusProcessing, " "); !errors.Is(err, models.ErrInvalidInstructionData) {
		t.Errorf("expected ErrInvalidInstructionData, got %v", err)
	}

	if fame, _ := f.svc.HallOfFame(f.ctx, 0); len(fame) != 0 {
		t.Errorf("unpaid draw in the hall of fame: %+v", fame)
	}

	f.gateway.EXPECT().Balance(gomock.Any()).Return(uint64(1_000_000), nil)
	f.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(&payments.TransferReceipt{Reference: "tx-1", SettledAt: time.Now()}, nil)
	if _, err := f.svc.PayWinner(f.ctx, "alice-wallet", d.Cadence, d.SequenceID); err != nil {
		t.Fatalf("pay: %v", err)
	}

	f.contribute(t, 3_000_000)
	second := f.createDraw(t, models.CadenceHourly, time.Minute)
	f.clock.Advance(time.Minute)
	f.execute(t, second, "alice-wallet")
	f.gateway.EXPECT().Balance(gomock.Any()).Return(uint64(1_000_000), nil)
	f.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(&payments.TransferReceipt{Reference: "tx-2", SettledAt: time.Now()}, nil)
	if _, err := f.svc.PayWinner(f.ctx, "alice-wallet", second.Cadence, second.SequenceID); err != nil {
		t.Fatalf("pay second: %v", err)
	}

	fame, err := f.svc.HallOfFame(f.ctx, 0)
	if err != nil {
		t.Fatalf("hall of fame: %v", err)
	}
	if len(fame) != 2 || fame[0].ID != second.ID || fame[0].JackpotAmount != 300_000 {
		t.Errorf("expected the larger jackpot first, got %+v", fame)
	}
	won, _ = f.svc.DrawsWonBy(f.ctx, models.DrawStatusCompleted, "alice-wallet")
	if len(won) != 2 || won[0].ID != second.ID {
		t.Errorf("expected newest win first, got %+v", won)
	}
}
