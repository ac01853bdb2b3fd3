package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/utils"
)

const (
	// LeaderboardLimit caps the holders returned by Leaderboard.
	LeaderboardLimit = 100
	// HallOfFameLimit caps the draws returned by HallOfFame.
	HallOfFameLimit = 50
	statsTopHolders = 10
)

// ticketRanges buckets eligible holders by ticket count. The last range is
// open ended.
var ticketRanges = []struct {
	label    string
	min, max uint64
}{
	{"1-10", 1, 10},
	{"11-50", 11, 50},
	{"51-100", 51, 100},
	{"101-500", 101, 500},
	{"500+", 501, math.MaxUint64},
}

// Leaderboard returns eligible participants with the most tickets first.
// A limit outside (0, LeaderboardLimit] means LeaderboardLimit.
func (s *LotteryServiceImpl) Leaderboard(ctx context.Context, limit int) ([]*models.Participant, error) {
	if limit <= 0 || limit > LeaderboardLimit {
		limit = LeaderboardLimit
	}
	eligible, err := s.rankedHolders(ctx)
	if err != nil {
		return nil, err
	}
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible, nil
}

// HallOfFame returns completed draws with the largest jackpots first
func (s *LotteryServiceImpl) HallOfFame(ctx context.Context, limit int) ([]*models.Draw, error) {
	if limit <= 0 || limit > HallOfFameLimit {
		limit = HallOfFameLimit
	}
	draws, err := s.ListDraws(ctx, models.DrawStatusCompleted)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(draws, func(i, j int) bool { return draws[i].JackpotAmount > draws[j].JackpotAmount })
	if len(draws) > limit {
		draws = draws[:limit]
	}
	return draws, nil
}

// DrawsWonBy returns the draws in status won by wallet, newest execution
// first.
func (s *LotteryServiceImpl) DrawsWonBy(ctx context.Context, status models.DrawStatus, wallet string) ([]*models.Draw, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, fmt.Errorf("%w: wallet is required", models.ErrInvalidInstructionData)
	}
	draws, err := s.ListDraws(ctx, status)
	if err != nil {
		return nil, err
	}
	won := []*models.Draw{}
	for _, d := range draws {
		if d.Winner == wallet {
			won = append(won, d)
		}
	}
	sort.SliceStable(won, func(i, j int) bool { return won[i].ExecutedTime.After(won[j].ExecutedTime) })
	return won, nil
}

// ParticipantStats summarises the eligible holders
func (s *LotteryServiceImpl) ParticipantStats(ctx context.Context) (*ParticipantStats, error) {
	eligible, err := s.rankedHolders(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ParticipantStats{
		TotalParticipants: uint64(len(eligible)),
		TicketRanges:      make([]TicketRange, len(ticketRanges)),
		TopHolders:        []HolderSummary{},
	}
	for i, r := range ticketRanges {
		stats.TicketRanges[i].Label = r.label
	}
	for i, p := range eligible {
		if stats.TotalTickets, err = addUint64(stats.TotalTickets, p.TicketsCount); err != nil {
			return nil, err
		}
		for j, r := range ticketRanges {
			if p.TicketsCount >= r.min && p.TicketsCount <= r.max {
				stats.TicketRanges[j].Count++
				break
			}
		}
		if i < statsTopHolders {
			stats.TopHolders = append(stats.TopHolders, HolderSummary{
				Wallet:  utils.MaskWallet(p.Wallet),
				Tickets: p.TicketsCount,
				Balance: p.Balance,
			})
		}
	}
	if stats.TotalParticipants > 0 {
		avg := float64(stats.TotalTickets) / float64(stats.TotalParticipants)
		stats.AverageTickets = math.Round(avg*100) / 100
	}
	return stats, nil
}

// rankedHolders lists eligible participants by tickets descending, then by
// wallet.
func (s *LotteryServiceImpl) rankedHolders(ctx context.Context) ([]*models.Participant, error) {
	eligible, err := s.participantRepo.FindEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible participants: %w", err)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].TicketsCount != eligible[j].TicketsCount {
			return eligible[i].TicketsCount > eligible[j].TicketsCount
		}
		return eligible[i].Wallet < eligible[j].Wallet
	})
	return eligible, nil
}
