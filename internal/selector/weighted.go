// Package selector picks draw winners with probability proportional to
// tickets held.
package selector

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories"
	"golang.org/x/exp/slog"
)

// ErrNoTickets is returned when no eligible participant holds a ticket.
var ErrNoTickets = errors.New("no eligible tickets to select from")

// WeightedSelector draws one ticket uniformly from all tickets held by
// eligible participants.
type WeightedSelector struct {
	participants repositories.ParticipantRepository
	random       io.Reader
}

// NewWeightedSelector creates a selector reading randomness from crypto/rand.
func NewWeightedSelector(participants repositories.ParticipantRepository) *WeightedSelector {
	return &WeightedSelector{participants: participants, random: rand.Reader}
}

// WithRandom replaces the randomness source. Tests use it for determinism.
func (s *WeightedSelector) WithRandom(r io.Reader) *WeightedSelector {
	s.random = r
	return s
}

// Select returns the winning wallet and the non-zero seed that chose it.
// Participants are walked in wallet order, so the same seed over the same
// participants always gives the same winner.
func (s *WeightedSelector) Select(ctx context.Context, draw models.Draw) (string, uint64, error) {
	eligible, err := s.participants.FindEligible(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list eligible participants: %w", err)
	}

	var total uint64
	for _, p := range eligible {
		total += p.TicketsCount
	}
	if total == 0 {
		return "", 0, ErrNoTickets
	}

	seed, ticket, err := s.drawTicket(total)
	if err != nil {
		return "", 0, err
	}

	winner := pick(eligible, ticket)
	slog.Info("Winner selected", "draw", draw.ID, "eligible", len(eligible), "tickets", total, "ticket", ticket)
	return winner, seed, nil
}

// drawTicket returns a seed and the ticket index seed % total. Seeds in the
// biased tail of the uint64 range, and the zero seed, are redrawn.
func (s *WeightedSelector) drawTicket(total uint64) (seed, ticket uint64, err error) {
	limit := ^uint64(0) - (^uint64(0) % total)
	var buf [8]byte
	for {
		if _, err := io.ReadFull(s.random, buf[:]); err != nil {
			return 0, 0, fmt.Errorf("failed to read random seed: %w", err)
		}
		seed = binary.BigEndian.Uint64(buf[:])
		if seed != 0 && seed < limit {
			return seed, seed % total, nil
		}
	}
}

// pick maps a ticket index onto the participant holding it.
func pick(eligible []*models.Participant, ticket uint64) string {
	var cumulative uint64
	for _, p := range eligible {
		cumulative += p.TicketsCount
		if ticket < cumulative {
			return p.Wallet
		}
	}
	return eligible[len(eligible)-1].Wallet
}
