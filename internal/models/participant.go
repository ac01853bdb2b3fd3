package models

import "time"

// Participant is one wallet's reported balance and the tickets derived from it.
// Records are never removed; a zero balance is the removal path.
type Participant struct {
	Wallet             string    `bson:"_id" json:"wallet"`
	Balance            uint64    `bson:"balance" json:"balance"`
	TicketsCount       uint64    `bson:"ticketsCount" json:"ticketsCount"`
	IsEligible         bool      `bson:"isEligible" json:"isEligible"`
	TokenAccount       string    `bson:"tokenAccount,omitempty" json:"tokenAccount,omitempty"`
	ParticipationCount uint64    `bson:"participationCount" json:"participationCount"`
	TotalWinnings      uint64    `bson:"totalWinnings" json:"totalWinnings"`
	LastWinTime        time.Time `bson:"lastWinTime,omitempty" json:"lastWinTime,omitempty"`
	LastUpdated        time.Time `bson:"lastUpdated" json:"lastUpdated"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
}

// TokenAccount describes the external balance account a report was read from.
type TokenAccount struct {
	Address string `json:"address"`
	Mint    string `json:"mint" binding:"required"`
	Owner   string `json:"owner" binding:"required"`
	Amount  uint64 `json:"amount"`
}

// TicketsFor converts a balance into whole tickets.
func TicketsFor(balance, ticketUnit uint64) uint64 {
	if ticketUnit == 0 {
		return 0
	}
	return balance / ticketUnit
}

// EligibleFor reports whether tickets meets the minimum requirement.
// Zero tickets is never eligible.
func EligibleFor(tickets, minTickets uint64) bool {
	return tickets > 0 && tickets >= minTickets
}

// Contribution returns the participant's share of the ledger aggregates.
func (p *Participant) Contribution() (participants, tickets uint64) {
	if !p.IsEligible {
		return 0, 0
	}
	return 1, p.TicketsCount
}
