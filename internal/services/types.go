package services

import (
	"time"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
)

// InitializeRequest carries the deployer's parameters. An empty
// AdminAuthority makes the caller the admin.
type InitializeRequest struct {
	EligibilityTokenReference string `json:"eligibilityTokenReference" binding:"required"`
	AdminAuthority            string `json:"adminAuthority"`
}

// ConfigPatch holds optional configuration overrides. A nil field is left
// unchanged; it never means zero.
type ConfigPatch struct {
	MinTicketRequirement *uint64 `json:"minTicketRequirement,omitempty"`
	MaxTicketsPerWallet  *uint64 `json:"maxTicketsPerWallet,omitempty"`
	FeePercentage        *uint64 `json:"feePercentage,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p ConfigPatch) Empty() bool {
	return p.MinTicketRequirement == nil && p.MaxTicketsPerWallet == nil && p.FeePercentage == nil
}

type WithdrawRequest struct {
	Amount      uint64 `json:"amount"`
	Destination string `json:"destination" binding:"required"`
}

// ParticipantUpdate is a balance report. TokenAccount, when present, is the
// external account the balance was read from.
type ParticipantUpdate struct {
	ReportedBalance uint64               `json:"reportedBalance"`
	TokenAccount    *models.TokenAccount `json:"tokenAccount,omitempty"`
}

type ContributionRequest struct {
	Amount            uint64                    `json:"amount"`
	ExternalReference string                    `json:"externalReference"`
	Source            models.ContributionSource `json:"source"`
}

// CreateDrawRequest opens a draw. SequenceID is optional; when supplied it
// must be the next sequence of the cadence.
type CreateDrawRequest struct {
	Cadence       models.Cadence `json:"cadence" binding:"required"`
	ScheduledTime time.Time      `json:"scheduledTime" binding:"required"`
	SequenceID    *uint32        `json:"sequenceId,omitempty"`
}

type ExecuteDrawRequest struct {
	Cadence           models.Cadence `json:"cadence"`
	SequenceID        uint32         `json:"sequenceId"`
	Winner            string         `json:"winner" binding:"required"`
	RandomSeed        uint64         `json:"randomSeed"`
	ExternalReference string         `json:"externalReference"`
}

// ParticipantStats is the holder summary behind the stats endpoint.
type ParticipantStats struct {
	TotalParticipants uint64          `json:"totalParticipants"`
	TotalTickets      uint64          `json:"totalTickets"`
	AverageTickets    float64         `json:"averageTickets"`
	TicketRanges      []TicketRange   `json:"ticketRanges"`
	TopHolders        []HolderSummary `json:"topHolders"`
}

type TicketRange struct {
	Label string `json:"label"`
	Count uint64 `json:"count"`
}

// HolderSummary shows a top holder with the wallet masked
type HolderSummary struct {
	Wallet  string `json:"wallet"`
	Tickets uint64 `json:"tickets"`
	Balance uint64 `json:"balance"`
}
