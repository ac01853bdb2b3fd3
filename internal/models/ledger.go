package models

import (
	"strings"
	"time"
)

// Cadence is the recurring period class of a draw.
type Cadence string

const (
	CadenceHourly Cadence = "HOURLY"
	CadenceDaily  Cadence = "DAILY"
)

// Cadences lists every cadence in a stable order.
var Cadences = []Cadence{CadenceHourly, CadenceDaily}

// Valid reports whether c is a known cadence.
func (c Cadence) Valid() bool {
	return c == CadenceHourly || c == CadenceDaily
}

// ParseCadence accepts "hourly" or "daily" in any case.
func ParseCadence(s string) (Cadence, error) {
	c := Cadence(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidInstructionData
	}
	return c, nil
}

const (
	// LedgerID is the document key of the singleton ledger.
	LedgerID = "lottery_state"
	// LedgerSchemaVersion is the only stored ledger version this build reads.
	LedgerSchemaVersion uint8 = 1

	DefaultTicketUnit           uint64 = 10_000
	DefaultMinTicketRequirement uint64 = 1
	DefaultMaxTicketsPerWallet  uint64 = 10_000
	DefaultFeePercentage        uint64 = 85

	MinTicketRequirementLimit uint64 = 100
	MaxTicketsPerWalletLimit  uint64 = 100_000
	FeePercentageLimit        uint64 = 100

	HourlyJackpotPercentage uint64 = 10
	DailyJackpotPercentage  uint64 = 5

	MinJackpotAmount uint64 = 1_000_000
	MaxJackpotAmount uint64 = 1_000_000_000_000

	// SignatureMaxLen bounds external references and operator reasons.
	SignatureMaxLen = 88
)

// Ledger is the global aggregate: pools, totals, configuration and flags.
type Ledger struct {
	ID                        string    `bson:"_id" json:"-"`
	Admin                     string    `bson:"admin" json:"admin"`
	EligibilityTokenReference string    `bson:"eligibilityTokenReference" json:"eligibilityTokenReference"`
	TicketUnit                uint64    `bson:"ticketUnit" json:"ticketUnit"`
	HourlyJackpot             uint64    `bson:"hourlyJackpot" json:"hourlyJackpot"`
	DailyJackpot              uint64    `bson:"dailyJackpot" json:"dailyJackpot"`
	TotalParticipants         uint64    `bson:"totalParticipants" json:"totalParticipants"`
	TotalTickets              uint64    `bson:"totalTickets" json:"totalTickets"`
	HourlyDrawCount           uint32    `bson:"hourlyDrawCount" json:"hourlyDrawCount"`
	DailyDrawCount            uint32    `bson:"dailyDrawCount" json:"dailyDrawCount"`
	LastHourlyDraw            time.Time `bson:"lastHourlyDraw,omitempty" json:"lastHourlyDraw,omitempty"`
	LastDailyDraw             time.Time `bson:"lastDailyDraw,omitempty" json:"lastDailyDraw,omitempty"`
	MinTicketRequirement      uint64    `bson:"minTicketRequirement" json:"minTicketRequirement"`
	MaxTicketsPerWallet       uint64    `bson:"maxTicketsPerWallet" json:"maxTicketsPerWallet"`
	FeePercentage             uint64    `bson:"feePercentage" json:"feePercentage"`
	TreasuryBalance           uint64    `bson:"treasuryBalance" json:"treasuryBalance"`
	UnallocatedBalance        uint64    `bson:"unallocatedBalance" json:"unallocatedBalance"`
	TotalVolumeProcessed      uint64    `bson:"totalVolumeProcessed" json:"totalVolumeProcessed"`
	IsPaused                  bool      `bson:"isPaused" json:"isPaused"`
	EmergencyStop             bool      `bson:"emergencyStop" json:"emergencyStop"`
	Version                   uint8     `bson:"version" json:"version"`
	InitializedAt             time.Time `bson:"initializedAt" json:"initializedAt"`
	LastUpdated               time.Time `bson:"lastUpdated" json:"lastUpdated"`
}

// Pool returns the live jackpot pool for c.
func (l *Ledger) Pool(c Cadence) uint64 {
	if c == CadenceDaily {
		return l.DailyJackpot
	}
	return l.HourlyJackpot
}

// SetPool overwrites the live jackpot pool for c.
func (l *Ledger) SetPool(c Cadence, amount uint64) {
	if c == CadenceDaily {
		l.DailyJackpot = amount
		return
	}
	l.HourlyJackpot = amount
}

// DrawCount returns the number of draws created for c.
func (l *Ledger) DrawCount(c Cadence) uint32 {
	if c == CadenceDaily {
		return l.DailyDrawCount
	}
	return l.HourlyDrawCount
}

func (l *Ledger) SetDrawCount(c Cadence, n uint32) {
	if c == CadenceDaily {
		l.DailyDrawCount = n
		return
	}
	l.HourlyDrawCount = n
}

// LastDraw returns the time of the most recent execution for c.
func (l *Ledger) LastDraw(c Cadence) time.Time {
	if c == CadenceDaily {
		return l.LastDailyDraw
	}
	return l.LastHourlyDraw
}

func (l *Ledger) SetLastDraw(c Cadence, t time.Time) {
	if c == CadenceDaily {
		l.LastDailyDraw = t
		return
	}
	l.LastHourlyDraw = t
}

// LotteryState is the read-only projection returned to callers.
type LotteryState struct {
	Ledger
	NextHourlySequence uint32 `json:"nextHourlySequence"`
	NextDailySequence  uint32 `json:"nextDailySequence"`
}

// NewLotteryState projects l. The ledger is copied.
func NewLotteryState(l *Ledger) *LotteryState {
	return &LotteryState{
		Ledger:             *l,
		NextHourlySequence: l.HourlyDrawCount + 1,
		NextDailySequence:  l.DailyDrawCount + 1,
	}
}
