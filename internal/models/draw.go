package models

import (
	"fmt"
	"time"
)

// DrawStatus represents the status of a draw
type DrawStatus string

const (
	DrawStatusPending    DrawStatus = "PENDING"
	DrawStatusProcessing DrawStatus = "PROCESSING"
	DrawStatusCompleted  DrawStatus = "COMPLETED"
	DrawStatusCancelled  DrawStatus = "CANCELLED"
	DrawStatusFailed     DrawStatus = "FAILED"
)

// Terminal reports whether no further transition leaves s.
func (s DrawStatus) Terminal() bool {
	return s == DrawStatusCompleted || s == DrawStatusCancelled || s == DrawStatusFailed
}

// ParseDrawStatus accepts a status name in upper case.
func ParseDrawStatus(s string) (DrawStatus, error) {
	switch st := DrawStatus(s); st {
	case DrawStatusPending, DrawStatusProcessing, DrawStatusCompleted, DrawStatusCancelled, DrawStatusFailed:
		return st, nil
	}
	return "", ErrInvalidInstructionData
}

// DrawKey is the storage key of a draw, e.g. "HOURLY-000042".
func DrawKey(c Cadence, sequence uint32) string {
	return fmt.Sprintf("%s-%06d", c, sequence)
}

// Draw is one prize round of a cadence. JackpotAmount, TotalParticipants and
// TotalTickets are copied from the ledger when the draw is created.
type Draw struct {
	ID                   string     `bson:"_id" json:"id"`
	SequenceID           uint32     `bson:"sequenceId" json:"sequenceId"`
	Cadence              Cadence    `bson:"cadence" json:"cadence"`
	ScheduledTime        time.Time  `bson:"scheduledTime" json:"scheduledTime"`
	ExecutedTime         time.Time  `bson:"executedTime,omitempty" json:"executedTime,omitempty"`
	Status               DrawStatus `bson:"status" json:"status"`
	JackpotAmount        uint64     `bson:"jackpotAmount" json:"jackpotAmount"`
	TotalParticipants    uint64     `bson:"totalParticipants" json:"totalParticipants"`
	TotalTickets         uint64     `bson:"totalTickets" json:"totalTickets"`
	Winner               string     `bson:"winner,omitempty" json:"winner,omitempty"`
	WinnerTickets        uint64     `bson:"winnerTickets,omitempty" json:"winnerTickets,omitempty"`
	RandomSeed           uint64     `bson:"randomSeed,omitempty" json:"randomSeed,omitempty"`
	TransactionSignature string     `bson:"transactionSignature,omitempty" json:"transactionSignature,omitempty"`
	PayoutTime           time.Time  `bson:"payoutTime,omitempty" json:"payoutTime,omitempty"`
	PayoutReference      string     `bson:"payoutReference,omitempty" json:"payoutReference,omitempty"`
	CancelReason         string     `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	ProcessingCost       uint64     `bson:"processingCost" json:"processingCost"`
	CheckpointHash       string     `bson:"checkpointHash" json:"checkpointHash"`
	CreatedAt            time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time  `bson:"updatedAt" json:"updatedAt"`
}
