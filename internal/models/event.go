package models

import "time"

// EventType names the operation that produced an Event.
type EventType string

const (
	EventProgramInitialized  EventType = "PROGRAM_INITIALIZED"
	EventJackpotContribution EventType = "JACKPOT_CONTRIBUTION"
	EventParticipantUpdated  EventType = "PARTICIPANT_UPDATED"
	EventLotteryCreated      EventType = "LOTTERY_CREATED"
	EventLotteryExecuted     EventType = "LOTTERY_EXECUTED"
	EventLotteryCancelled    EventType = "LOTTERY_CANCELLED"
	EventWinnerPaid          EventType = "WINNER_PAID"
	EventConfigUpdated       EventType = "CONFIG_UPDATED"
	EventPauseToggled        EventType = "PAUSE_TOGGLED"
	EventEmergencyPause      EventType = "EMERGENCY_PAUSE"
	EventEmergencyResume     EventType = "EMERGENCY_RESUME"
	EventTreasuryWithdrawal  EventType = "TREASURY_WITHDRAWAL"
)

// Event is the audit record of one committed mutation. Data carries the
// operation's before and after values.
type Event struct {
	ID        string                 `bson:"_id" json:"id"`
	Type      EventType              `bson:"type" json:"type"`
	Actor     string                 `bson:"actor" json:"actor"`
	Data      map[string]interface{} `bson:"data" json:"data"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
}
