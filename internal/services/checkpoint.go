package services

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"golang.org/x/crypto/sha3"
)

// checkpointHash fingerprints the ledger aggregates a draw was created from.
// It is an audit value; nothing reads it back.
func checkpointHash(ledger *models.Ledger, draw *models.Draw) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(draw.Cadence))

	var buf [8]byte
	for _, v := range []uint64{
		uint64(draw.SequenceID),
		uint64(draw.ScheduledTime.Unix()),
		ledger.HourlyJackpot,
		ledger.DailyJackpot,
		ledger.TotalParticipants,
		ledger.TotalTickets,
		ledger.TreasuryBalance,
		ledger.TotalVolumeProcessed,
	} {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
