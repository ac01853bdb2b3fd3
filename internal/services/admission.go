package services

import (
	"fmt"
	"math/bits"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
)

// checkAdmission gates every financial entry point on both suspension flags.
func checkAdmission(ledger *models.Ledger) error {
	if ledger.IsPaused {
		return models.ErrProgramPaused
	}
	if ledger.EmergencyStop {
		return models.ErrEmergencyStop
	}
	return nil
}

func requireAdmin(ledger *models.Ledger, caller string) error {
	if caller == "" || caller != ledger.Admin {
		return models.ErrUnauthorized
	}
	return nil
}

func checkReference(ref string) error {
	if len(ref) > models.SignatureMaxLen {
		return fmt.Errorf("%w: %d bytes, max %d", models.ErrSignatureTooLong, len(ref), models.SignatureMaxLen)
	}
	return nil
}

func addUint64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, models.ErrArithmeticOverflow
	}
	return sum, nil
}

func subUint64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, models.ErrArithmeticOverflow
	}
	return diff, nil
}

// percentOf returns floor(amount*pct/100) without overflowing the product.
func percentOf(amount, pct uint64) uint64 {
	hi, lo := bits.Mul64(amount, pct)
	q, _ := bits.Div64(hi, lo, 100)
	return q
}
