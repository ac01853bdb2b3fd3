package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/pkg/payments"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// statusFor maps an operation error onto an HTTP status.
func statusFor(err error) int {
	var lerr *models.LotteryError
	if !errors.As(err, &lerr) {
		if errors.Is(err, payments.ErrTransferRejected) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}

	switch lerr.Code {
	case models.CodeUnauthorized:
		return http.StatusForbidden
	case models.CodeAccountNotFound:
		return http.StatusNotFound
	case models.CodeProgramPaused, models.CodeEmergencyStop:
		return http.StatusServiceUnavailable
	case models.CodeInvalidProgramState:
		return http.StatusConflict
	}

	switch lerr.Category {
	case models.CategoryLifecycle:
		return http.StatusConflict
	case models.CategoryValidation:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// respondError writes err as {"error", "code", "message"}.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	var lerr *models.LotteryError
	if !errors.As(err, &lerr) {
		slog.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "InternalError", "code": 0, "message": http.StatusText(status)})
		return
	}
	c.JSON(status, gin.H{"error": lerr.Name, "code": lerr.Code, "message": err.Error()})
}
