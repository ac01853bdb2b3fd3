package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ArowuTest/jackpot-ledger/internal/middleware"
	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// LotteryHandler handles ledger and draw HTTP requests
type LotteryHandler struct {
	lotteryService services.LotteryService
	selector       services.WinnerSelector
}

// NewLotteryHandler creates a new LotteryHandler. selector may be nil, in
// which case executions must name their winner.
func NewLotteryHandler(lotteryService services.LotteryService, selector services.WinnerSelector) *LotteryHandler {
	return &LotteryHandler{
		lotteryService: lotteryService,
		selector:       selector,
	}
}

// ReasonRequest carries an operator's reason
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ExecuteRequest names the winner of a draw, or asks the server's selector
// to pick one.
type ExecuteRequest struct {
	Winner            string `json:"winner"`
	RandomSeed        uint64 `json:"randomSeed"`
	ExternalReference string `json:"externalReference"`
	UseSelector       bool   `json:"useSelector"`
}

func bind(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		respondError(c, fmt.Errorf("%w: %v", models.ErrInvalidInstructionData, err))
		return false
	}
	return true
}

// drawAddress reads the :cadence and :sequence path parameters.
func drawAddress(c *gin.Context) (models.Cadence, uint32, bool) {
	cadence, err := models.ParseCadence(c.Param("cadence"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: unknown cadence %q", err, c.Param("cadence")))
		return "", 0, false
	}
	seq, err := strconv.ParseUint(c.Param("sequence"), 10, 32)
	if err != nil || seq == 0 {
		respondError(c, fmt.Errorf("%w: invalid sequence %q", models.ErrInvalidInstructionData, c.Param("sequence")))
		return "", 0, false
	}
	return cadence, uint32(seq), true
}

// GetState handles GET /state
func (h *LotteryHandler) GetState(c *gin.Context) {
	state, err := h.lotteryService.GetLotteryState(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Initialize handles POST /initialize
func (h *LotteryHandler) Initialize(c *gin.Context) {
	var req services.InitializeRequest
	if !bind(c, &req) {
		return
	}
	state, err := h.lotteryService.Initialize(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// UpdateConfig handles PUT /config
func (h *LotteryHandler) UpdateConfig(c *gin.Context) {
	var patch services.ConfigPatch
	if !bind(c, &patch) {
		return
	}
	state, err := h.lotteryService.UpdateConfig(c.Request.Context(), middleware.Caller(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// TogglePause handles POST /pause/toggle
func (h *LotteryHandler) TogglePause(c *gin.Context) {
	state, err := h.lotteryService.TogglePause(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// EmergencyPause handles POST /emergency/pause
func (h *LotteryHandler) EmergencyPause(c *gin.Context) {
	var req ReasonRequest
	if !bind(c, &req) {
		return
	}
	state, err := h.lotteryService.EmergencyPause(c.Request.Context(), middleware.Caller(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// EmergencyResume handles POST /emergency/resume
func (h *LotteryHandler) EmergencyResume(c *gin.Context) {
	var req ReasonRequest
	if !bind(c, &req) {
		return
	}
	state, err := h.lotteryService.EmergencyResume(c.Request.Context(), middleware.Caller(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// WithdrawTreasury handles POST /treasury/withdraw
func (h *LotteryHandler) WithdrawTreasury(c *gin.Context) {
	var req services.WithdrawRequest
	if !bind(c, &req) {
		return
	}
	receipt, err := h.lotteryService.WithdrawTreasury(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// UpdateParticipant handles POST /participants. The wallet is the caller.
func (h *LotteryHandler) UpdateParticipant(c *gin.Context) {
	var req services.ParticipantUpdate
	if !bind(c, &req) {
		return
	}
	participant, err := h.lotteryService.UpdateParticipant(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participant)
}

// GetParticipant handles GET /participants/:wallet
func (h *LotteryHandler) GetParticipant(c *gin.Context) {
	participant, err := h.lotteryService.GetParticipant(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participant)
}

// Contribute handles POST /contributions
func (h *LotteryHandler) Contribute(c *gin.Context) {
	var req services.ContributionRequest
	if !bind(c, &req) {
		return
	}
	split, err := h.lotteryService.ContributeToJackpot(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, split)
}

// CreateDraw handles POST /draws
func (h *LotteryHandler) CreateDraw(c *gin.Context) {
	var req services.CreateDrawRequest
	if !bind(c, &req) {
		return
	}
	cadence, err := models.ParseCadence(string(req.Cadence))
	if err != nil {
		respondError(c, fmt.Errorf("%w: unknown cadence %q", err, req.Cadence))
		return
	}
	req.Cadence = cadence

	draw, err := h.lotteryService.CreateLottery(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draw)
}

// GetDraw handles GET /draws/:cadence/:sequence
func (h *LotteryHandler) GetDraw(c *gin.Context) {
	cadence, seq, ok := drawAddress(c)
	if !ok {
		return
	}
	draw, err := h.lotteryService.GetDraw(c.Request.Context(), cadence, seq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// ListDraws handles GET /draws?status=PENDING
func (h *LotteryHandler) ListDraws(c *gin.Context) {
	status, err := models.ParseDrawStatus(c.DefaultQuery("status", string(models.DrawStatusPending)))
	if err != nil {
		respondError(c, fmt.Errorf("%w: unknown status %q", err, c.Query("status")))
		return
	}
	var draws []*models.Draw
	if winner := c.Query("winner"); winner != "" {
		draws, err = h.lotteryService.DrawsWonBy(c.Request.Context(), status, winner)
	} else {
		draws, err = h.lotteryService.ListDraws(c.Request.Context(), status)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draws": draws, "count": len(draws)})
}

// ExecuteDraw handles POST /draws/:cadence/:sequence/execute
func (h *LotteryHandler) ExecuteDraw(c *gin.Context) {
	cadence, seq, ok := drawAddress(c)
	if !ok {
		return
	}
	var req ExecuteRequest
	if !bind(c, &req) {
		return
	}

	var (
		draw *models.Draw
		err  error
	)
	if req.UseSelector {
		if h.selector == nil {
			respondError(c, fmt.Errorf("%w: no winner selector is configured", models.ErrInvalidInstructionData))
			return
		}
		draw, err = h.lotteryService.ExecuteWithSelector(c.Request.Context(), middleware.Caller(c), cadence, seq, h.selector)
	} else {
		draw, err = h.lotteryService.ExecuteLottery(c.Request.Context(), middleware.Caller(c), services.ExecuteDrawRequest{
			Cadence:           cadence,
			SequenceID:        seq,
			Winner:            req.Winner,
			RandomSeed:        req.RandomSeed,
			ExternalReference: req.ExternalReference,
		})
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// PayWinner handles POST /draws/:cadence/:sequence/pay. The payee is the
// caller.
func (h *LotteryHandler) PayWinner(c *gin.Context) {
	cadence, seq, ok := drawAddress(c)
	if !ok {
		return
	}
	draw, err := h.lotteryService.PayWinner(c.Request.Context(), middleware.Caller(c), cadence, seq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// CancelDraw handles POST /draws/:cadence/:sequence/cancel
func (h *LotteryHandler) CancelDraw(c *gin.Context) {
	cadence, seq, ok := drawAddress(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !bind(c, &req) {
		return
	}
	draw, err := h.lotteryService.CancelLottery(c.Request.Context(), middleware.Caller(c), cadence, seq, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// RecentEvents handles GET /events?limit=50
func (h *LotteryHandler) RecentEvents(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, fmt.Errorf("%w: invalid limit %q", models.ErrInvalidInstructionData, raw))
			return
		}
		limit = n
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := h.lotteryService.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// queryLimit reads a positive integer query parameter; zero means unset.
func queryLimit(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		respondError(c, fmt.Errorf("%w: invalid %s %q", models.ErrInvalidInstructionData, name, raw))
		return 0, false
	}
	return n, true
}

// Leaderboard handles GET /participants?top=N
func (h *LotteryHandler) Leaderboard(c *gin.Context) {
	top, ok := queryLimit(c, "top")
	if !ok {
		return
	}
	holders, err := h.lotteryService.Leaderboard(c.Request.Context(), top)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": holders, "count": len(holders)})
}

// HallOfFame handles GET /winners
func (h *LotteryHandler) HallOfFame(c *gin.Context) {
	limit, ok := queryLimit(c, "limit")
	if !ok {
		return
	}
	draws, err := h.lotteryService.HallOfFame(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draws": draws, "count": len(draws)})
}

// ParticipantStats handles GET /stats/participants
func (h *LotteryHandler) ParticipantStats(c *gin.Context) {
	stats, err := h.lotteryService.ParticipantStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ErrorCatalog handles GET /errors
func (h *LotteryHandler) ErrorCatalog(c *gin.Context) {
	all := models.AllErrors()
	c.JSON(http.StatusOK, gin.H{"errors": all, "count": len(all)})
}

// GetError handles GET /errors/:code
func (h *LotteryHandler) GetError(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: invalid code %q", models.ErrInvalidInstructionData, c.Param("code")))
		return
	}
	lerr := models.ErrorByCode(models.ErrorCode(code))
	if lerr == nil {
		respondError(c, fmt.Errorf("%w: error code %d", models.ErrAccountNotFound, code))
		return
	}
	c.JSON(http.StatusOK, lerr)
}
