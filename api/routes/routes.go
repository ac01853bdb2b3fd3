package routes

import (
	"net/http"

	"github.com/ArowuTest/jackpot-ledger/internal/handlers"
	"github.com/ArowuTest/jackpot-ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies holds what the router needs
type HandlerDependencies struct {
	LotteryHandler *handlers.LotteryHandler
	Tokens         middleware.TokenParser
	AllowedHosts   []string
}

// SetupRouter sets up the router
func SetupRouter(deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(deps.AllowedHosts))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	h := deps.LotteryHandler

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		public.GET("/state", h.GetState)
		public.GET("/draws", h.ListDraws)
		public.GET("/draws/:cadence/:sequence", h.GetDraw)
		public.GET("/participants/:wallet", h.GetParticipant)
		public.GET("/events", h.RecentEvents)
		public.GET("/participants", h.Leaderboard)
		public.GET("/winners", h.HallOfFame)
		public.GET("/stats/participants", h.ParticipantStats)
		public.GET("/errors", h.ErrorCatalog)
		public.GET("/errors/:code", h.GetError)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(deps.Tokens))
	{
		protected.POST("/initialize", h.Initialize)
		protected.PUT("/config", h.UpdateConfig)
		protected.POST("/pause/toggle", h.TogglePause)
		protected.POST("/emergency/pause", h.EmergencyPause)
		protected.POST("/emergency/resume", h.EmergencyResume)
		protected.POST("/treasury/withdraw", h.WithdrawTreasury)

		protected.POST("/contributions", h.Contribute)
		protected.POST("/participants", h.UpdateParticipant)

		draws := protected.Group("/draws")
		{
			draws.POST("", h.CreateDraw)
			draws.POST("/:cadence/:sequence/execute", h.ExecuteDraw)
			draws.POST("/:cadence/:sequence/pay", h.PayWinner)
			draws.POST("/:cadence/:sequence/cancel", h.CancelDraw)
		}
	}

	return router
}
