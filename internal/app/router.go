package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"tripledger/internal/handler"
	"tripledger/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	ExpenseHandler     *handler.ExpenseHandler
	LedgerHandler      *handler.LedgerHandler
	PaymentHandler     *handler.PaymentHandler
	ParticipantHandler *handler.ParticipantHandler
	RedisClient        *redis.Client
	NewRelicApp        *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Identity())
	router.Use(middleware.Idempotency(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Trip-scoped routes.
		trips := v1.Group("/trips/:tripId")
		{
			trips.POST("/participants", deps.ParticipantHandler.Register)
			trips.GET("/participants", deps.ParticipantHandler.GetAll)
			trips.GET("/expenses", deps.ExpenseHandler.ListExpenses)
			trips.GET("/summary", deps.LedgerHandler.GetSummary)
			trips.POST("/refresh", deps.LedgerHandler.RefreshTrip)
		}

		// Expense routes.
		expenses := v1.Group("/expenses")
		{
			expenses.POST("", deps.ExpenseHandler.CreateExpense)
			expenses.DELETE("/:id", deps.ExpenseHandler.DeleteExpense)
		}

		// Payment share routes.
		shares := v1.Group("/shares")
		{
			shares.POST("/:id/status", deps.PaymentHandler.UpdateShareStatus)
		}

		// Rate cache administration.
		v1.DELETE("/rates", deps.LedgerHandler.ClearRates)
	}

	return router
}
