package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/folgercn/ai-bookkeeper/internal/config"
	handler "github.com/folgercn/ai-bookkeeper/internal/handlers"
	"github.com/folgercn/ai-bookkeeper/internal/repository"
	"github.com/folgercn/ai-bookkeeper/internal/services/duplicate"
	"github.com/folgercn/ai-bookkeeper/internal/services/extraction"
	"github.com/folgercn/ai-bookkeeper/internal/services/interpreter"
	"github.com/folgercn/ai-bookkeeper/internal/services/llmclient"
	"github.com/folgercn/ai-bookkeeper/internal/services/staging"
)

// RegisterRoutes wires repositories, services, and handlers onto the engine
// and returns the staging service so main can start the janitor.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Settings, log zerolog.Logger) *staging.Service {
	expenseRepo := repository.NewExpenseRepository(db)
	stagingRepo := repository.NewStagingRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	gemini := llmclient.NewGemini(cfg.GeminiModel)
	extractor := extraction.NewGateway(gemini, categoryRepo, cfg.LLMTimeout, log)
	interp := interpreter.NewGateway(gemini, cfg.LLMTimeout, log)
	detector := duplicate.NewDetector(expenseRepo, cfg.DuplicateLookbackDays, log)
	stagingSvc := staging.NewService(stagingRepo, expenseRepo, categoryRepo, log)

	recordHandler := handler.NewRecordHandler(extractor, interp, detector, stagingSvc, log)
	expenseHandler := handler.NewExpenseHandler(expenseRepo)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authed := api.Group("")
	authed.Use(handler.RequireOwner())

	// Staging workflow routes
	record := authed.Group("/record")
	record.POST("", recordHandler.Submit)
	record.POST("/interact", recordHandler.Interact)
	record.POST("/confirm", recordHandler.Resolve)
	record.GET("/:batchId", recordHandler.GetBatch)

	// Committed-ledger routes
	expenses := authed.Group("/expenses")
	expenses.GET("", expenseHandler.List)
	expenses.GET("/summary", expenseHandler.Summary)
	expenses.PUT("/:id", expenseHandler.Update)
	expenses.DELETE("/:id", expenseHandler.Delete)

	return stagingSvc
}
