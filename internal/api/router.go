package api

import (
	"github.com/gin-gonic/gin"

	"github.com/freshspot/jobharvest/internal/api/handler"
	"github.com/freshspot/jobharvest/internal/api/middleware"
	"github.com/freshspot/jobharvest/internal/logger"
	"github.com/freshspot/jobharvest/internal/repository"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	jobs *repository.JobRepository,
	runs *repository.RunRepository,
	log *logger.Logger,
	mode string,
	cors middleware.CORSConfig,
) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler()
	jobHandler := handler.NewJobHandler(jobs)
	runHandler := handler.NewRunHandler(runs)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Jobs
		v1.GET("/jobs", jobHandler.ListJobs)
		v1.GET("/jobs/:id", jobHandler.GetJob)

		// Categories
		v1.GET("/categories", jobHandler.GetCategories)

		// Stats
		v1.GET("/stats", jobHandler.GetStats)

		// Harvest runs
		v1.GET("/runs", runHandler.ListRuns)
	}

	return r
}
