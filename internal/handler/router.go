package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tgo/chariott/internal/app"
	"github.com/tgo/chariott/internal/config"
	"github.com/tgo/chariott/internal/middleware"
)

const serviceName = "chariott"

func SetupRouter(cfg *config.Config, a *app.App) *gin.Engine {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())

	r.GET("/", root)
	r.GET("/health", healthCheck)
	r.GET("/live", healthCheck)
	r.GET("/ready", readiness(a))

	documentHandler := NewDocumentHandler(a.Documents, cfg.MaxUploadSize)
	vectorHandler := NewVectorHandler(a.Vectors)
	userHandler := NewUserHandler(a.Users)
	hotelHandler := NewHotelHandler(a.Hotels)
	bookingHandler := NewBookingHandler(a.Bookings)
	requestHandler := NewRequestHandler(a.Requests)
	ragHandler := NewRAGHandler(a.Interactions, a.Recommendations, a.Export)

	authMw := middleware.NewAuthMiddleware(a.JWT, cfg.TrustUserHeader)

	api := r.Group("")
	if cfg.InsecureAuth {
		slog.Warn("INSECURE_AUTH is set, API key check disabled")
	} else {
		api.Use(middleware.APIKey(cfg.APIKey))
	}
	api.Use(authMw.Identity())
	{
		// Documents
		documents := api.Group("/documents")
		{
			documents.POST("/upload", middleware.RequireUser(), documentHandler.Upload)
			documents.GET("", documentHandler.List)
			documents.GET("/user", middleware.RequireUser(), documentHandler.ListMine)
			documents.GET("/:id", documentHandler.Get)
			documents.DELETE("/:id", middleware.RequireUser(), documentHandler.Delete)
		}
		api.DELETE("/vectors/:document_id", middleware.RequireUser(), vectorHandler.DeleteByDocument)

		// Auth
		auth := api.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
		}

		// Users
		users := api.Group("/users")
		{
			users.GET("", userHandler.List)
			users.GET("/staff", userHandler.ListStaff)
			users.GET("/normal", userHandler.ListNormal)
			users.GET("/:id", userHandler.Get)
			users.DELETE("/:id", userHandler.Delete)
			users.GET("/:id/preferences", userHandler.GetPreferences)
			users.PUT("/:id/preferences", userHandler.UpdatePreferences)
			users.GET("/:id/interactions", userHandler.Interactions)
		}

		// Hotels
		hotels := api.Group("/hotels")
		{
			hotels.POST("", hotelHandler.Create)
			hotels.GET("", hotelHandler.List)
			hotels.GET("/:id", hotelHandler.Get)
			hotels.PUT("/:id", hotelHandler.Update)
			hotels.DELETE("/:id", hotelHandler.Delete)
		}

		// Bookings
		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingHandler.Create)
			bookings.GET("", bookingHandler.List)
			bookings.GET("/current/:user_id", bookingHandler.Current)
			bookings.GET("/past/:user_id", bookingHandler.Past)
			bookings.GET("/future/:user_id", bookingHandler.Future)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.PUT("/:id", bookingHandler.Update)
			bookings.DELETE("/:id", bookingHandler.Delete)
		}

		// Service requests
		requests := api.Group("/requests")
		{
			requests.POST("", requestHandler.Create)
			requests.GET("", requestHandler.List)
			requests.GET("/hotel/:hotel_id", requestHandler.ListByHotel)
			requests.GET("/user/:user_id", requestHandler.ListByUser)
			requests.GET("/:id", requestHandler.Get)
			requests.PUT("/:id", requestHandler.Update)
		}

		// RAG
		rag := api.Group("/rag")
		{
			rag.POST("/chat", ragHandler.Chat)
			rag.POST("/interactions", ragHandler.CreateInteraction)
			rag.GET("/interactions/user/:user_id", ragHandler.ListUserInteractions)
			rag.GET("/interactions/:id", ragHandler.GetInteraction)
		}

		recommendations := api.Group("/recommendations")
		{
			recommendations.POST("/top_user_recommendations", ragHandler.TopUserRecommendations)
			recommendations.POST("/analyze_user_interactions", ragHandler.AnalyzeUserInteractions)
		}

		api.GET("/analytics/interactions/export", ragHandler.ExportInteractions)
	}

	return r
}

func root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Chariott API"})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// readiness pings the database.
func readiness(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := a.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
