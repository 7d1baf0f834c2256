package http

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gdugdh24/nearby-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/nearby-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/nearby-backend/internal/usecase/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Router struct {
	eventHandler   *handler.EventHandler
	profileHandler *handler.ProfileHandler
	swipeHandler   *handler.SwipeHandler
	reportHandler  *handler.ReportHandler
	adminHandler   *handler.AdminHandler
	authMiddleware *middleware.AuthMiddleware
	allowedOrigins []string
	logger         *slog.Logger
}

func NewRouter(
	eventHandler *handler.EventHandler,
	profileHandler *handler.ProfileHandler,
	swipeHandler *handler.SwipeHandler,
	reportHandler *handler.ReportHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
	allowedOrigins []string,
	logger *slog.Logger,
) *Router {
	return &Router{
		eventHandler:   eventHandler,
		profileHandler: profileHandler,
		swipeHandler:   swipeHandler,
		reportHandler:  reportHandler,
		adminHandler:   adminHandler,
		authMiddleware: authMiddleware,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
	}
	if len(r.allowedOrigins) == 0 || slices.Contains(r.allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = r.allowedOrigins
	}
	return cfg
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(cors.New(r.corsConfig()))
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(r.logger))
	router.Use(gin.Recovery())

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Transport bridge; admin tokens are accepted too
		bridge := v1.Group("")
		bridge.Use(r.authMiddleware.RequireRole(auth.RoleTransport))
		{
			bridge.POST("/events", r.eventHandler.HandleEvent)

			profiles := bridge.Group("/profiles")
			{
				profiles.GET("/:identity", r.profileHandler.GetProfile)
				profiles.GET("/:identity/stats", r.profileHandler.GetStats)
			}

			bridge.GET("/feed/:identity/next", r.swipeHandler.GetNextCandidate)

			likes := bridge.Group("/likes")
			{
				likes.POST("", r.swipeHandler.SubmitLike)
				likes.GET("/:identity/received", r.swipeHandler.GetLikesReceived)
			}

			matches := bridge.Group("/matches")
			{
				matches.GET("/:identity", r.swipeHandler.GetMatches)
				matches.DELETE("/:identity/:match_id", r.swipeHandler.CloseMatch)
			}

			bridge.POST("/reports", r.reportHandler.CreateReport)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.RequireRole(auth.RoleAdmin))
		{
			admin.GET("/reports", r.adminHandler.ListReports)
			admin.POST("/reports/:id/resolve", r.adminHandler.ResolveReport)
			admin.GET("/profiles/search", r.adminHandler.Search)
			admin.POST("/profiles/:identity/ban", r.adminHandler.Ban)
			admin.DELETE("/profiles/:identity/ban", r.adminHandler.Unban)
			admin.POST("/profiles/:identity/premium", r.adminHandler.GrantPremium)
			admin.DELETE("/profiles/:identity/premium", r.adminHandler.RevokePremium)
			admin.GET("/stats", r.adminHandler.Stats)
			admin.POST("/broadcast", r.adminHandler.Broadcast)
		}
	}

	return router
}
