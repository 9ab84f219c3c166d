package http

import (
	"net/http"

	"github.com/gdugdh24/match-matrix-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/match-matrix-backend/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	participantHandler *handler.ParticipantHandler
	matchHandler       *handler.MatchHandler
	adminHandler       *handler.AdminHandler
	accessLog          *middleware.AccessLogMiddleware
}

func NewRouter(
	participantHandler *handler.ParticipantHandler,
	matchHandler *handler.MatchHandler,
	adminHandler *handler.AdminHandler,
	accessLog *middleware.AccessLogMiddleware,
) *Router {
	return &Router{
		participantHandler: participantHandler,
		matchHandler:       matchHandler,
		adminHandler:       adminHandler,
		accessLog:          accessLog,
	}
}

func (r *Router) Setup() *gin.Engine {
	handler.UseJSONFieldNames()

	router := gin.New()
	router.Use(r.accessLog.Middleware(), gin.Recovery())

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	v1 := router.Group("/api/v1")
	{
		participants := v1.Group("/participants")
		{
			participants.POST("/verify", r.participantHandler.Verify)
			participants.POST("/register", r.participantHandler.Register)
			participants.POST("/register-duo", r.participantHandler.RegisterDuo)
		}

		matches := v1.Group("/matches")
		{
			matches.POST("/claim", r.matchHandler.ClaimMatch)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/participants", r.adminHandler.ListParticipants)
			admin.GET("/matches", r.adminHandler.ListMatches)
			admin.GET("/matches/export", r.adminHandler.ExportMatches)
			admin.POST("/generate-matches", r.adminHandler.GenerateMatches)
			admin.GET("/whitelist", r.adminHandler.ListWhitelist)
			admin.POST("/whitelist", r.adminHandler.AddToWhitelist)
		}
	}

	return router
}
