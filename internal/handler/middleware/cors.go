package middleware

import (
	"log/slog"

	"roomdesk/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORSMiddleware builds the CORS policy for the registration frontend
// from configuration. cors.New panics on an empty origin list, so the
// config defaults always carry at least one origin.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	slog.Info("cors policy loaded", "allow_origins", cfg.AllowOrigins)
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
