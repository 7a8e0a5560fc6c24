package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"instantwin-bot/internal/common/config"
	apperrors "instantwin-bot/internal/common/errors"
	"instantwin-bot/internal/common/middleware"
	commandmodels "instantwin-bot/internal/features/commands/models"
	commandservice "instantwin-bot/internal/features/commands/service"
	giveawayservice "instantwin-bot/internal/features/giveaway/service"
)

// NewServer builds the keep-alive HTTP surface: a root endpoint for uptime
// monitors plus health and readiness probes. In debug mode it also mounts a
// dispatch harness so commands and entry attempts can be driven without a
// chat platform attached.
func NewServer(cfg *config.Config, redisClient *redis.Client, router *commandservice.Router, giveaways *giveawayservice.GiveawayService) *http.Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log.Logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept"}
	engine.Use(cors.New(corsConfig))

	registerRoutes(engine, redisClient)
	if cfg.Debug {
		registerDebugRoutes(engine, router, giveaways)
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(engine *gin.Engine, redisClient *redis.Client) {
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Bot is alive!")
	})

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "instantwin-bot",
		})
	})

	engine.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "redis unavailable",
					"details": err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "instantwin-bot",
		})
	})
}

type commandRequest struct {
	Name   string            `json:"name" binding:"required"`
	Args   map[string]string `json:"args"`
	Caller struct {
		ID           string   `json:"id" binding:"required"`
		Roles        []string `json:"roles"`
		IsSuperAdmin bool     `json:"is_super_admin"`
	} `json:"caller" binding:"required"`
}

type entryRequest struct {
	SessionID   string `json:"session_id" binding:"required"`
	PrincipalID string `json:"principal_id" binding:"required"`
}

func registerDebugRoutes(engine *gin.Engine, router *commandservice.Router, giveaways *giveawayservice.GiveawayService) {
	debug := engine.Group("/debug")

	debug.POST("/commands", func(c *gin.Context) {
		var req commandRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperrors.NewInvalidArgumentError("body", err.Error()))
			return
		}

		result, err := router.Dispatch(c.Request.Context(), req.Name, req.Args, commandmodels.Caller{
			ID:           req.Caller.ID,
			Roles:        req.Caller.Roles,
			IsSuperAdmin: req.Caller.IsSuperAdmin,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
	})

	debug.POST("/entries", func(c *gin.Context) {
		var req entryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperrors.NewInvalidArgumentError("body", err.Error()))
			return
		}

		if err := giveaways.HandleEntry(c.Request.Context(), req.SessionID, req.PrincipalID); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}

func writeError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.ErrCodeInternal, "Command failed")
	}
	c.JSON(middleware.StatusCode(appErr), gin.H{"success": false, "error": appErr})
}
