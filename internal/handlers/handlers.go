package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"potholeai/internal/config"
	"potholeai/internal/service"
)

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	analyse *service.AnalyseService
	cache   *redis.Client
}

// NewHandlerSet wires the HTTP handlers. cache may be nil when the
// prediction cache is disabled.
func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, analyse *service.AnalyseService, cache *redis.Client) HandlerSet {
	return HandlerSet{
		log:     log,
		cfg:     cfg,
		analyse: analyse,
		cache:   cache,
	}
}

func (h HandlerSet) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/healthz", h.Health)
	router.POST("/analyse", h.Analyse)
}
