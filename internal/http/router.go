package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/soart-backend/internal/http/handlers"
	httpMW "github.com/yungbote/soart-backend/internal/http/middleware"
	"github.com/yungbote/soart-backend/internal/observability"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	CORSOrigins    []string
	TracingEnabled bool
	ServiceName    string
	Metrics        *observability.Metrics

	HealthHandler   *httpH.HealthHandler
	CanvasHandler   *httpH.CanvasHandler
	SettingsHandler *httpH.SettingsHandler
	CatalogHandler  *httpH.CatalogHandler
	ChatHandler     *httpH.ChatHandler
	MagicHandler    *httpH.MagicHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		name := cfg.ServiceName
		if name == "" {
			name = "soart"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Canvas
		if cfg.CanvasHandler != nil {
			api.GET("/canvas/list", cfg.CanvasHandler.List)
			api.POST("/canvas/create", cfg.CanvasHandler.Create)
			api.POST("/canvas/:id/duplicate", cfg.CanvasHandler.Duplicate)
			api.GET("/canvas/:id", cfg.CanvasHandler.Get)
			api.POST("/canvas/:id/save", cfg.CanvasHandler.Save)
			api.POST("/canvas/:id/rename", cfg.CanvasHandler.Rename)
			api.DELETE("/canvas/:id/delete", cfg.CanvasHandler.Delete)
		}

		// Settings
		if cfg.SettingsHandler != nil {
			api.GET("/settings/all", cfg.SettingsHandler.All)
			api.POST("/settings/update", cfg.SettingsHandler.Update)
		}

		// Catalog
		if cfg.CatalogHandler != nil {
			api.GET("/list_models", cfg.CatalogHandler.ListModels)
			api.GET("/list_tools", cfg.CatalogHandler.ListTools)
		}

		// Chat
		if cfg.ChatHandler != nil {
			api.POST("/chat/completions", cfg.ChatHandler.Completions)
		}

		// Magic (image generation + artifacts)
		if cfg.MagicHandler != nil {
			api.POST("/magic/generate", cfg.MagicHandler.Generate)
			api.GET("/magic/file/:filename", cfg.MagicHandler.File)
		}
	}

	return r
}
