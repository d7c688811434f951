package app

import (
	"github.com/yungbote/soart-backend/internal/http"
	httpH "github.com/yungbote/soart-backend/internal/http/handlers"
	"github.com/yungbote/soart-backend/internal/observability"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Canvas   *httpH.CanvasHandler
	Settings *httpH.SettingsHandler
	Catalog  *httpH.CatalogHandler
	Chat     *httpH.ChatHandler
	Magic    *httpH.MagicHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Canvas:   httpH.NewCanvasHandler(log, services.Canvas),
		Settings: httpH.NewSettingsHandler(log, services.Settings),
		Catalog:  httpH.NewCatalogHandler(services.Catalog),
		Chat:     httpH.NewChatHandler(log, services.Chat),
		Magic:    httpH.NewMagicHandler(log, services.Magic),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:             log,
		CORSOrigins:     cfg.CORSOrigins,
		TracingEnabled:  cfg.Otel.Enabled,
		ServiceName:     cfg.Otel.ServiceName,
		Metrics:         metrics,
		HealthHandler:   handlers.Health,
		CanvasHandler:   handlers.Canvas,
		SettingsHandler: handlers.Settings,
		CatalogHandler:  handlers.Catalog,
		ChatHandler:     handlers.Chat,
		MagicHandler:    handlers.Magic,
	})
}
