package app

import (
	"fmt"

	"github.com/yungbote/soart-backend/internal/observability"
	"github.com/yungbote/soart-backend/internal/platform/gemini"
	"github.com/yungbote/soart-backend/internal/platform/localmedia"
	"github.com/yungbote/soart-backend/internal/platform/logger"
	"github.com/yungbote/soart-backend/internal/platform/openai"
	"github.com/yungbote/soart-backend/internal/services"
)

// Clients holds the provider client factories. Clients are built per
// request because keys and base URLs can change through settings.
type Clients struct {
	OpenAI openai.Factory
	Gemini gemini.Factory
}

type Services struct {
	Canvas   services.CanvasService
	Settings services.SettingsService
	Catalog  services.CatalogService
	Chat     services.ChatService
	Magic    services.MagicService
}

func wireClients(log *logger.Logger) Clients {
	return Clients{
		OpenAI: openai.NewFactory(log),
		Gemini: gemini.NewFactory(log),
	}
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	artifacts, err := localmedia.NewStore(log, cfg.FilesDir())
	if err != nil {
		return Services{}, fmt.Errorf("init artifact store: %w", err)
	}
	refLoader := localmedia.NewReferenceLoader(log, localmedia.ReferenceLoaderConfig{
		Timeout:       cfg.RefFetchTimeout,
		PublicBaseURL: cfg.PublicBaseURL,
		Store:         artifacts,
	})

	resolver := services.NewConfigResolver(log, repos.Settings)

	return Services{
		Canvas:   services.NewCanvasService(log, repos.Canvas),
		Settings: services.NewSettingsService(log, repos.Settings),
		Catalog:  services.NewCatalogService(resolver),
		Chat:     services.NewChatService(log, resolver, clients.OpenAI, metrics),
		Magic: services.NewMagicService(log, resolver, clients.Gemini, artifacts, refLoader, services.MagicServiceConfig{
			PublicBaseURL:  cfg.PublicBaseURL,
			MaxConcurrency: int64(cfg.MagicMaxConcurrency),
			Metrics:        metrics,
		}),
	}, nil
}
