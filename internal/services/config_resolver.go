package services

import (
	"context"
	"os"
	"strings"

	"github.com/yungbote/soart-backend/internal/data/repos"
	"github.com/yungbote/soart-backend/internal/platform/ctxutil"
	"github.com/yungbote/soart-backend/internal/platform/dbctx"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

// Setting keys shared by the settings table and the process environment.
const (
	KeyAPIKey            = "API_KEY"
	KeyOpenAIBaseURL     = "OPENAI_BASE_URL"
	KeyDefaultChatModel  = "DEFAULT_CHAT_MODEL"
	KeyGoogleBaseURL     = "GOOGLE_BASE_URL"
	KeyMagicModelName    = "MAGIC_MODEL_NAME"
	KeyChatModels        = "CHAT_MODELS"
	KeyAssistantLanguage = "ASSISTANT_LANGUAGE"
)

const (
	DefaultOpenAIBaseURL     = "https://aihubmix.com/v1"
	DefaultChatModel         = "gpt-4o"
	DefaultGoogleBaseURL     = "https://aihubmix.com/gemini"
	DefaultMagicModelName    = "gemini-3-pro-image-preview"
	DefaultChatModels        = "gpt-4o"
	DefaultAssistantLanguage = "Chinese"
)

// ProviderConfig is the effective provider configuration for one request.
type ProviderConfig struct {
	APIKey            string
	OpenAIBaseURL     string
	DefaultChatModel  string
	GoogleBaseURL     string
	MagicModelName    string
	ChatModels        string
	AssistantLanguage string
}

// ConfigResolver merges persisted settings over the environment. Nothing is
// cached: every call reads the settings table.
type ConfigResolver interface {
	Resolve(ctx context.Context, key, def string) (string, error)
	ProviderConfig(ctx context.Context) (ProviderConfig, error)
}

type configResolver struct {
	log       *logger.Logger
	settings  repos.SettingsRepo
	lookupEnv func(string) string
}

func NewConfigResolver(log *logger.Logger, settings repos.SettingsRepo) ConfigResolver {
	return NewConfigResolverWithEnv(log, settings, os.Getenv)
}

func NewConfigResolverWithEnv(log *logger.Logger, settings repos.SettingsRepo, lookupEnv func(string) string) ConfigResolver {
	if lookupEnv == nil {
		lookupEnv = os.Getenv
	}
	return &configResolver{
		log:       log.With("service", "ConfigResolver"),
		settings:  settings,
		lookupEnv: lookupEnv,
	}
}

// Resolve returns the stored setting if non-empty, else the environment
// variable of the same name if non-empty, else def.
func (r *configResolver) Resolve(ctx context.Context, key, def string) (string, error) {
	ctx = ctxutil.Default(ctx)
	v, err := r.settings.Get(dbctx.New(ctx), key, "")
	if err != nil {
		return "", err
	}
	return r.pick(key, v, def), nil
}

func (r *configResolver) pick(key, stored, def string) string {
	if v := strings.TrimSpace(stored); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.lookupEnv(key)); v != "" {
		return v
	}
	return def
}

// ProviderConfig resolves every provider key from a single settings read.
func (r *configResolver) ProviderConfig(ctx context.Context) (ProviderConfig, error) {
	ctx = ctxutil.Default(ctx)
	stored, err := r.settings.All(dbctx.New(ctx))
	if err != nil {
		return ProviderConfig{}, err
	}
	return ProviderConfig{
		APIKey:            r.pick(KeyAPIKey, stored[KeyAPIKey], ""),
		OpenAIBaseURL:     r.pick(KeyOpenAIBaseURL, stored[KeyOpenAIBaseURL], DefaultOpenAIBaseURL),
		DefaultChatModel:  r.pick(KeyDefaultChatModel, stored[KeyDefaultChatModel], DefaultChatModel),
		GoogleBaseURL:     r.pick(KeyGoogleBaseURL, stored[KeyGoogleBaseURL], DefaultGoogleBaseURL),
		MagicModelName:    r.pick(KeyMagicModelName, stored[KeyMagicModelName], DefaultMagicModelName),
		ChatModels:        r.pick(KeyChatModels, stored[KeyChatModels], DefaultChatModels),
		AssistantLanguage: r.pick(KeyAssistantLanguage, stored[KeyAssistantLanguage], DefaultAssistantLanguage),
	}, nil
}
