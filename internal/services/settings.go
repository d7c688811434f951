package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/soart-backend/internal/data/repos"
	"github.com/yungbote/soart-backend/internal/platform/apierr"
	"github.com/yungbote/soart-backend/internal/platform/dbctx"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

type SettingsService interface {
	All(ctx context.Context) (map[string]string, error)
	// Update upserts every entry; non-string values are stored in their JSON
	// text form and null is stored as "".
	Update(ctx context.Context, values map[string]any) error
}

type settingsService struct {
	log      *logger.Logger
	settings repos.SettingsRepo
}

func NewSettingsService(log *logger.Logger, settingsRepo repos.SettingsRepo) SettingsService {
	return &settingsService{
		log:      log.With("service", "SettingsService"),
		settings: settingsRepo,
	}
}

func (s *settingsService) All(ctx context.Context) (map[string]string, error) {
	return s.settings.All(dbctx.New(ctx))
}

func (s *settingsService) Update(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	flat := make(map[string]string, len(values))
	for k, v := range values {
		if strings.TrimSpace(k) == "" {
			return apierr.Validation("setting key must not be empty")
		}
		str, err := settingString(v)
		if err != nil {
			return apierr.Validation("setting %q: %v", k, err)
		}
		flat[k] = str
	}
	if err := s.settings.SetMany(dbctx.New(ctx), flat); err != nil {
		return err
	}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	s.log.Info("settings updated", "keys", keys)
	return nil
}

func settingString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", fmt.Errorf("cannot stringify value: %w", err)
		}
		return string(b), nil
	}
}
