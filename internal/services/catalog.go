package services

import (
	"context"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderJaaz   = "jaaz"

	ModelTypeText  = "text"
	ModelTypeImage = "image"

	ImageToolName = "generate_image_by_gpt_image_1_jaaz"
)

// ModelDescriptor is one catalog entry.
type ModelDescriptor struct {
	Provider string
	Name     string
	Type     string
	IsCustom bool
}

type ModelInfo struct {
	Type     string `json:"type"`
	IsCustom bool   `json:"is_custom"`
}

type ProviderCatalog struct {
	Models   map[string]ModelInfo `json:"models"`
	IsCustom bool                 `json:"is_custom"`
}

// BuildModelCatalog turns a comma separated model list into ordered
// descriptors: every text model under the openai provider, then the image
// tool. Blank and repeated entries are dropped.
func BuildModelCatalog(csv string) []ModelDescriptor {
	out := make([]ModelDescriptor, 0, 4)
	seen := map[string]bool{}
	for _, raw := range strings.Split(csv, ",") {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, ModelDescriptor{Provider: ProviderOpenAI, Name: name, Type: ModelTypeText, IsCustom: true})
	}
	out = append(out, ModelDescriptor{Provider: ProviderJaaz, Name: ImageToolName, Type: ModelTypeImage, IsCustom: true})
	return out
}

// RenderCatalog groups descriptors by provider in the shape the frontend
// reads.
func RenderCatalog(models []ModelDescriptor) map[string]ProviderCatalog {
	out := map[string]ProviderCatalog{}
	for _, m := range models {
		pc, ok := out[m.Provider]
		if !ok {
			pc = ProviderCatalog{Models: map[string]ModelInfo{}, IsCustom: true}
		}
		pc.Models[m.Name] = ModelInfo{Type: m.Type, IsCustom: m.IsCustom}
		out[m.Provider] = pc
	}
	return out
}

type CatalogService interface {
	ListModels(ctx context.Context) (map[string]ProviderCatalog, error)
	ListTools(ctx context.Context) (map[string]any, error)
}

type catalogService struct {
	resolver ConfigResolver
}

func NewCatalogService(resolver ConfigResolver) CatalogService {
	return &catalogService{resolver: resolver}
}

func (s *catalogService) ListModels(ctx context.Context) (map[string]ProviderCatalog, error) {
	csv, err := s.resolver.Resolve(ctx, KeyChatModels, DefaultChatModels)
	if err != nil {
		return nil, err
	}
	return RenderCatalog(BuildModelCatalog(csv)), nil
}

func (s *catalogService) ListTools(ctx context.Context) (map[string]any, error) {
	return map[string]any{}, nil
}
