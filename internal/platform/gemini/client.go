package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/soart-backend/internal/platform/logger"
)

// Config is the per-request connection data resolved from settings.
type Config struct {
	APIKey  string
	BaseURL string
	// Optional.
	HTTPClient *http.Client
}

// ImageInput is a decoded reference image.
type ImageInput struct {
	Bytes    []byte
	MimeType string
}

type ImageRequest struct {
	Model       string
	Prompt      string
	Images      []ImageInput
	AspectRatio string
	ImageSize   string
}

// ImageGeneration is the first image part of a response. Text holds any text
// parts the model returned before it, and is also set with ErrNoImage.
type ImageGeneration struct {
	Bytes    []byte
	MimeType string
	Text     string
}

type Client interface {
	// GenerateImage returns ErrNoImage when the response has no inline image;
	// the returned ImageGeneration then carries only the text parts.
	GenerateImage(ctx context.Context, req ImageRequest) (ImageGeneration, error)
}

type Factory func(ctx context.Context, cfg Config) (Client, error)

var ErrNoImage = errors.New("response contained no image")

type client struct {
	log *logger.Logger
	api *genai.Client
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing api key")
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(base, "/") + "/"}
	}
	api, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &client{log: log.With("client", "GeminiClient"), api: api}, nil
}

func NewFactory(log *logger.Logger) Factory {
	return func(ctx context.Context, cfg Config) (Client, error) {
		return NewClient(ctx, log, cfg)
	}
}

func (c *client) GenerateImage(ctx context.Context, req ImageRequest) (ImageGeneration, error) {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	if strings.TrimSpace(req.Prompt) != "" {
		parts = append(parts, genai.NewPartFromText(req.Prompt))
	}
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Bytes, img.MimeType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if req.AspectRatio != "" || req.ImageSize != "" {
		config.ImageConfig = &genai.ImageConfig{
			AspectRatio: req.AspectRatio,
			ImageSize:   req.ImageSize,
		}
	}

	resp, err := c.api.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return ImageGeneration{}, err
	}
	return firstImage(resp)
}

func firstImage(resp *genai.GenerateContentResponse) (ImageGeneration, error) {
	if resp == nil {
		return ImageGeneration{}, ErrNoImage
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			if part.Text != "" {
				text.WriteString(part.Text)
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return ImageGeneration{
					Bytes:    part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
					Text:     text.String(),
				}, nil
			}
		}
	}
	return ImageGeneration{Text: text.String()}, ErrNoImage
}
