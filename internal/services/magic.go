package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/yungbote/soart-backend/internal/observability"
	"github.com/yungbote/soart-backend/internal/platform/apierr"
	"github.com/yungbote/soart-backend/internal/platform/ctxutil"
	"github.com/yungbote/soart-backend/internal/platform/gemini"
	"github.com/yungbote/soart-backend/internal/platform/localmedia"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

const (
	magicAspectRatio = "1:1"
	magicImageSize   = "2K"
)

// FailureReason says why a generation produced no artifact. The empty
// reason means success.
type FailureReason string

const (
	ReasonUnavailable FailureReason = "unavailable"
	ReasonNoImage     FailureReason = "no_image"
	ReasonUpstream    FailureReason = "upstream_error"
	ReasonStorage     FailureReason = "storage_error"
	ReasonCanceled    FailureReason = "canceled"
)

type GenerateImageRequest struct {
	Prompt    string
	RefImages []string
	// RefImage is the legacy single-reference field.
	RefImage string
}

// ImageResult carries the artifact URL, or an empty URL and a Reason.
type ImageResult struct {
	URL      string
	Filename string
	Reason   FailureReason
}

func (r ImageResult) OK() bool { return r.URL != "" }

type MagicService interface {
	// Generate only returns an error for invalid input. Every other failure
	// is reported through ImageResult.Reason.
	Generate(ctx context.Context, req GenerateImageRequest) (ImageResult, error)
	ArtifactPath(filename string) (string, error)
}

type MagicServiceConfig struct {
	PublicBaseURL  string
	MaxConcurrency int64
	Metrics        *observability.Metrics
}

type magicService struct {
	log       *logger.Logger
	resolver  ConfigResolver
	newClient gemini.Factory
	store     localmedia.Store
	refs      *localmedia.ReferenceLoader
	slots     *semaphore.Weighted
	publicURL string
	metrics   *observability.Metrics
}

func NewMagicService(
	log *logger.Logger,
	resolver ConfigResolver,
	factory gemini.Factory,
	store localmedia.Store,
	refs *localmedia.ReferenceLoader,
	cfg MagicServiceConfig,
) MagicService {
	if factory == nil {
		factory = gemini.NewFactory(log)
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	return &magicService{
		log:       log.With("service", "MagicService"),
		resolver:  resolver,
		newClient: factory,
		store:     store,
		refs:      refs,
		slots:     semaphore.NewWeighted(cfg.MaxConcurrency),
		publicURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
		metrics:   cfg.Metrics,
	}
}

// NormalizeReferences wraps the legacy single reference into the list when
// the list is empty and drops blank entries.
func NormalizeReferences(refImages []string, legacy string) []string {
	out := make([]string, 0, len(refImages)+1)
	for _, r := range refImages {
		if strings.TrimSpace(r) != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 && strings.TrimSpace(legacy) != "" {
		out = append(out, legacy)
	}
	return out
}

// HasReferences reports whether the request carries any reference entry.
// Entries are not inspected; unusable ones are skipped during generation.
func HasReferences(refImages []string, legacy string) bool {
	return len(refImages) > 0 || legacy != ""
}

func (s *magicService) Generate(ctx context.Context, req GenerateImageRequest) (ImageResult, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(req.Prompt) == "" && !HasReferences(req.RefImages, req.RefImage) {
		return ImageResult{}, apierr.Validation("prompt or reference image is required")
	}
	res := s.generate(ctx, req.Prompt, NormalizeReferences(req.RefImages, req.RefImage))
	s.metrics.IncGeneration(string(res.Reason))
	return res, nil
}

func (s *magicService) generate(ctx context.Context, prompt string, refs []string) ImageResult {
	cfg, err := s.resolver.ProviderConfig(ctx)
	if err != nil {
		s.log.Error("resolve provider config failed", "error", err)
		return ImageResult{Reason: ReasonUnavailable}
	}
	if cfg.APIKey == "" {
		s.log.Warn("image generation unavailable: no API key configured")
		return ImageResult{Reason: ReasonUnavailable}
	}

	start := time.Now()
	images := s.loadReferences(ctx, refs)
	s.log.Info("image generation", "model", cfg.MagicModelName, "prompt", prompt, "refs", len(refs), "decoded_refs", len(images))

	gen, reason := s.callProvider(ctx, cfg, gemini.ImageRequest{
		Model:       cfg.MagicModelName,
		Prompt:      prompt,
		Images:      images,
		AspectRatio: magicAspectRatio,
		ImageSize:   magicImageSize,
	})
	if reason != "" {
		return ImageResult{Reason: reason}
	}

	pngBytes, err := localmedia.ToPNG(gen.Bytes)
	if err != nil {
		s.log.Error("generated image could not be decoded", "mime", gen.MimeType, "error", err)
		return ImageResult{Reason: ReasonUpstream}
	}
	name, err := s.store.Write(ctx, "png", pngBytes)
	if err != nil {
		s.log.Error("write artifact failed", "error", err)
		return ImageResult{Reason: ReasonStorage}
	}

	url := s.publicURL + localmedia.ArtifactRoute + name
	s.log.Info("image generated", "filename", name, "bytes", len(pngBytes), "model_text", gen.Text, "duration_ms", time.Since(start).Milliseconds())
	return ImageResult{URL: url, Filename: name}
}

func (s *magicService) loadReferences(ctx context.Context, refs []string) []gemini.ImageInput {
	if len(refs) == 0 || s.refs == nil {
		return nil
	}
	decoded := s.refs.LoadAll(ctx, refs)
	out := make([]gemini.ImageInput, 0, len(decoded))
	used := make([]int, 0, len(decoded))
	for _, r := range decoded {
		out = append(out, gemini.ImageInput{Bytes: r.Bytes, MimeType: r.MimeType})
		used = append(used, r.Index)
	}
	if len(used) < len(refs) {
		s.log.Warn("some reference images were skipped", "requested", len(refs), "used_indexes", used)
	}
	return out
}

type generation struct {
	img gemini.ImageGeneration
	err error
}

// callProvider runs the blocking provider call on its own goroutine while
// holding one of the generation slots.
func (s *magicService) callProvider(ctx context.Context, cfg ProviderConfig, req gemini.ImageRequest) (gemini.ImageGeneration, FailureReason) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		s.log.Warn("image generation canceled while waiting for a slot", "error", err)
		return gemini.ImageGeneration{}, ReasonCanceled
	}

	done := make(chan generation, 1)
	go func() {
		defer s.slots.Release(1)
		spanCtx, span := observability.StartSpan(ctx, "magic.generate_image", attribute.String("model", req.Model))
		defer span.End()
		start := time.Now()
		client, err := s.newClient(spanCtx, gemini.Config{APIKey: cfg.APIKey, BaseURL: cfg.GoogleBaseURL})
		if err != nil {
			done <- generation{err: err}
			return
		}
		img, err := client.GenerateImage(spanCtx, req)
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
		}
		s.metrics.ObserveProvider("gemini", "generate_image", status, time.Since(start))
		done <- generation{img: img, err: err}
	}()

	select {
	case <-ctx.Done():
		s.log.Warn("image generation canceled", "error", ctx.Err())
		return gemini.ImageGeneration{}, ReasonCanceled
	case res := <-done:
		switch {
		case errors.Is(res.err, gemini.ErrNoImage):
			s.log.Warn("provider returned no image", "model", req.Model, "model_text", res.img.Text)
			return gemini.ImageGeneration{}, ReasonNoImage
		case res.err != nil:
			s.log.Error("image generation failed", "model", req.Model, "error", res.err)
			return gemini.ImageGeneration{}, ReasonUpstream
		}
		return res.img, ""
	}
}

func (s *magicService) ArtifactPath(filename string) (string, error) {
	p, err := s.store.Path(filename)
	if err != nil {
		if errors.Is(err, localmedia.ErrNotFound) || errors.Is(err, localmedia.ErrInvalidFilename) {
			return "", apierr.NotFound("file %q", filename)
		}
		return "", err
	}
	return p, nil
}
