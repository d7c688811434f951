package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/soart-backend/internal/observability"
	"github.com/yungbote/soart-backend/internal/platform/apierr"
	"github.com/yungbote/soart-backend/internal/platform/logger"
	"github.com/yungbote/soart-backend/internal/platform/openai"
)

const chatTemperature = 0.7

type ChatMessage = openai.Message

// TextStream yields response fragments. Next returns io.EOF at the end;
// any other error is an upstream failure and ends the stream.
type TextStream interface {
	Next() (string, error)
	Close() error
}

type ChatService interface {
	Open(ctx context.Context, messages []ChatMessage, model string) (TextStream, error)
}

type chatService struct {
	log       *logger.Logger
	resolver  ConfigResolver
	newClient openai.Factory
	metrics   *observability.Metrics
}

func NewChatService(log *logger.Logger, resolver ConfigResolver, factory openai.Factory, metrics *observability.Metrics) ChatService {
	if factory == nil {
		factory = openai.NewFactory(log)
	}
	return &chatService{
		log:       log.With("service", "ChatService"),
		resolver:  resolver,
		newClient: factory,
		metrics:   metrics,
	}
}

// SystemPrompt is the persona prepended to every conversation.
func SystemPrompt(language string) string {
	if strings.TrimSpace(language) == "" {
		language = DefaultAssistantLanguage
	}
	return fmt.Sprintf("You are Soart AI, a professional creative visual assistant. Always answer in %s.", language)
}

func (s *chatService) Open(ctx context.Context, messages []ChatMessage, model string) (TextStream, error) {
	if len(messages) == 0 {
		return nil, apierr.Validation("messages are required")
	}
	cfg, err := s.resolver.ProviderConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, apierr.Configuration("API key not configured in settings")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = cfg.DefaultChatModel
	}

	client, err := s.newClient(openai.Config{APIKey: cfg.APIKey, BaseURL: cfg.OpenAIBaseURL})
	if err != nil {
		return nil, apierr.Upstream(err)
	}

	full := make([]ChatMessage, 0, len(messages)+1)
	full = append(full, ChatMessage{Role: openai.RoleSystem, Content: SystemPrompt(cfg.AssistantLanguage)})
	full = append(full, messages...)

	s.log.Info("chat completion", "model", model, "base_url", cfg.OpenAIBaseURL, "messages", len(messages))
	spanCtx, span := observability.StartSpan(ctx, "chat.stream_open", attribute.String("model", model))
	start := time.Now()
	stream, err := client.StreamChat(spanCtx, openai.ChatRequest{
		Model:       model,
		Messages:    full,
		Temperature: chatTemperature,
	})
	span.End()
	if err != nil {
		s.metrics.ObserveProvider("openai", "chat_stream", "error", time.Since(start))
		return nil, apierr.Upstream(err)
	}
	s.metrics.ObserveProvider("openai", "chat_stream", "success", time.Since(start))
	return &upstreamStream{inner: stream}, nil
}

type upstreamStream struct {
	inner openai.Stream
	done  bool
}

func (s *upstreamStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for {
		delta, err := s.inner.Next()
		if err != nil {
			s.done = true
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", apierr.Upstream(err)
		}
		if delta != "" {
			return delta, nil
		}
	}
}

func (s *upstreamStream) Close() error {
	return s.inner.Close()
}
