package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/soart-backend/internal/platform/logger"
)

const (
	RoleSystem    = goopenai.ChatMessageRoleSystem
	RoleUser      = goopenai.ChatMessageRoleUser
	RoleAssistant = goopenai.ChatMessageRoleAssistant
)

// Config is the per-request connection data resolved from settings.
type Config struct {
	APIKey  string
	BaseURL string
	// Optional. Defaults to the library's http.Client.
	HTTPClient *http.Client
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
}

// Stream yields text deltas. Next returns io.EOF once the provider ends the
// stream.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Client is the chat-completion client used by the chat gateway.
type Client interface {
	StreamChat(ctx context.Context, req ChatRequest) (Stream, error)
}

// Factory builds a Client from a Config. Clients are cheap and are built per
// request so settings changes apply without a restart.
type Factory func(cfg Config) (Client, error)

type client struct {
	log *logger.Logger
	api *goopenai.Client
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing api key")
	}
	oc := goopenai.DefaultConfig(apiKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		oc.BaseURL = base
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	if log == nil {
		log = logger.Nop()
	}
	return &client{
		log: log.With("client", "OpenAIClient"),
		api: goopenai.NewClientWithConfig(oc),
	}, nil
}

// NewFactory returns a Factory bound to log.
func NewFactory(log *logger.Logger) Factory {
	return func(cfg Config) (Client, error) {
		return NewClient(log, cfg)
	}
}

func (c *client) StreamChat(ctx context.Context, req ChatRequest) (Stream, error) {
	msgs := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := strings.TrimSpace(m.Role)
		if role == "" {
			role = RoleUser
		}
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	stream, err := c.api.CreateChatCompletionStream(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
		Stream:      true,
	})
	if err != nil {
		c.log.Warn("chat stream open failed", "model", req.Model, "error", err)
		return nil, err
	}
	return &chatStream{stream: stream}, nil
}

type chatStream struct {
	stream *goopenai.ChatCompletionStream
}

// Next skips chunks that carry no text (role-only and finish chunks).
func (s *chatStream) Next() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}
