package services

import (
	"context"
	"encoding/base64"
	"io"
	"sync"
	"testing"

	"github.com/yungbote/soart-backend/internal/data/repos"
	"github.com/yungbote/soart-backend/internal/data/repos/testutil"
	"github.com/yungbote/soart-backend/internal/platform/dbctx"
	"github.com/yungbote/soart-backend/internal/platform/gemini"
	"github.com/yungbote/soart-backend/internal/platform/openai"
)

type testEnv map[string]string

func (e testEnv) lookup(key string) string { return e[key] }

type fixture struct {
	canvas   repos.CanvasRepo
	settings repos.SettingsRepo
	resolver ConfigResolver
	env      testEnv
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &fixture{
		canvas:   repos.NewCanvasRepo(db, log),
		settings: repos.NewSettingsRepo(db, log),
		env:      testEnv{},
	}
	f.resolver = NewConfigResolverWithEnv(log, f.settings, f.env.lookup)
	return f
}

func (f *fixture) set(t *testing.T, key, value string) {
	t.Helper()
	if err := f.settings.Set(dbctx.New(context.Background()), key, value); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}

// fakeChat records requests and replays scripted deltas.
type fakeChat struct {
	mu      sync.Mutex
	calls   int
	configs []openai.Config
	reqs    []openai.ChatRequest
	deltas  []string
	openErr error
	tailErr error
}

func (f *fakeChat) factory(cfg openai.Config) (openai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.configs = append(f.configs, cfg)
	return f, nil
}

func (f *fakeChat) StreamChat(ctx context.Context, req openai.ChatRequest) (openai.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeStream{deltas: append([]string(nil), f.deltas...), tailErr: f.tailErr}, nil
}

type fakeStream struct {
	deltas  []string
	tailErr error
	closed  bool
}

func (s *fakeStream) Next() (string, error) {
	if len(s.deltas) == 0 {
		if s.tailErr != nil {
			return "", s.tailErr
		}
		return "", io.EOF
	}
	d := s.deltas[0]
	s.deltas = s.deltas[1:]
	return d, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// fakeGemini returns a scripted image generation.
type fakeGemini struct {
	mu      sync.Mutex
	calls   int
	configs []gemini.Config
	reqs    []gemini.ImageRequest
	out     gemini.ImageGeneration
	err     error
}

func (f *fakeGemini) factory(ctx context.Context, cfg gemini.Config) (gemini.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.configs = append(f.configs, cfg)
	return f, nil
}

func (f *fakeGemini) GenerateImage(ctx context.Context, req gemini.ImageRequest) (gemini.ImageGeneration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.out, f.err
}

func encodeB64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
