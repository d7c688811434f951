package services

import (
	"context"
	"testing"
)

func TestResolvePrecedence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.resolver.Resolve(ctx, KeyOpenAIBaseURL, "http://default")
	if err != nil || got != "http://default" {
		t.Fatalf("default: got=%q err=%v", got, err)
	}

	f.env[KeyOpenAIBaseURL] = "http://env"
	got, _ = f.resolver.Resolve(ctx, KeyOpenAIBaseURL, "http://default")
	if got != "http://env" {
		t.Fatalf("env: got=%q", got)
	}

	f.set(t, KeyOpenAIBaseURL, "http://stored")
	got, _ = f.resolver.Resolve(ctx, KeyOpenAIBaseURL, "http://default")
	if got != "http://stored" {
		t.Fatalf("stored: got=%q", got)
	}

	// An empty stored value falls through to the environment.
	f.set(t, KeyOpenAIBaseURL, "")
	got, _ = f.resolver.Resolve(ctx, KeyOpenAIBaseURL, "http://default")
	if got != "http://env" {
		t.Fatalf("empty stored: got=%q", got)
	}
}

func TestProviderConfigDefaultsAndNoCaching(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cfg, err := f.resolver.ProviderConfig(ctx)
	if err != nil {
		t.Fatalf("ProviderConfig: %v", err)
	}
	want := ProviderConfig{
		OpenAIBaseURL:     DefaultOpenAIBaseURL,
		DefaultChatModel:  DefaultChatModel,
		GoogleBaseURL:     DefaultGoogleBaseURL,
		MagicModelName:    DefaultMagicModelName,
		ChatModels:        DefaultChatModels,
		AssistantLanguage: DefaultAssistantLanguage,
	}
	if cfg != want {
		t.Fatalf("defaults: got=%+v want=%+v", cfg, want)
	}

	f.set(t, KeyAPIKey, "sk-1")
	f.env[KeyDefaultChatModel] = "gpt-4o-mini"
	cfg, err = f.resolver.ProviderConfig(ctx)
	if err != nil {
		t.Fatalf("ProviderConfig: %v", err)
	}
	if cfg.APIKey != "sk-1" || cfg.DefaultChatModel != "gpt-4o-mini" {
		t.Fatalf("updated config not visible: %+v", cfg)
	}
}
