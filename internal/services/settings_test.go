package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/soart-backend/internal/data/repos/testutil"
	"github.com/yungbote/soart-backend/internal/platform/apierr"
)

func TestSettingsServiceUpdateStringifiesValues(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(testutil.Logger(t), f.settings)
	ctx := context.Background()

	err := svc.Update(ctx, map[string]any{
		"API_KEY": "sk-1",
		"MAX":     float64(3),
		"ENABLED": true,
		"EMPTY":   nil,
		"LIST":    []any{"a", "b"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	all, err := svc.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	want := map[string]string{
		"API_KEY": "sk-1",
		"MAX":     "3",
		"ENABLED": "true",
		"EMPTY":   "",
		"LIST":    `["a","b"]`,
	}
	for k, v := range want {
		if all[k] != v {
			t.Fatalf("%s: got=%q want=%q", k, all[k], v)
		}
	}

	if err := svc.Update(ctx, map[string]any{" ": "x"}); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("blank key: expected validation error, got %v", err)
	}
}
