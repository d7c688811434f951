package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/yungbote/soart-backend/internal/data/repos/testutil"
	"github.com/yungbote/soart-backend/internal/platform/apierr"
	"github.com/yungbote/soart-backend/internal/platform/dbctx"
)

func TestCanvasServiceCreateValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewCanvasService(testutil.Logger(t), f.canvas)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "  ", "x"); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("empty id: expected validation error, got %v", err)
	}
	row, err := svc.Create(ctx, "c1", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if row.Name != DefaultCanvasName {
		t.Fatalf("default name: got=%q", row.Name)
	}
	if _, err := svc.Duplicate(ctx, "c1", "", "x"); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("empty new_id: expected validation error, got %v", err)
	}
}

func TestCanvasServiceGetDocument(t *testing.T) {
	f := newFixture(t)
	svc := NewCanvasService(testutil.Logger(t), f.canvas)
	ctx := context.Background()

	if doc, err := svc.Get(ctx, "missing"); err != nil || doc != nil {
		t.Fatalf("missing: doc=%+v err=%v", doc, err)
	}

	if _, err := svc.Create(ctx, "c1", "Demo"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	doc, err := svc.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	raw, _ := json.Marshal(doc)
	if string(raw) != `{"id":"c1","name":"Demo","data":{},"thumbnail":""}` {
		t.Fatalf("document: %s", raw)
	}

	payload := json.RawMessage(`{"elements":[1,2,3]}`)
	if err := svc.Save(ctx, "c1", payload, "thumb"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, _ = svc.Get(ctx, "c1")
	if string(doc.Data) != string(payload) || doc.Thumbnail != "thumb" {
		t.Fatalf("after save: %+v", doc)
	}
}

func TestCanvasServiceMalformedDataReadsAsEmpty(t *testing.T) {
	f := newFixture(t)
	svc := NewCanvasService(testutil.Logger(t), f.canvas)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "c1", "Demo"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Bypass service validation to simulate a corrupt row.
	if err := f.canvas.Save(dbctx.New(ctx), "c1", []byte(`{"broken":`), ""); err != nil {
		t.Fatalf("repo Save: %v", err)
	}
	doc, err := svc.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(doc.Data) != "{}" {
		t.Fatalf("malformed data should read as {}, got %s", doc.Data)
	}
}

func TestCanvasServiceSave(t *testing.T) {
	f := newFixture(t)
	svc := NewCanvasService(testutil.Logger(t), f.canvas)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "c1", "Demo"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Save(ctx, "c1", json.RawMessage(`not json`), ""); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("invalid JSON: expected validation error, got %v", err)
	}
	if err := svc.Save(ctx, "c1", nil, ""); err != nil {
		t.Fatalf("Save nil: %v", err)
	}
	doc, _ := svc.Get(ctx, "c1")
	if string(doc.Data) != "{}" {
		t.Fatalf("nil data should be stored as {}, got %s", doc.Data)
	}
	if err := svc.Save(ctx, "ghost", json.RawMessage(`{}`), ""); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("missing canvas: expected not found, got %v", err)
	}
}

func TestCanvasServiceListIsNeverNil(t *testing.T) {
	f := newFixture(t)
	svc := NewCanvasService(testutil.Logger(t), f.canvas)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list == nil {
		t.Fatal("List: expected empty slice, got nil")
	}
}
