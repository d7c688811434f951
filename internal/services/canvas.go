package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/yungbote/soart-backend/internal/data/repos"
	types "github.com/yungbote/soart-backend/internal/domain"
	"github.com/yungbote/soart-backend/internal/platform/apierr"
	"github.com/yungbote/soart-backend/internal/platform/dbctx"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

const DefaultCanvasName = "Untitled"

// CanvasDocument is a canvas as returned to clients. Data is always a valid
// JSON value.
type CanvasDocument struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Thumbnail string          `json:"thumbnail"`
}

type CanvasService interface {
	List(ctx context.Context) ([]types.CanvasSummary, error)
	Create(ctx context.Context, id, name string) (*types.Canvas, error)
	Duplicate(ctx context.Context, sourceID, newID, newName string) (*types.Canvas, error)
	// Get returns nil, nil when the canvas does not exist.
	Get(ctx context.Context, id string) (*CanvasDocument, error)
	Save(ctx context.Context, id string, data json.RawMessage, thumbnail string) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

type canvasService struct {
	log    *logger.Logger
	canvas repos.CanvasRepo
}

func NewCanvasService(log *logger.Logger, canvasRepo repos.CanvasRepo) CanvasService {
	return &canvasService{
		log:    log.With("service", "CanvasService"),
		canvas: canvasRepo,
	}
}

func (s *canvasService) List(ctx context.Context) ([]types.CanvasSummary, error) {
	out, err := s.canvas.List(dbctx.New(ctx))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []types.CanvasSummary{}
	}
	return out, nil
}

func (s *canvasService) Create(ctx context.Context, id, name string) (*types.Canvas, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apierr.Validation("canvas_id is required")
	}
	if name == "" {
		name = DefaultCanvasName
	}
	return s.canvas.Create(dbctx.New(ctx), id, name)
}

func (s *canvasService) Duplicate(ctx context.Context, sourceID, newID, newName string) (*types.Canvas, error) {
	newID = strings.TrimSpace(newID)
	if newID == "" {
		return nil, apierr.Validation("new_id is required")
	}
	if newName == "" {
		newName = DefaultCanvasName
	}
	return s.canvas.Duplicate(dbctx.New(ctx), sourceID, newID, newName)
}

func (s *canvasService) Get(ctx context.Context, id string) (*CanvasDocument, error) {
	row, err := s.canvas.Get(dbctx.New(ctx), id)
	if err != nil || row == nil {
		return nil, err
	}
	data := json.RawMessage(row.Data)
	if !validJSON(data) {
		s.log.Warn("stored canvas data is not valid JSON; returning empty document", "canvas_id", id, "bytes", len(row.Data))
		data = json.RawMessage(types.EmptyCanvasData)
	}
	return &CanvasDocument{
		ID:        row.ID,
		Name:      row.Name,
		Data:      data,
		Thumbnail: row.Thumbnail,
	}, nil
}

func (s *canvasService) Save(ctx context.Context, id string, data json.RawMessage, thumbnail string) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = json.RawMessage(types.EmptyCanvasData)
	}
	if !json.Valid(data) {
		return apierr.Validation("data must be valid JSON")
	}
	return s.canvas.Save(dbctx.New(ctx), id, data, thumbnail)
}

func (s *canvasService) Rename(ctx context.Context, id, name string) error {
	return s.canvas.Rename(dbctx.New(ctx), id, name)
}

func (s *canvasService) Delete(ctx context.Context, id string) error {
	return s.canvas.Delete(dbctx.New(ctx), id)
}

func validJSON(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && json.Valid(b)
}
