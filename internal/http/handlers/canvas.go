package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/soart-backend/internal/http/response"
	"github.com/yungbote/soart-backend/internal/platform/apierr"
	"github.com/yungbote/soart-backend/internal/platform/logger"
	"github.com/yungbote/soart-backend/internal/services"
)

type CanvasHandler struct {
	log    *logger.Logger
	canvas services.CanvasService
}

func NewCanvasHandler(log *logger.Logger, canvas services.CanvasService) *CanvasHandler {
	return &CanvasHandler{
		log:    log.With("handler", "CanvasHandler"),
		canvas: canvas,
	}
}

type createCanvasRequest struct {
	CanvasID string  `json:"canvas_id"`
	Name     *string `json:"name"`
}

type duplicateCanvasRequest struct {
	NewID   string `json:"new_id"`
	NewName string `json:"new_name"`
}

type saveCanvasRequest struct {
	Data      json.RawMessage `json:"data"`
	Thumbnail string          `json:"thumbnail"`
}

type renameCanvasRequest struct {
	Name *string `json:"name"`
}

// GET /api/canvas/list
func (h *CanvasHandler) List(c *gin.Context) {
	list, err := h.canvas.List(c.Request.Context())
	if err != nil {
		h.log.Error("List canvases failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, list)
}

// POST /api/canvas/create
func (h *CanvasHandler) Create(c *gin.Context) {
	var req createCanvasRequest
	if !bindJSON(c, &req) {
		return
	}
	name := services.DefaultCanvasName
	if req.Name != nil {
		name = *req.Name
	}
	row, err := h.canvas.Create(c.Request.Context(), req.CanvasID, name)
	if err != nil {
		h.log.Warn("Create canvas failed", "canvas_id", req.CanvasID, "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"id": row.ID, "name": row.Name})
}

// POST /api/canvas/:id/duplicate
func (h *CanvasHandler) Duplicate(c *gin.Context) {
	var req duplicateCanvasRequest
	if !bindJSON(c, &req) {
		return
	}
	row, err := h.canvas.Duplicate(c.Request.Context(), c.Param("id"), req.NewID, req.NewName)
	if err != nil {
		h.log.Warn("Duplicate canvas failed", "source_id", c.Param("id"), "new_id", req.NewID, "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, response.Status{Status: "duplicated", ID: row.ID})
}

// GET /api/canvas/:id
func (h *CanvasHandler) Get(c *gin.Context) {
	doc, err := h.canvas.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Get canvas failed", "canvas_id", c.Param("id"), "error", err)
		response.RespondErr(c, err)
		return
	}
	if doc == nil {
		response.RespondOK(c, gin.H{"error": "not_found"})
		return
	}
	response.RespondOK(c, doc)
}

// POST /api/canvas/:id/save
func (h *CanvasHandler) Save(c *gin.Context) {
	var req saveCanvasRequest
	if !bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	if err := h.canvas.Save(c.Request.Context(), id, req.Data, req.Thumbnail); err != nil {
		h.log.Warn("Save canvas failed", "canvas_id", id, "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, response.Status{Status: "saved", ID: id})
}

// POST /api/canvas/:id/rename
func (h *CanvasHandler) Rename(c *gin.Context) {
	var req renameCanvasRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == nil {
		response.RespondErr(c, apierr.Validation("name is required"))
		return
	}
	if err := h.canvas.Rename(c.Request.Context(), c.Param("id"), *req.Name); err != nil {
		h.log.Warn("Rename canvas failed", "canvas_id", c.Param("id"), "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, response.Status{Status: "renamed"})
}

// DELETE /api/canvas/:id/delete
func (h *CanvasHandler) Delete(c *gin.Context) {
	if err := h.canvas.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error("Delete canvas failed", "canvas_id", c.Param("id"), "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, response.Status{Status: "deleted"})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}
