package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/soart-backend/internal/http/response"
	"github.com/yungbote/soart-backend/internal/platform/apierr"
	"github.com/yungbote/soart-backend/internal/platform/logger"
	"github.com/yungbote/soart-backend/internal/services"
)

type MagicHandler struct {
	log   *logger.Logger
	magic services.MagicService
}

func NewMagicHandler(log *logger.Logger, magic services.MagicService) *MagicHandler {
	return &MagicHandler{
		log:   log.With("handler", "MagicHandler"),
		magic: magic,
	}
}

type magicGenerateRequest struct {
	Prompt    string   `json:"prompt"`
	RefImages []string `json:"ref_images"`
	RefImage  string   `json:"ref_image"`
}

// POST /api/magic/generate
func (h *MagicHandler) Generate(c *gin.Context) {
	var req magicGenerateRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.magic.Generate(c.Request.Context(), services.GenerateImageRequest{
		Prompt:    req.Prompt,
		RefImages: req.RefImages,
		RefImage:  req.RefImage,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if !res.OK() {
		response.RespondError(c, http.StatusInternalServerError, string(res.Reason), errors.New("Generation failed"))
		return
	}
	response.RespondOK(c, gin.H{"url": res.URL})
}

// GET /api/magic/file/:filename
func (h *MagicHandler) File(c *gin.Context) {
	path, err := h.magic.ArtifactPath(c.Param("filename"))
	if err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		h.log.Error("Artifact lookup failed", "filename", c.Param("filename"), "error", err)
		response.RespondErr(c, err)
		return
	}
	c.File(path)
}
