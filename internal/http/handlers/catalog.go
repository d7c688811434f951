package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/soart-backend/internal/http/response"
	"github.com/yungbote/soart-backend/internal/services"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListModels(c *gin.Context) {
	models, err := h.catalog.ListModels(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "success", "data": models})
}

func (h *CatalogHandler) ListTools(c *gin.Context) {
	tools, err := h.catalog.ListTools(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "success", "data": tools})
}
