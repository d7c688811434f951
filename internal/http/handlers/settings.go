package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/soart-backend/internal/http/response"
	"github.com/yungbote/soart-backend/internal/platform/logger"
	"github.com/yungbote/soart-backend/internal/services"
)

type SettingsHandler struct {
	log      *logger.Logger
	settings services.SettingsService
}

func NewSettingsHandler(log *logger.Logger, settings services.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		log:      log.With("handler", "SettingsHandler"),
		settings: settings,
	}
}

// GET /api/settings/all
func (h *SettingsHandler) All(c *gin.Context) {
	all, err := h.settings.All(c.Request.Context())
	if err != nil {
		h.log.Error("Load settings failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, all)
}

// POST /api/settings/update
func (h *SettingsHandler) Update(c *gin.Context) {
	var body map[string]any
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.settings.Update(c.Request.Context(), body); err != nil {
		h.log.Warn("Update settings failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, response.Status{Status: "success"})
}
