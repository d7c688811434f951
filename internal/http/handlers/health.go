package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ServiceStatus  = "Soart Server is running"
	ServiceVersion = "1.0.0"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// Root is the JSON liveness probe the frontend polls.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": ServiceStatus, "version": ServiceVersion})
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
