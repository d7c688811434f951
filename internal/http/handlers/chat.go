package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/soart-backend/internal/http/response"
	"github.com/yungbote/soart-backend/internal/platform/logger"
	"github.com/yungbote/soart-backend/internal/services"
)

type ChatHandler struct {
	log  *logger.Logger
	chat services.ChatService
}

func NewChatHandler(log *logger.Logger, chat services.ChatService) *ChatHandler {
	return &ChatHandler{
		log:  log.With("handler", "ChatHandler"),
		chat: chat,
	}
}

type chatCompletionRequest struct {
	Messages []services.ChatMessage `json:"messages"`
	Model    string                 `json:"model"`
}

// POST /api/chat/completions
//
// Errors raised before the first fragment are JSON; once streaming has
// started a failure just ends the body.
func (h *ChatHandler) Completions(c *gin.Context) {
	var req chatCompletionRequest
	if !bindJSON(c, &req) {
		return
	}
	stream, err := h.chat.Open(c.Request.Context(), req.Messages, req.Model)
	if err != nil {
		h.log.Warn("Chat completion rejected", "error", err)
		response.RespondErr(c, err)
		return
	}
	defer stream.Close()

	// Nothing is committed until the first fragment arrives, so an upstream
	// failure before it still gets a JSON error.
	first, err := stream.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		h.log.Error("Chat stream failed before first fragment", "error", err)
		response.RespondErr(c, err)
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	if err != nil {
		c.Writer.WriteHeaderNow()
		return
	}

	fragments := 0
	delta := first
	for {
		if _, err := io.WriteString(c.Writer, delta); err != nil {
			h.log.Warn("Chat client went away", "fragments", fragments, "error", err)
			return
		}
		c.Writer.Flush()
		fragments++

		delta, err = stream.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.log.Error("Chat stream aborted", "fragments", fragments, "error", err)
			}
			return
		}
	}
}
