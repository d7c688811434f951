package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/soart-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope is the JSON body of every error response. Detail repeats
// the message for clients that read a flat "detail" string.
type ErrorEnvelope struct {
	Error  APIError `json:"error"`
	Detail string   `json:"detail"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
		Detail: msg,
	})
}

// RespondErr maps err through apierr.StatusOf.
func RespondErr(c *gin.Context, err error) {
	status, code := apierr.StatusOf(err)
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Status is the {"status": ...} acknowledgement body.
type Status struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}
