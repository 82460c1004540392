package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fahad04code/Bakbak-bot/internal/platform/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
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
	})
}

// RespondAppError maps a service error onto a status and code through the
// apperr taxonomy, so handlers don't hand-pick statuses.
func RespondAppError(c *gin.Context, err error) {
	RespondError(c, apperr.StatusFor(err), apperr.CodeFor(err), err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
