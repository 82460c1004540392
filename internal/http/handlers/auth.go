package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fahad04code/Bakbak-bot/internal/http/response"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
	"github.com/fahad04code/Bakbak-bot/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: authService,
	}
}

// POST /api/register
//
// Registration doubles as login: posting an existing phone replaces the
// stored profile and hands back a fresh session token.
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, token, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	expiresIn := int(ah.authService.SessionTTL().Seconds())
	response.RespondOK(c, gin.H{
		"token":      token,
		"expires_in": expiresIn,
		"user":       user,
	})
}
