package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fahad04code/Bakbak-bot/internal/http/response"
	"github.com/fahad04code/Bakbak-bot/internal/platform/ctxutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
	"github.com/fahad04code/Bakbak-bot/internal/services"
)

type PromptHandler struct {
	log           *logger.Logger
	promptService services.PromptService
}

func NewPromptHandler(log *logger.Logger, promptService services.PromptService) *PromptHandler {
	return &PromptHandler{
		log:           log.With("handler", "PromptHandler"),
		promptService: promptService,
	}
}

// POST /api/prompts/:kind
func (ph *PromptHandler) Generate(c *gin.Context) {
	sd := ctxutil.GetSessionData(c.Request.Context())
	if sd == nil || sd.Phone == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	kind, err := services.NormalizePromptKind(c.Param("kind"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	prompt, err := ph.promptService.Generate(c.Request.Context(), sd.Phone, kind)
	if err != nil {
		ph.log.Error("Prompt generation failed", "kind", kind, "error", err)
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"kind":   kind,
		"prompt": prompt,
	})
}
