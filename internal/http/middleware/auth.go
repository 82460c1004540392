package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fahad04code/Bakbak-bot/internal/platform/ctxutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
	"github.com/fahad04code/Bakbak-bot/internal/services"
)

type SessionMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewSessionMiddleware(log *logger.Logger, authService services.AuthService) *SessionMiddleware {
	middlewareLogger := log.With("middleware", "SessionMiddleware")
	return &SessionMiddleware{log: middlewareLogger, authService: authService}
}

// RequireSession rejects requests without a valid session token and attaches
// the decoded session to the request context for downstream handlers.
func (sm *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		ctx, err := sm.authService.SessionFromToken(c.Request.Context(), tokenString)
		if err != nil {
			sm.log.Debug("Session token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		c.Request = c.Request.WithContext(ctx)
		sd := ctxutil.GetSessionData(ctx)
		if sd == nil || sd.Phone == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "forbidden", "code": "forbidden"},
			})
			return
		}
		c.Next()
	}
}

// extractTokenFromAll checks the token query param first so media links can
// carry a session, then the Authorization header.
func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
