package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aichat-backend/internal/app"
	"aichat-backend/internal/model"
	"aichat-backend/internal/pkg/logger"
	"aichat-backend/internal/transport/http/response"
)

const ContextUserKey = "user"

// TokenFromRequest reads the session cookie and falls back to a bearer header.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	const prefix = "Bearer "
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, prefix))
	}
	return ""
}

// Session resolves the request token to a user and attaches it to the context.
// A denylist or store outage is answered with 500 rather than letting the
// request through.
func Session(auth *app.AuthService, cookieName string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.ValidateSession(c.Request.Context(), TokenFromRequest(c, cookieName))
		if err != nil {
			if errors.Is(err, app.ErrUnauthorized) {
				response.AbortError(c, http.StatusUnauthorized, response.MsgUnauthorized)
				return
			}
			logger.FromContext(c.Request.Context(), log).Error("session check failed", zap.Error(err))
			response.AbortError(c, http.StatusInternalServerError, response.MsgServerError)
			return
		}

		c.Set(ContextUserKey, user)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}
