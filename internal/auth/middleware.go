package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hrhelper/recruiter-service/internal/model"
)

// SessionCookie carries the access token for browser clients.
const SessionCookie = "hr_session"

const (
	ctxUserKey  = "auth.user"
	ctxTokenKey = "auth.token"
)

// TokenFromRequest returns the bearer token, falling back to the session
// cookie.
func TokenFromRequest(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Middleware resolves the caller's session and enforces Decide for every
// request.
func Middleware(id Identity, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c.Request)

		user, err := id.CurrentUser(c.Request.Context(), token)
		if err != nil && !errors.Is(err, ErrUnauthenticated) {
			log.Error("resolve session failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if user != nil {
			c.Set(ctxUserKey, user)
			c.Set(ctxTokenKey, token)
		}

		d := Decide(c.Request.URL.Path, user != nil)
		switch d.Action {
		case Redirect:
			c.Redirect(http.StatusSeeOther, d.Location)
			c.Abort()
		case Unauthorized:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		default:
			c.Next()
		}
	}
}

// UserFrom returns the signed-in user set by Middleware, or nil.
func UserFrom(c *gin.Context) *model.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// TokenFrom returns the validated token set by Middleware.
func TokenFrom(c *gin.Context) string {
	return c.GetString(ctxTokenKey)
}
