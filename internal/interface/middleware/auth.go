package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/platewise/recipebox/internal/application"
	"github.com/platewise/recipebox/pkg/response"
)

const (
	// CtxUserIDKey is where the auth middleware stores the acting user's id.
	CtxUserIDKey = "userID"
	// SessionCookieName carries the opaque session id in session mode.
	SessionCookieName = "sessionid"
	// tokenScheme is the Authorization scheme in token mode.
	tokenScheme = "Token "
)

// CurrentUserResolver resolves the acting user from a request. A deployment
// configures exactly one implementation; routes never carry both transports.
type CurrentUserResolver interface {
	Resolve(c *gin.Context) (userID string, err error)
}

// SessionResolver resolves the user from the sessionid cookie.
type SessionResolver struct {
	Store application.SessionStore
}

func (r *SessionResolver) Resolve(c *gin.Context) (string, error) {
	sid, err := c.Cookie(SessionCookieName)
	if err != nil || sid == "" {
		return "", application.ErrNoSession
	}
	return r.Store.Get(c.Request.Context(), sid)
}

// TokenResolver resolves the user from an "Authorization: Token <t>" header.
type TokenResolver struct {
	Store application.TokenStore
}

func (r *TokenResolver) Resolve(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, tokenScheme) {
		return "", application.ErrNoSession
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, tokenScheme))
	if token == "" {
		return "", application.ErrNoSession
	}
	return r.Store.Resolve(c.Request.Context(), token)
}

// Auth rejects unauthenticated requests with 401 and stores the resolved
// user id in the Gin context.
func Auth(resolver CurrentUserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := resolver.Resolve(c)
		if err != nil || uid == "" {
			response.AbortError(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}
