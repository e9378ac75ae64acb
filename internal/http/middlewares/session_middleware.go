package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/notecove/notecove/internal/auth"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	VerifySessionToken(token string) (*auth.Claims, error)
}

type SessionReader interface {
	Get(ctx context.Context, sid string) (string, bool, error)
}

type SessionMiddleware struct {
	tokens   TokenVerifier
	sessions SessionReader
	cookie   string
}

func NewSessionMiddleware(tokens TokenVerifier, sessions SessionReader, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{
		tokens:   tokens,
		sessions: sessions,
		cookie:   cookieName,
	}
}

// RequireSession resolves the principal from the session cookie. The token
// signature alone is not enough: the sid must still exist server-side, so a
// logged-out session is rejected even before the token expires.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(m.cookie)

		if err != nil || raw == "" {
			abortUnauthorized(c, "Missing session cookie")
			return
		}

		claims, err := m.tokens.VerifySessionToken(raw)

		if err != nil {
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		cctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		userID, ok, err := m.sessions.Get(cctx, claims.SID)

		if err != nil {
			abortUnauthorized(c, "Could not verify session")
			return
		}

		if !ok || userID != claims.UserID {
			abortUnauthorized(c, "Session has been revoked")
			return
		}

		SetPrincipal(c, claims.UserID, claims.Username, claims.SID)

		c.Next()
	}
}

// SetPrincipal stashes the resolved identity on the request context. Exposed
// so handler tests can fake an authenticated request without a real cookie.
func SetPrincipal(c *gin.Context, userID, username, sid string) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxUsernameKey, username)
	c.Set(ctxSIDKey, sid)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func UsernameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUsernameKey)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

func SIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxSIDKey)
	if !ok {
		return "", false
	}
	sid, ok := v.(string)
	return sid, ok
}
