package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/answjddnjs04/errand-app/internal/repositories"
)

// UserIDKey is the gin context key holding the authenticated user's id.
const UserIDKey = "userID"

// RequireAuth resolves the session cookie to a user id and rejects requests
// without a valid, unexpired session. The session is the only source of the
// acting user id; request bodies are never trusted for it.
func RequireAuth(sessions repositories.SessionRepository, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		sess, err := sessions.GetSession(c.Request.Context(), sid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		c.Set(UserIDKey, sess.UserID)
		c.Next()
	}
}

// OptionalAuth resolves the session if present but never rejects. Handlers
// behind it serve anonymous and signed-in callers alike.
func OptionalAuth(sessions repositories.SessionRepository, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err == nil && sid != "" {
			if sess, err := sessions.GetSession(c.Request.Context(), sid); err == nil {
				c.Set(UserIDKey, sess.UserID)
			}
		}
		c.Next()
	}
}
