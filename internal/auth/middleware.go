package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CookieName is the browser cookie holding the signed session token.
const CookieName = "ums_session"

const sessionKey = "session_id"

// SessionCookie attaches a panel session id to every request. A missing,
// expired or tampered cookie starts a new session.
func SessionCookie(signingKey, issuer string, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(CookieName); err == nil {
			if claims, err := Parse(token, signingKey, issuer); err == nil {
				c.Set(sessionKey, claims.Subject)
				c.Next()
				return
			}
		}

		id := uuid.NewString()
		token, _, err := Issue(id, issuer, signingKey, ttl)
		if err != nil {
			log.Printf("session token issue failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, token, int(ttl.Seconds()), "/", "", secure, true)
		c.Set(sessionKey, id)
		c.Next()
	}
}

// SessionID returns the session id set by SessionCookie.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
