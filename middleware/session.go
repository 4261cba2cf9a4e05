package middleware

import (
	"medibook/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionTokenKey = "sessionToken"

// SessionCookieMiddleware resolves the caller's opaque session token
// from the session cookie, minting and setting a new one when absent.
// The token is the only session identity the core ever sees.
func SessionCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieName := config.AppConfig.SessionCookieName

		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			token = uuid.NewString()
			maxAge := config.AppConfig.SessionTTLMinutes * 60
			c.SetCookie(cookieName, token, maxAge, "/", "", false, true)
		}

		c.Set(sessionTokenKey, token)
		c.Next()
	}
}
