package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFToken exposes the request's CSRF token in the X-CSRF-Token response
// header when csrf.Protect wraps the router.
func CSRFToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := csrf.Token(c.Request); tok != "" {
			c.Header("X-CSRF-Token", tok)
		}
		c.Next()
	}
}
