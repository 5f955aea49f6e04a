package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

type Decision int

const (
	Placeholder Decision = iota
	RedirectLogin
	Allow
)

func (d Decision) String() string {
	switch d {
	case Placeholder:
		return "placeholder"
	case RedirectLogin:
		return "redirect_login"
	default:
		return "allow"
	}
}

// Decide maps a session snapshot to what a protected page does. It is
// re-evaluated on every request.
func Decide(snap session.Snapshot) Decision {
	switch {
	case !snap.Settled():
		return Placeholder
	case !snap.SignedIn():
		return RedirectLogin
	default:
		return Allow
	}
}

// RequireSession guards protected routes. Must run after Sessions.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		switch Decide(sess.Snapshot()) {
		case Placeholder:
			c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"status": "loading"})
		case RedirectLogin:
			if c.Request.Method == http.MethodGet {
				c.Redirect(http.StatusFound, "/login")
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required", "redirect": "/login"})
		default:
			c.Next()
		}
	}
}

// RequireRole lets through only signed-in users holding one of roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := map[domain.Role]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		if _, ok := allowed[sess.Snapshot().Role()]; !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
