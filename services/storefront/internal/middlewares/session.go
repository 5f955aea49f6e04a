package middlewares

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

const sessionKey = "session"

type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge int // seconds
}

// Sessions resolves the browser's session from its cookie, issuing a new id
// when the cookie is missing or not one of ours, and initializes it once.
func Sessions(reg *session.Registry, cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.Name)
		if err != nil || !validID(sid) {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Name, sid, cfg.MaxAge, "/", "", cfg.Secure, true)
		}
		sess := reg.Get(sid)
		if err := sess.EnsureInit(c.Request.Context()); err != nil {
			log.Printf("[storefront] session %s init: %v", sid, err)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session stored by Sessions.
func SessionFrom(c *gin.Context) *session.Session {
	v, _ := c.Get(sessionKey)
	s, _ := v.(*session.Session)
	return s
}

func validID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
