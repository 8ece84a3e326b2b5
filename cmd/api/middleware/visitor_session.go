package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"car-passion/cmd/api/session"
	"car-passion/config"
)

const ctxKeySession = "visitor_session"

// VisitorSession attaches the visitor's session, creating it and setting the
// cookie when it is missing or expired.
func VisitorSession(store *session.Store, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cfg.CookieName)
		sess, created := store.GetOrCreate(id)
		if created {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(ctxKeySession, sess)
		c.Next()
	}
}

// SessionFrom returns the session attached by VisitorSession.
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(ctxKeySession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// SetSession attaches sess to c; used by tests and custom routers.
func SetSession(c *gin.Context, sess *session.Session) {
	c.Set(ctxKeySession, sess)
}
