package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront/internal/errors"
	"github.com/ikkim/storefront/internal/session"
	"github.com/ikkim/storefront/pkg/util"
)

// Context keys for session information
const (
	SessionIDKey = "session_id"
	sessionKey   = "session"
)

// SessionSource is what the middleware needs from the session manager.
type SessionSource interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

type SessionMiddleware struct {
	sessions   SessionSource
	secret     string
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewSessionMiddleware(sessions SessionSource, secret, cookieName string, ttl time.Duration, secure bool) *SessionMiddleware {
	return &SessionMiddleware{
		sessions:   sessions,
		secret:     secret,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Attach loads the visitor's session, starting a new one when the cookie is
// missing, expired or forged.
func (m *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		id := ""
		if raw, err := c.Cookie(m.cookieName); err == nil {
			claims, err := util.ValidateSessionToken(raw, m.secret)
			if err != nil {
				log.Debug("Discarding session cookie", map[string]interface{}{
					"error": err.Error(),
				})
			} else {
				id = claims.SessionID
			}
		}

		if id == "" {
			id = session.NewID()
			if err := m.issueCookie(c, id); err != nil {
				log.Error("Failed to issue session cookie", err)
				errors.InternalError(c, "")
				c.Abort()
				return
			}
			log.Debug("New session started", map[string]interface{}{
				"session_id": id,
			})
		}

		s, err := m.sessions.Get(c.Request.Context(), id)
		if err != nil {
			log.Warn("Failed to load session", map[string]interface{}{
				"session_id": id,
				"error":      err.Error(),
			})
			errors.ParseAndRespond(c, err, "load session")
			c.Abort()
			return
		}

		c.Set(SessionIDKey, s.ID)
		c.Set(sessionKey, s)
		c.Next()
	}
}

func (m *SessionMiddleware) issueCookie(c *gin.Context, id string) error {
	token, err := util.GenerateSessionToken(id, m.secret, m.ttl)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
	return nil
}

// GetSession returns the session attached by SessionMiddleware
func GetSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}
