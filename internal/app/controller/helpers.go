package controller

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/storefront/internal/errors"
	"github.com/ikkim/storefront/internal/middleware"
	"github.com/ikkim/storefront/internal/session"
)

// wantsJSON reports whether the caller is a script rather than a form post.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// currentSession aborts with AUTH_SESSION_INVALID when the session
// middleware did not run.
func currentSession(c *gin.Context) (*session.Session, bool) {
	s, ok := middleware.GetSession(c)
	if !ok {
		apperrors.RespondWithError(c, http.StatusBadRequest, apperrors.AuthSessionInvalid, "Session missing")
		return nil, false
	}
	return s, true
}

// userMessage is what the visitor sees for err
func userMessage(err error, action string) string {
	return apperrors.ParseError(err, action).Message
}

// redirectBack sends form posts back to the page they came from. Only the
// path and query of the Referer are used.
func redirectBack(c *gin.Context, fallback string) {
	target := fallback
	if ref := c.GetHeader("Referer"); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Path != "" && strings.HasPrefix(u.Path, "/") && !strings.HasPrefix(u.Path, "//") {
			target = u.RequestURI()
		}
	}
	c.Redirect(http.StatusSeeOther, target)
}
