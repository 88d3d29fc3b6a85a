package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront/internal/app/service"
)

const adminProfileKey = "admin_profile"

// RequireAdmin lets the request through only when the remote API knows the
// visitor as an admin; everyone else is sent to the home page.
func RequireAdmin(adminService service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		s, ok := GetSession(c)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}

		profile, err := adminService.RequireAdmin(c.Request.Context(), s.API)
		if err != nil {
			log.Info("Admin page denied", map[string]interface{}{
				"session_id": s.ID,
			})
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}

		c.Set(adminProfileKey, profile)
		c.Next()
	}
}
