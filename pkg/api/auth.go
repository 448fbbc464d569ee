package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// userEmailHeader is the identity header this service trusts, set by
// an upstream oauth2-proxy the way the teacher's own deployment
// terminates auth before traffic reaches the app. There is no local
// login flow: authentication is explicitly out of scope (SPEC_FULL.md
// §1), but every route still needs a stable user identity to
// scope the Credential Store, so the header is required.
const userEmailHeader = "X-Forwarded-Email"

// requireUserEmail rejects requests missing the trusted identity
// header, and stashes the value in the gin context for handlers.
func requireUserEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader(userEmailHeader)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing " + userEmailHeader + " header"})
			return
		}
		c.Set("userEmail", email)
		c.Next()
	}
}

func userEmail(c *gin.Context) string {
	v, _ := c.Get("userEmail")
	email, _ := v.(string)
	return email
}
