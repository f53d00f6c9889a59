package middleware

import (
	"net/http"

	"beacon-chat/internal/domain/account"
	"beacon-chat/internal/services"
	"beacon-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// RequirePermission gates a route on an admin permission. The token's kind
// claim is a fast reject; the role is re-read from the database so revoking
// a role takes effect without waiting for token expiry.
func RequirePermission(accounts *services.AccountService, perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := services.AccountIDFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		kind, _ := services.AccountKindFromContext(c.Request.Context())
		if kind != account.KindAdmin {
			c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("admin access required", "FORBIDDEN"))
			c.Abort()
			return
		}

		a, err := accounts.GetByID(c.Request.Context(), accountID)
		if err != nil {
			c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("admin access required", "FORBIDDEN"))
			c.Abort()
			return
		}

		if !a.HasPermission(perm) {
			c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("insufficient permissions", "FORBIDDEN"))
			c.Abort()
			return
		}

		c.Next()
	}
}
