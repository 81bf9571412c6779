package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/i18n"
	"github.com/sliramanoel/venda/internal/model"
)

// PermissionChecker decides whether an account may perform an action on a resource
type PermissionChecker interface {
	CheckPermission(user *model.AdminUser, resource, action string) (bool, error)
}

// RequirePermission must run after AuthMiddleware
func RequirePermission(checker PermissionChecker, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUserFromContext(c)
		if !exists {
			AbortWithError(c, http.StatusUnauthorized, i18n.ErrTokenMissing)
			return
		}

		allowed, err := checker.CheckPermission(user, resource, action)
		if err != nil {
			log.Printf("[AUTHZ] %v", err)
			AbortWithError(c, http.StatusInternalServerError, i18n.ErrInternal)
			return
		}

		if !allowed {
			AbortWithError(c, http.StatusForbidden, i18n.ErrForbidden)
			return
		}

		c.Next()
	}
}
