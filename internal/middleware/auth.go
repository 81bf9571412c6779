package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/auth"
	"github.com/sliramanoel/venda/internal/i18n"
	"github.com/sliramanoel/venda/internal/model"
)

const userKey = "user"

// Authenticator resolves a bearer token to an admin account
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.AdminUser, error)
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header
func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			AbortWithError(c, http.StatusUnauthorized, i18n.ErrTokenMissing)
			return
		}

		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				AbortWithError(c, http.StatusUnauthorized, i18n.ErrTokenInvalid)
				return
			}
			log.Printf("[AUTH] token check failed: %v", err)
			AbortWithError(c, http.StatusInternalServerError, i18n.ErrInternal)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserFromContext returns the account set by AuthMiddleware
func GetUserFromContext(c *gin.Context) (*model.AdminUser, bool) {
	user, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}

	adminUser, ok := user.(*model.AdminUser)
	return adminUser, ok
}
