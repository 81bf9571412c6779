package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/i18n"
	"github.com/sliramanoel/venda/internal/middleware"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/service"
)

// AuthHandler serves admin login and account introspection
type AuthHandler struct {
	authService  *service.AuthenticationService
	authzService *service.AuthorizationService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authService *service.AuthenticationService, authzService *service.AuthorizationService) *AuthHandler {
	return &AuthHandler{authService: authService, authzService: authzService}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Register handles POST /auth/register; it only works while no account exists
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": middleware.Localize(c, i18n.ErrTokenMissing)})
		return
	}

	permissions, err := h.authzService.GetRolePermissions(user.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	granted := make([]string, 0, len(permissions))
	for _, p := range permissions {
		if len(p) >= 3 {
			granted = append(granted, p[1]+":"+p[2])
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"permissions": granted,
	})
}

// Verify handles POST /auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": middleware.Localize(c, i18n.ErrTokenMissing)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  user,
	})
}
