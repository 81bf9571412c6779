package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Admin roles
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// AdminUser is a back-office account
type AdminUser struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Name      string    `json:"name" gorm:"type:varchar(120);not null"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null;default:admin"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:createdAt"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// JWTClaims are the admin token claims; sub carries the user id
type JWTClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the admin login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates the first admin account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

// TokenResponse is returned by login and register
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        AdminUser `json:"user"`
}
