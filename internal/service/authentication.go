package service

import (
	"context"
	"errors"
	"log"

	"github.com/sliramanoel/venda/internal/auth"
	"github.com/sliramanoel/venda/internal/model"
)

// AuthenticationService handles admin login, first-admin registration and token checks
type AuthenticationService struct {
	users  UserService
	tokens *auth.TokenManager
}

// NewAuthenticationService creates an AuthenticationService
func NewAuthenticationService(users UserService, tokens *auth.TokenManager) *AuthenticationService {
	return &AuthenticationService{users: users, tokens: tokens}
}

// Login checks credentials and issues an access token
func (s *AuthenticationService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.ValidatePassword(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.tokenFor(user)
}

// Register creates the first admin account. Once any account exists, further accounts
// are created by an admin through the CLI.
func (s *AuthenticationService) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrRegistrationClosed
	}

	user, err := s.users.CreateUser(ctx, &CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[AUTH] registered first admin %s", user.Email)
	return s.tokenFor(user)
}

// Authenticate resolves a bearer token to a live account
func (s *AuthenticationService) Authenticate(ctx context.Context, token string) (*model.AdminUser, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return nil, auth.ErrInvalidToken
	}
	return user, err
}

func (s *AuthenticationService) tokenFor(user *model.AdminUser) (*model.TokenResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
		User:        *user,
	}, nil
}
