package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sliramanoel/venda/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService manages back-office accounts
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*model.AdminUser, error)
	GetUserByID(ctx context.Context, id string) (*model.AdminUser, error)
	GetUserByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*model.AdminUser, error)
	ValidatePassword(ctx context.Context, email, password string) (*model.AdminUser, error)
	ListUsers(ctx context.Context, filters UserFilters) ([]model.AdminUser, error)
	CountUsers(ctx context.Context) (int64, error)
}

// CreateUserRequest is an admin account creation request
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

// UpdateUserRequest changes only the fields that are set
type UpdateUserRequest struct {
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// UserFilters narrows a user listing
type UserFilters struct {
	Role string
}

// userServiceImpl is the UserService implementation
type userServiceImpl struct {
	db *gorm.DB
}

// NewUserService creates a UserService over db
func NewUserService(db *gorm.DB) UserService {
	return &userServiceImpl{db: db}
}

// CreateUser hashes the password and stores a new account; the role defaults to admin
func (s *userServiceImpl) CreateUser(ctx context.Context, req *CreateUserRequest) (*model.AdminUser, error) {
	role := req.Role
	if role == "" {
		role = model.RoleAdmin
	}
	if !validRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.AdminUser{
		ID:       uuid.NewString(),
		Email:    normalizeEmail(req.Email),
		Password: hashedPassword,
		Name:     strings.TrimSpace(req.Name),
		Role:     role,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.Password = ""
	return user, nil
}

// GetUserByID returns an account without its password hash
func (s *userServiceImpl) GetUserByID(ctx context.Context, id string) (*model.AdminUser, error) {
	user, err := s.find(ctx, eq("id", id))
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// GetUserByEmail returns an account including its password hash
func (s *userServiceImpl) GetUserByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	return s.find(ctx, eq("email", normalizeEmail(email)))
}

func (s *userServiceImpl) find(ctx context.Context, cond interface{}) (*model.AdminUser, error) {
	var user model.AdminUser
	if err := s.db.WithContext(ctx).Where(cond).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ValidatePassword checks credentials; unknown emails and wrong passwords are indistinguishable
func (s *userServiceImpl) ValidatePassword(ctx context.Context, email, password string) (*model.AdminUser, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.Password = ""
	return user, nil
}

// UpdateUser changes the name, role or password of an account
func (s *userServiceImpl) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*model.AdminUser, error) {
	user, err := s.find(ctx, eq("id", id))
	if err != nil {
		return nil, err
	}

	if req.Password != nil {
		hashedPassword, err := hashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashedPassword
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return nil, fmt.Errorf("unknown role %q", *req.Role)
		}
		user.Role = *req.Role
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	user.Password = ""
	return user, nil
}

// ListUsers returns accounts ordered by email
func (s *userServiceImpl) ListUsers(ctx context.Context, filters UserFilters) ([]model.AdminUser, error) {
	query := s.db.WithContext(ctx).Model(&model.AdminUser{})
	if filters.Role != "" {
		query = query.Where(eq("role", filters.Role))
	}

	var users []model.AdminUser
	if err := query.Order("email").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// CountUsers returns the number of accounts
func (s *userServiceImpl) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.AdminUser{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func validRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleOperator
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
