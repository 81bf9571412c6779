package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sliramanoel/venda/internal/config"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/service"
)

// SeedDataManager creates the rows a fresh install needs
type SeedDataManager struct {
	userService     service.UserService
	settingsService service.SettingsService
}

// NewSeedDataManager creates a new seed data manager
func NewSeedDataManager(userService service.UserService, settingsService service.SettingsService) *SeedDataManager {
	return &SeedDataManager{
		userService:     userService,
		settingsService: settingsService,
	}
}

// SeedAll creates the default content and, when configured, the bootstrap admin
func (s *SeedDataManager) SeedAll(ctx context.Context, cfg config.AuthConfig) error {
	if err := s.setupDefaultContent(ctx); err != nil {
		return fmt.Errorf("failed to setup default content: %w", err)
	}

	if err := s.setupBootstrapAdmin(ctx, cfg); err != nil {
		return fmt.Errorf("failed to setup bootstrap admin: %w", err)
	}

	return nil
}

func (s *SeedDataManager) setupDefaultContent(ctx context.Context) error {
	if _, err := s.settingsService.GetSettings(ctx); err != nil {
		return err
	}
	if _, err := s.settingsService.GetImages(ctx); err != nil {
		return err
	}
	return nil
}

// setupBootstrapAdmin creates the configured admin account on an empty install. Once any
// account exists the configuration is ignored.
func (s *SeedDataManager) setupBootstrapAdmin(ctx context.Context, cfg config.AuthConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	count, err := s.userService.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if count > 0 {
		log.Println("[SEED] admin accounts already exist, skipping bootstrap admin")
		return nil
	}

	user, err := s.userService.CreateUser(ctx, &service.CreateUserRequest{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
		Role:     model.RoleAdmin,
	})
	if errors.Is(err, service.ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("[SEED] created bootstrap admin %s", user.Email)
	return nil
}
