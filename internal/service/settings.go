package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sliramanoel/venda/internal/model"
	"gorm.io/gorm"
)

// singletonID is the primary key of the single settings and images rows.
const singletonID = "default"

// SettingsService manages the landing page content documents
type SettingsService interface {
	GetSettings(ctx context.Context) (*model.SiteSettings, error)
	UpdateSettings(ctx context.Context, patch model.SettingsPatch) (*model.SiteSettings, error)
	GetImages(ctx context.Context) (*model.ProductImages, error)
	UpdateImages(ctx context.Context, patch model.ImagesPatch) (*model.ProductImages, error)
	MerchantName(ctx context.Context) string
}

type settingsServiceImpl struct {
	db               *gorm.DB
	fallbackMerchant string
	now              func() time.Time
}

// NewSettingsService creates a SettingsService. fallbackMerchant names the PIX merchant
// when the settings row cannot be read or has an empty name.
func NewSettingsService(db *gorm.DB, fallbackMerchant string) SettingsService {
	return &settingsServiceImpl{db: db, fallbackMerchant: fallbackMerchant, now: time.Now}
}

// GetSettings returns the settings row, creating it with defaults on first read
func (s *settingsServiceImpl) GetSettings(ctx context.Context) (*model.SiteSettings, error) {
	return loadSettings(s.db.WithContext(ctx), s.now())
}

// UpdateSettings applies a partial update; explicit nulls restore defaults
func (s *settingsServiceImpl) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (*model.SiteSettings, error) {
	var result *model.SiteSettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadSettings(tx, s.now())
		if err != nil {
			return err
		}
		patch.ApplyTo(current)
		current.UpdatedAt = s.now().UTC()
		if err := tx.Save(current).Error; err != nil {
			return fmt.Errorf("failed to update settings: %w", err)
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetImages returns the product images row, creating it with defaults on first read
func (s *settingsServiceImpl) GetImages(ctx context.Context) (*model.ProductImages, error) {
	return loadImages(s.db.WithContext(ctx), s.now())
}

// UpdateImages applies a partial update; explicit nulls restore the stock photos
func (s *settingsServiceImpl) UpdateImages(ctx context.Context, patch model.ImagesPatch) (*model.ProductImages, error) {
	var result *model.ProductImages
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadImages(tx, s.now())
		if err != nil {
			return err
		}
		patch.ApplyTo(current)
		current.UpdatedAt = s.now().UTC()
		if err := tx.Save(current).Error; err != nil {
			return fmt.Errorf("failed to update images: %w", err)
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MerchantName is the name printed on PIX charges
func (s *settingsServiceImpl) MerchantName(ctx context.Context) string {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		log.Printf("[SETTINGS] failed to read merchant name, using fallback: %v", err)
		return s.fallbackMerchant
	}
	if name := strings.TrimSpace(settings.Name); name != "" {
		return name
	}
	return s.fallbackMerchant
}

func loadSettings(db *gorm.DB, now time.Time) (*model.SiteSettings, error) {
	defaults := model.DefaultSiteSettings()
	defaults.ID = singletonID
	defaults.UpdatedAt = now.UTC()

	var settings model.SiteSettings
	if err := getOrCreate(db, &settings, &defaults); err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

func loadImages(db *gorm.DB, now time.Time) (*model.ProductImages, error) {
	defaults := model.DefaultProductImages()
	defaults.ID = singletonID
	defaults.UpdatedAt = now.UTC()

	var images model.ProductImages
	if err := getOrCreate(db, &images, &defaults); err != nil {
		return nil, fmt.Errorf("failed to get images: %w", err)
	}
	return &images, nil
}

// getOrCreate loads the singleton row into dst, inserting defaults when it does not exist.
// A concurrent first insert loses on the primary key and re-reads the winner's row.
func getOrCreate[T any](db *gorm.DB, dst *T, defaults *T) error {
	err := db.Where(eq("id", singletonID)).Take(dst).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := db.Create(defaults).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return db.Where(eq("id", singletonID)).Take(dst).Error
	}
	*dst = *defaults
	return nil
}
