// Package registry stores registered properties and investor profiles.
// The default DSN keeps the store in memory; pointing it at a file makes
// it durable without code changes.
package registry

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"estatewise/server/internal/models"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrInvestorNotFound = errors.New("investor not found")
)

type Registry struct {
	db *gorm.DB
}

// Open connects to the sqlite database at dsn and migrates the schema.
func Open(dsn string) (*Registry, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&models.Property{}, &models.Investor{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Registry{db: db}, nil
}

// SaveProperty inserts or updates a property. An empty ID gets a fresh
// UUID assigned before the write.
func (r *Registry) SaveProperty(property *models.Property) error {
	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	if err := r.db.Save(property).Error; err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

func (r *Registry) GetProperty(id string) (*models.Property, error) {
	var property models.Property
	err := r.db.First(&property, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	return &property, nil
}

func (r *Registry) ListProperties() ([]models.Property, error) {
	var properties []models.Property
	if err := r.db.Order("created_at").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

func (r *Registry) DeleteProperty(id string) error {
	result := r.db.Delete(&models.Property{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// SaveInvestor inserts or updates an investor profile. An empty ID gets
// a fresh UUID assigned before the write.
func (r *Registry) SaveInvestor(investor *models.Investor) error {
	if investor.ID == "" {
		investor.ID = uuid.NewString()
	}
	if err := r.db.Save(investor).Error; err != nil {
		return fmt.Errorf("failed to save investor: %w", err)
	}
	return nil
}

func (r *Registry) GetInvestor(id string) (*models.Investor, error) {
	var investor models.Investor
	err := r.db.First(&investor, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvestorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load investor: %w", err)
	}
	return &investor, nil
}
