// Package gormstore is the postgres persistence backend, built on gorm.
package gormstore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vbonduro/cookitup/internal/domain"
)

type foodItemRow struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Owner          string `gorm:"index;not null"`
	Name           string `gorm:"not null"`
	TotalQuantity  float64
	WeightPerItem  float64
	Unit           string `gorm:"not null"`
	Type           string `gorm:"not null"`
	ExpirationDate string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (foodItemRow) TableName() string { return "food_items" }

func (r foodItemRow) toDomain() *domain.FoodItem {
	return &domain.FoodItem{
		ID:             r.ID,
		Owner:          r.Owner,
		Name:           r.Name,
		TotalQuantity:  r.TotalQuantity,
		WeightPerItem:  r.WeightPerItem,
		Unit:           r.Unit,
		Type:           r.Type,
		ExpirationDate: r.ExpirationDate,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type preferenceRow struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Owner     string `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	Kind      string `gorm:"not null"`
	CreatedAt time.Time
}

func (preferenceRow) TableName() string { return "preferences" }

func (r preferenceRow) toDomain() *domain.Preference {
	return &domain.Preference{
		ID:        r.ID,
		Owner:     r.Owner,
		Name:      r.Name,
		Kind:      domain.PreferenceKind(r.Kind),
		CreatedAt: r.CreatedAt,
	}
}

// Open connects to postgres and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&foodItemRow{}, &preferenceRow{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

func notFound(kind string, id int64, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", kind, err)
}
