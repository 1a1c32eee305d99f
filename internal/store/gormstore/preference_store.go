package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vbonduro/cookitup/internal/domain"
)

type PreferenceStore struct {
	db *gorm.DB
}

func NewPreferenceStore(db *gorm.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

func (s *PreferenceStore) Create(ctx context.Context, owner, name string, kind domain.PreferenceKind) (*domain.Preference, error) {
	row := preferenceRow{Owner: owner, Name: name, Kind: string(kind)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create preference: %w", err)
	}
	return row.toDomain(), nil
}

func (s *PreferenceStore) List(ctx context.Context, owner string) ([]*domain.Preference, error) {
	var rows []preferenceRow
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}

	prefs := make([]*domain.Preference, 0, len(rows))
	for _, r := range rows {
		prefs = append(prefs, r.toDomain())
	}
	return prefs, nil
}

func (s *PreferenceStore) Delete(ctx context.Context, owner string, id int64) error {
	result := s.db.WithContext(ctx).Where("owner = ? AND id = ?", owner, id).Delete(&preferenceRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete preference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("preference %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *PreferenceStore) DeleteByOwner(ctx context.Context, owner string) error {
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Delete(&preferenceRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}
	return nil
}
