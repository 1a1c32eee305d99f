package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vbonduro/cookitup/internal/domain"
)

type FoodStore struct {
	db *gorm.DB
}

func NewFoodStore(db *gorm.DB) *FoodStore {
	return &FoodStore{db: db}
}

func (s *FoodStore) Insert(ctx context.Context, owner string, draft domain.FoodItemDraft) (*domain.FoodItem, error) {
	row := foodItemRow{
		Owner:          owner,
		Name:           draft.Name,
		Unit:           draft.Unit,
		Type:           draft.Type,
		ExpirationDate: draft.ExpirationDate,
	}
	if draft.TotalQuantity != nil {
		row.TotalQuantity = *draft.TotalQuantity
	}
	if draft.WeightPerItem != nil {
		row.WeightPerItem = *draft.WeightPerItem
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert food item: %w", err)
	}
	return row.toDomain(), nil
}

func (s *FoodStore) Select(ctx context.Context, owner string) ([]*domain.FoodItem, error) {
	var rows []foodItemRow
	err := s.db.WithContext(ctx).Where("owner = ?", owner).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}

	items := make([]*domain.FoodItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toDomain())
	}
	return items, nil
}

func (s *FoodStore) Update(ctx context.Context, owner string, id int64, patch domain.FoodItemPatch) (*domain.FoodItem, error) {
	var row foodItemRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner = ? AND id = ?", owner, id).First(&row).Error; err != nil {
			return notFound("food item", id, err)
		}

		next := patch.Apply(*row.toDomain())
		row.Name = next.Name
		row.TotalQuantity = next.TotalQuantity
		row.WeightPerItem = next.WeightPerItem
		row.Unit = next.Unit
		row.Type = next.Type
		row.ExpirationDate = next.ExpirationDate

		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to update food item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *FoodStore) Delete(ctx context.Context, owner string, id int64) error {
	result := s.db.WithContext(ctx).Where("owner = ? AND id = ?", owner, id).Delete(&foodItemRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete food item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("food item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *FoodStore) DeleteByOwner(ctx context.Context, owner string) error {
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Delete(&foodItemRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete food items: %w", err)
	}
	return nil
}
