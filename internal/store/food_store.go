package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vbonduro/cookitup/internal/domain"
)

const foodColumns = `id, owner, name, total_quantity, weight_per_item, unit, type, expiration_date, created_at, updated_at`

// FoodStore persists food items in sqlite. Every query is scoped to an owner.
type FoodStore struct {
	db *sql.DB
}

func NewFoodStore(db *sql.DB) *FoodStore {
	return &FoodStore{db: db}
}

func (s *FoodStore) Insert(ctx context.Context, owner string, draft domain.FoodItemDraft) (*domain.FoodItem, error) {
	var total, weight float64
	if draft.TotalQuantity != nil {
		total = *draft.TotalQuantity
	}
	if draft.WeightPerItem != nil {
		weight = *draft.WeightPerItem
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO food_items (owner, name, total_quantity, weight_per_item, unit, type, expiration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, owner, draft.Name, total, weight, draft.Unit, draft.Type, draft.ExpirationDate)
	if err != nil {
		return nil, fmt.Errorf("failed to insert food item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	item, err := s.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("food item %d missing after insert", id)
	}
	return item, nil
}

// GetByID returns nil, nil when the item does not exist for owner.
func (s *FoodStore) GetByID(ctx context.Context, owner string, id int64) (*domain.FoodItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+foodColumns+` FROM food_items WHERE owner = ? AND id = ?
	`, owner, id)

	item, err := scanFoodItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food item: %w", err)
	}
	return item, nil
}

// Select returns the owner's items in insertion order.
func (s *FoodStore) Select(ctx context.Context, owner string) ([]*domain.FoodItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+foodColumns+` FROM food_items WHERE owner = ? ORDER BY id ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []*domain.FoodItem
	for rows.Next() {
		item, err := scanFoodItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating food items: %w", err)
	}

	return items, nil
}

// Update applies patch to the stored row and returns the result. It returns
// an error wrapping domain.ErrNotFound when the row does not exist.
func (s *FoodStore) Update(ctx context.Context, owner string, id int64, patch domain.FoodItemPatch) (*domain.FoodItem, error) {
	current, err := s.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("food item %d: %w", id, domain.ErrNotFound)
	}

	next := patch.Apply(*current)
	result, err := s.db.ExecContext(ctx, `
		UPDATE food_items
		SET name = ?, total_quantity = ?, weight_per_item = ?, unit = ?, type = ?, expiration_date = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE owner = ? AND id = ?
	`, next.Name, next.TotalQuantity, next.WeightPerItem, next.Unit, next.Type, next.ExpirationDate, owner, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update food item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("food item %d: %w", id, domain.ErrNotFound)
	}

	return s.GetByID(ctx, owner, id)
}

// Delete returns an error wrapping domain.ErrNotFound when nothing was removed.
func (s *FoodStore) Delete(ctx context.Context, owner string, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM food_items WHERE owner = ? AND id = ?
	`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete food item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("food item %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (s *FoodStore) DeleteByOwner(ctx context.Context, owner string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM food_items WHERE owner = ?
	`, owner)
	if err != nil {
		return fmt.Errorf("failed to delete food items: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFoodItem(r rowScanner) (*domain.FoodItem, error) {
	item := &domain.FoodItem{}
	err := r.Scan(&item.ID, &item.Owner, &item.Name, &item.TotalQuantity, &item.WeightPerItem,
		&item.Unit, &item.Type, &item.ExpirationDate, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}
