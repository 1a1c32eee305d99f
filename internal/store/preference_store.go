package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vbonduro/cookitup/internal/domain"
)

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

func (s *PreferenceStore) Create(ctx context.Context, owner, name string, kind domain.PreferenceKind) (*domain.Preference, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (owner, name, kind) VALUES (?, ?, ?)
	`, owner, name, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to create preference: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	pref := &domain.Preference{}
	err = s.db.QueryRowContext(ctx, `
		SELECT id, owner, name, kind, created_at FROM preferences WHERE id = ?
	`, id).Scan(&pref.ID, &pref.Owner, &pref.Name, &pref.Kind, &pref.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}
	return pref, nil
}

func (s *PreferenceStore) List(ctx context.Context, owner string) ([]*domain.Preference, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, name, kind, created_at FROM preferences
		WHERE owner = ? ORDER BY id ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var prefs []*domain.Preference
	for rows.Next() {
		pref := &domain.Preference{}
		if err := rows.Scan(&pref.ID, &pref.Owner, &pref.Name, &pref.Kind, &pref.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}

	return prefs, nil
}

func (s *PreferenceStore) Delete(ctx context.Context, owner string, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM preferences WHERE owner = ? AND id = ?
	`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("preference %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (s *PreferenceStore) DeleteByOwner(ctx context.Context, owner string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM preferences WHERE owner = ?
	`, owner)
	if err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}

	return nil
}
