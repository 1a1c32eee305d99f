package local

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vbonduro/cookitup/internal/domain"
)

// LocalRecipeCache writes one JSON file per owner under basePath. A zero ttl
// keeps batches until they are replaced.
type LocalRecipeCache struct {
	basePath string
	ttl      time.Duration
	now      func() time.Time
}

func NewLocalRecipeCache(basePath string, ttl time.Duration) (*LocalRecipeCache, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create recipe cache directory: %w", err)
	}
	return &LocalRecipeCache{basePath: basePath, ttl: ttl, now: time.Now}, nil
}

func (s *LocalRecipeCache) Put(ctx context.Context, owner string, batch domain.RecipeBatch) error {
	filePath, err := s.pathFor(owner)
	if err != nil {
		return err
	}

	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal recipes: %w", err)
	}

	f, err := os.CreateTemp(s.basePath, ".recipes-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(tmp); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(tmp); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmp, filePath); err != nil {
		if rerr := os.Remove(tmp); rerr != nil {
			slog.Error("failed to remove file after rename error", "error", rerr)
		}
		return fmt.Errorf("failed to replace recipes file: %w", err)
	}
	return nil
}

func (s *LocalRecipeCache) Get(ctx context.Context, owner string) (*domain.RecipeBatch, error) {
	filePath, err := s.pathFor(owner)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read recipes file: %w", err)
	}

	var batch domain.RecipeBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipes: %w", err)
	}

	if s.ttl > 0 && s.now().Sub(batch.GeneratedAt) > s.ttl {
		return nil, nil
	}
	return &batch, nil
}

// Delete is a no-op when owner has nothing cached.
func (s *LocalRecipeCache) Delete(ctx context.Context, owner string) error {
	filePath, err := s.pathFor(owner)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// pathFor encodes owner into a file name so user ids cannot name directories.
func (s *LocalRecipeCache) pathFor(owner string) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("empty owner")
	}
	return s.safeJoin(base64.RawURLEncoding.EncodeToString([]byte(owner)) + ".json")
}

// safeJoin resolves name relative to basePath and rejects directory traversal.
func (s *LocalRecipeCache) safeJoin(name string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, name))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}
