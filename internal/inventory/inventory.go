// Package inventory holds the canonical food item collection of one user.
// Mutations are persisted through a Repository before the in-memory
// collection changes, and every successful mutation publishes the full
// collection to subscribers before returning.
package inventory

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vbonduro/cookitup/internal/domain"
)

// Repository is the persistence backend. Implementations scope every call
// to owner and return an error wrapping domain.ErrNotFound for missing rows.
type Repository interface {
	Insert(ctx context.Context, owner string, draft domain.FoodItemDraft) (*domain.FoodItem, error)
	Select(ctx context.Context, owner string) ([]*domain.FoodItem, error)
	Update(ctx context.Context, owner string, id int64, patch domain.FoodItemPatch) (*domain.FoodItem, error)
	Delete(ctx context.Context, owner string, id int64) error
	DeleteByOwner(ctx context.Context, owner string) error
}

var errNoRow = errors.New("backend returned no row")

// Subscriber receives the full collection after a mutation. It runs on the
// mutating goroutine and must not mutate the same Store.
type Subscriber func(items []domain.FoodItem)

// Store is one user's food item collection. It is safe for concurrent use;
// mutations are applied one at a time.
type Store struct {
	repo   Repository
	owner  string
	logger *slog.Logger

	// writeMu serializes mutations end to end.
	writeMu sync.Mutex

	mu    sync.RWMutex
	items []domain.FoodItem

	subMu sync.Mutex
	subs  map[uuid.UUID]Subscriber
}

// Open loads owner's items from repo.
func Open(ctx context.Context, repo Repository, owner string, logger *slog.Logger) (*Store, error) {
	rows, err := repo.Select(ctx, owner)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "select", Err: err}
	}

	items := make([]domain.FoodItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, *r)
	}

	return &Store{
		repo:   repo,
		owner:  owner,
		logger: logger.With("user", owner),
		items:  items,
		subs:   make(map[uuid.UUID]Subscriber),
	}, nil
}

// Owner returns the user whose items the Store holds.
func (s *Store) Owner() string { return s.owner }

// Add validates draft, persists it and appends the stored item.
func (s *Store) Add(ctx context.Context, draft domain.FoodItemDraft) (domain.FoodItem, error) {
	if err := validateDraft(&draft); err != nil {
		return domain.FoodItem{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	created, err := s.repo.Insert(ctx, s.owner, draft)
	if err == nil && created == nil {
		err = errNoRow
	}
	if err != nil {
		return domain.FoodItem{}, &domain.PersistenceError{Op: "insert", Err: err}
	}

	s.mu.Lock()
	s.items = append(s.items, *created)
	s.mu.Unlock()

	s.logger.Info("food item added", "id", created.ID, "name", created.Name)
	s.publish()
	return *created, nil
}

// Update applies the supplied fields of patch to item id. An id the Store
// does not hold fails with *domain.NotFoundError without touching the backend.
func (s *Store) Update(ctx context.Context, id int64, patch domain.FoodItemPatch) (domain.FoodItem, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.indexOf(id) < 0 {
		return domain.FoodItem{}, &domain.NotFoundError{ID: id}
	}
	if err := validatePatch(&patch); err != nil {
		return domain.FoodItem{}, err
	}

	updated, err := s.repo.Update(ctx, s.owner, id, patch)
	if err == nil && updated == nil {
		err = errNoRow
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.FoodItem{}, &domain.NotFoundError{ID: id}
	}
	if err != nil {
		return domain.FoodItem{}, &domain.PersistenceError{Op: "update", Err: err}
	}

	s.mu.Lock()
	if i := s.indexOfLocked(id); i >= 0 {
		s.items[i] = *updated
	}
	s.mu.Unlock()

	s.logger.Info("food item updated", "id", id)
	s.publish()
	return *updated, nil
}

// Remove deletes id. Removing an id that is not present is a no-op.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.indexOf(id) < 0 {
		return nil
	}

	err := s.repo.Delete(ctx, s.owner, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return &domain.PersistenceError{Op: "delete", Err: err}
	}

	s.mu.Lock()
	if i := s.indexOfLocked(id); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	}
	s.mu.Unlock()

	s.logger.Info("food item removed", "id", id)
	s.publish()
	return nil
}

// Clear deletes every item the owner has.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.DeleteByOwner(ctx, s.owner); err != nil {
		return &domain.PersistenceError{Op: "delete", Err: err}
	}

	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.publish()
	return nil
}

// List returns items whose name contains f.SearchTerm case-insensitively and
// whose type equals f.Category, in insertion order.
func (s *Store) List(f domain.Filter) []domain.FoodItem {
	term := strings.ToLower(f.SearchTerm)
	anyCategory := f.Category == "" || f.Category == domain.CategoryAll

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.FoodItem, 0, len(s.items))
	for _, it := range s.items {
		if term != "" && !strings.Contains(strings.ToLower(it.Name), term) {
			continue
		}
		if !anyCategory && it.Type != f.Category {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Snapshot copies the items that have stock left.
func (s *Store) Snapshot() []domain.Ingredient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Ingredient, 0, len(s.items))
	for _, it := range s.items {
		if it.TotalQuantity <= 0 {
			continue
		}
		out = append(out, domain.Ingredient{
			Name:          it.Name,
			Quantity:      it.TotalQuantity,
			WeightPerItem: it.WeightPerItem,
			Unit:          it.Unit,
		})
	}
	return out
}

// Subscribe registers fn and returns a function that unregisters it.
func (s *Store) Subscribe(fn Subscriber) (cancel func()) {
	id := uuid.New()

	s.subMu.Lock()
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish() {
	s.mu.RLock()
	items := make([]domain.FoodItem, len(s.items))
	copy(items, s.items)
	s.mu.RUnlock()

	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(slices.Clone(items))
	}
}

func (s *Store) indexOf(id int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfLocked(id)
}

func (s *Store) indexOfLocked(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
