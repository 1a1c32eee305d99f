package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vbonduro/cookitup/internal/domain"
	"github.com/vbonduro/cookitup/internal/inventory"
	"github.com/vbonduro/cookitup/internal/llm"
	"github.com/vbonduro/cookitup/internal/recipecache"
	"github.com/vbonduro/cookitup/internal/recommend"
)

// PreferenceRepository is the subset of store.PreferenceStore that PantryService requires.
type PreferenceRepository interface {
	Create(ctx context.Context, owner, name string, kind domain.PreferenceKind) (*domain.Preference, error)
	List(ctx context.Context, owner string) ([]*domain.Preference, error)
	Delete(ctx context.Context, owner string, id int64) error
	DeleteByOwner(ctx context.Context, owner string) error
}

// session is the per-user state: one inventory and one requester. refs counts
// the calls and subscriptions currently using it; an ended session leaves the
// registry when refs drops to zero.
type session struct {
	store     *inventory.Store
	requester *recommend.Requester
	refs      int
	ended     bool
}

// PantryService owns every open user session. Sessions are opened on first
// use and live until EndSession or DeleteAccount, and while anything still
// holds them. A user never has two sessions at once.
type PantryService struct {
	items       inventory.Repository
	prefs       PreferenceRepository
	completer   llm.Completer
	cache       recipecache.Cache
	temperature float32
	logger      *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewPantryService(
	items inventory.Repository,
	prefs PreferenceRepository,
	completer llm.Completer,
	cache recipecache.Cache,
	temperature float32,
	logger *slog.Logger,
) *PantryService {
	return &PantryService{
		items:       items,
		prefs:       prefs,
		completer:   completer,
		cache:       cache,
		temperature: temperature,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

// acquire returns user's session, opening it if needed, and takes a
// reference on it. The returned release func must be called exactly once.
func (s *PantryService) acquire(ctx context.Context, user string) (*session, func(), error) {
	s.mu.Lock()
	sess, ok := s.sessions[user]
	if ok {
		sess.refs++
	}
	s.mu.Unlock()
	if ok {
		return sess, s.releaser(user, sess), nil
	}

	store, err := inventory.Open(ctx, s.items, user, s.logger)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have opened it meanwhile.
	if existing, ok := s.sessions[user]; ok {
		existing.refs++
		return existing, s.releaser(user, existing), nil
	}
	sess = &session{
		store:     store,
		requester: recommend.NewRequester(s.completer, s.temperature, s.logger.With("user", user)),
		refs:      1,
	}
	s.sessions[user] = sess
	s.logger.Debug("session opened", "user", user)
	return sess, s.releaser(user, sess), nil
}

func (s *PantryService) releaser(user string, sess *session) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			sess.refs--
			if sess.refs == 0 && sess.ended && s.sessions[user] == sess {
				delete(s.sessions, user)
				s.logger.Debug("session closed", "user", user)
			}
		})
	}
}

func (s *PantryService) ListItems(ctx context.Context, user string, filter domain.Filter) ([]domain.FoodItem, error) {
	sess, release, err := s.acquire(ctx, user)
	if err != nil {
		return nil, err
	}
	defer release()
	return sess.store.List(filter), nil
}

func (s *PantryService) AddItem(ctx context.Context, user string, draft domain.FoodItemDraft) (domain.FoodItem, error) {
	sess, release, err := s.acquire(ctx, user)
	if err != nil {
		return domain.FoodItem{}, err
	}
	defer release()
	return sess.store.Add(ctx, draft)
}

func (s *PantryService) UpdateItem(ctx context.Context, user string, id int64, patch domain.FoodItemPatch) (domain.FoodItem, error) {
	sess, release, err := s.acquire(ctx, user)
	if err != nil {
		return domain.FoodItem{}, err
	}
	defer release()
	return sess.store.Update(ctx, id, patch)
}

func (s *PantryService) RemoveItem(ctx context.Context, user string, id int64) error {
	sess, release, err := s.acquire(ctx, user)
	if err != nil {
		return err
	}
	defer release()
	return sess.store.Remove(ctx, id)
}

// Subscribe registers fn for user's inventory changes and returns the
// collection as of registration. The session stays open until cancel is
// called.
func (s *PantryService) Subscribe(ctx context.Context, user string, fn inventory.Subscriber) ([]domain.FoodItem, func(), error) {
	sess, release, err := s.acquire(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	unsubscribe := sess.store.Subscribe(fn)
	cancel := func() {
		unsubscribe()
		release()
	}
	return sess.store.List(domain.Filter{}), cancel, nil
}

// Recommend asks for recipes from user's current stock and replaces the
// cached batch on success. While a call is in flight the session is held, so
// a second call for the same user is rejected with domain.ErrBusy even across
// EndSession.
func (s *PantryService) Recommend(ctx context.Context, user string) ([]domain.Recipe, error) {
	sess, release, err := s.acquire(ctx, user)
	if err != nil {
		return nil, err
	}
	defer release()

	snapshot := sess.store.Snapshot()
	if len(snapshot) == 0 {
		return nil, domain.ErrEmptyInput
	}

	prefs, err := s.ListPreferences(ctx, user)
	if err != nil {
		return nil, err
	}

	recipes, err := sess.requester.Recommend(ctx, snapshot, prefs)
	if err != nil {
		return nil, err
	}

	batch := domain.RecipeBatch{Recipes: recipes, GeneratedAt: s.now().UTC()}
	if err := s.cache.Put(ctx, user, batch); err != nil {
		s.logger.Error("failed to cache recipes", "user", user, "error", err)
		return nil, &domain.PersistenceError{Op: "cache recipes", Err: err}
	}
	return recipes, nil
}

// LatestRecipes returns nil when user has no cached batch.
func (s *PantryService) LatestRecipes(ctx context.Context, user string) (*domain.RecipeBatch, error) {
	batch, err := s.cache.Get(ctx, user)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load recipes", Err: err}
	}
	return batch, nil
}

func (s *PantryService) AddPreference(ctx context.Context, user, name string, kind domain.PreferenceKind) (*domain.Preference, error) {
	pref := domain.Preference{Name: strings.TrimSpace(name), Kind: kind}
	if err := domain.Validate(pref); err != nil {
		return nil, err
	}

	created, err := s.prefs.Create(ctx, user, pref.Name, pref.Kind)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "insert", Err: err}
	}
	return created, nil
}

func (s *PantryService) ListPreferences(ctx context.Context, user string) ([]domain.Preference, error) {
	rows, err := s.prefs.List(ctx, user)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "select", Err: err}
	}
	prefs := make([]domain.Preference, 0, len(rows))
	for _, p := range rows {
		prefs = append(prefs, *p)
	}
	return prefs, nil
}

func (s *PantryService) DeletePreference(ctx context.Context, user string, id int64) error {
	err := s.prefs.Delete(ctx, user, id)
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return &domain.PersistenceError{Op: "delete", Err: err}
	}
	return nil
}

// EndSession drops user's in-memory state. Persisted data is untouched. A
// session still held by a call or a subscriber is dropped when the last one
// lets go, and until then later calls keep using it.
func (s *PantryService) EndSession(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[user]
	if !ok {
		return
	}
	sess.ended = true
	if sess.refs == 0 {
		delete(s.sessions, user)
		s.logger.Debug("session closed", "user", user)
	}
}

// DeleteAccount removes everything stored for user and ends the session.
// Subscribers see an empty collection before the session closes.
func (s *PantryService) DeleteAccount(ctx context.Context, user string) error {
	sess, release, err := s.acquire(ctx, user)
	if err != nil {
		return err
	}
	defer release()

	if err := sess.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	if err := s.prefs.DeleteByOwner(ctx, user); err != nil {
		return &domain.PersistenceError{Op: "delete preferences", Err: err}
	}
	if err := s.cache.Delete(ctx, user); err != nil {
		return &domain.PersistenceError{Op: "delete recipes", Err: err}
	}

	s.EndSession(user)
	s.logger.Info("account deleted", "user", user)
	return nil
}
