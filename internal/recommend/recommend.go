// Package recommend turns an inventory snapshot into recipe suggestions with
// a single completion call per request.
package recommend

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/cookitup/internal/domain"
	"github.com/vbonduro/cookitup/internal/llm"
)

const DefaultTemperature = 0.7

// Requester issues recommendation calls for one caller. Only one call may
// be in flight at a time; overlapping calls fail with domain.ErrBusy.
type Requester struct {
	completer   llm.Completer
	temperature float32
	logger      *slog.Logger
	busy        atomic.Bool
}

func NewRequester(completer llm.Completer, temperature float32, logger *slog.Logger) *Requester {
	return &Requester{
		completer:   completer,
		temperature: temperature,
		logger:      logger,
	}
}

// InFlight reports whether a call is currently waiting on the completer.
func (r *Requester) InFlight() bool {
	return r.busy.Load()
}

// Recommend asks the completer for recipes that use ingredients. It makes
// no retries. When ctx ends before the reply arrives the context error is
// returned and the reply is discarded unparsed.
func (r *Requester) Recommend(ctx context.Context, ingredients []domain.Ingredient, prefs []domain.Preference) ([]domain.Recipe, error) {
	if len(ingredients) == 0 {
		return nil, domain.ErrEmptyInput
	}

	if !r.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrBusy
	}
	defer r.busy.Store(false)

	user, err := UserMessage(ingredients, prefs)
	if err != nil {
		return nil, err
	}

	logger := r.logger.With("call_id", uuid.NewString(), "provider", r.completer.Name())
	logger.Info("requesting recipes", "ingredients", len(ingredients), "preferences", len(prefs))
	start := time.Now()

	text, err := r.completer.Complete(ctx, llm.Request{
		System:      SystemPrompt,
		User:        user,
		JSON:        true,
		Temperature: r.temperature,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Info("recipe request cancelled", "duration", time.Since(start))
		return nil, ctxErr
	}
	if err != nil {
		logger.Error("recipe request failed", "error", err, "duration", time.Since(start))
		return nil, r.upstreamError(err)
	}
	if strings.TrimSpace(text) == "" {
		logger.Error("recipe request returned no content")
		return nil, &domain.UpstreamError{Provider: r.completer.Name(), Message: "empty completion"}
	}

	recipes, err := ParseRecipes(text)
	if err != nil {
		logger.Warn("discarding malformed recipe response", "error", err)
		return nil, err
	}

	logger.Info("recipes received", "count", len(recipes), "duration", time.Since(start))
	return recipes, nil
}

func (r *Requester) upstreamError(err error) error {
	var lerr *llm.Error
	if errors.As(err, &lerr) {
		return &domain.UpstreamError{Provider: lerr.Provider, StatusCode: lerr.StatusCode, Message: lerr.Message, Err: err}
	}
	return &domain.UpstreamError{Provider: r.completer.Name(), Message: err.Error(), Err: err}
}
