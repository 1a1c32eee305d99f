package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vbonduro/cookitup/internal/domain"
)

const heartbeatInterval = 25 * time.Second

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	filter := domain.Filter{
		SearchTerm: r.URL.Query().Get("q"),
		Category:   r.URL.Query().Get("category"),
	}
	items, err := s.service.ListItems(r.Context(), userFrom(r), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var draft domain.FoodItemDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.service.AddItem(r.Context(), userFrom(r), draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "id", Reason: "must be an integer"})
		return
	}

	var patch domain.FoodItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.service.UpdateItem(r.Context(), userFrom(r), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "id", Reason: "must be an integer"})
		return
	}

	if err := s.service.RemoveItem(r.Context(), userFrom(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleItemEvents streams the caller's full item collection as an SSE
// "items" event, once on connect and again after every change. Changes that
// arrive while the client is still reading are coalesced into the latest.
func (s *Server) handleItemEvents(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	updates := make(chan []domain.FoodItem, 1)
	initial, cancel, err := s.service.Subscribe(r.Context(), user, func(items []domain.FoodItem) {
		select {
		case updates <- items:
			return
		default:
		}
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- items:
		default:
		}
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer cancel()

	// The stream outlives the server's WriteTimeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Warn("failed to clear write deadline", "user", user, "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	enc := json.NewEncoder(w)

	send := func(items []domain.FoodItem) bool {
		if items == nil {
			items = []domain.FoodItem{}
		}
		if _, err := w.Write([]byte("event: items\ndata: ")); err != nil {
			return false
		}
		if err := enc.Encode(items); err != nil {
			return false
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return false
		}
		if canFlush {
			flusher.Flush()
		}
		return true
	}

	if !send(initial) {
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case items := <-updates:
			if !send(items) {
				s.logger.Info("item stream closed", "user", user)
				return
			}
		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			if canFlush {
				flusher.Flush()
			}
		}
	}
}
