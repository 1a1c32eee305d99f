package web

import (
	"net/http"

	"github.com/vbonduro/cookitup/internal/domain"
)

type preferenceRequest struct {
	Name string                `json:"name"`
	Kind domain.PreferenceKind `json:"kind"`
}

func (s *Server) handleListPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.service.ListPreferences(r.Context(), userFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleAddPreference(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pref, err := s.service.AddPreference(r.Context(), userFrom(r), req.Name, req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, pref)
}

func (s *Server) handleDeletePreference(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "id", Reason: "must be an integer"})
		return
	}

	if err := s.service.DeletePreference(r.Context(), userFrom(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
