package web

import (
	"net/http"

	"github.com/vbonduro/cookitup/internal/domain"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.service.Recommend(r.Context(), userFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]domain.Recipe{"recipes": recipes})
}

func (s *Server) handleLatestRecipes(w http.ResponseWriter, r *http.Request) {
	batch, err := s.service.LatestRecipes(r.Context(), userFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if batch == nil {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "no recipes generated yet"})
		return
	}
	s.writeJSON(w, http.StatusOK, batch)
}
