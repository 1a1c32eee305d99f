package web

import "net/http"

// handleEndSession drops the caller's in-memory inventory. The next request
// reloads it from storage.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	s.service.EndSession(userFrom(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteAccount(r.Context(), userFrom(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
