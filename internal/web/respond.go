package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/cookitup/internal/domain"
)

const (
	userHeader   = "X-User-ID"
	maxBodyBytes = 1 << 20
)

type ctxKey int

const userKey ctxKey = iota

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// requireUser rejects requests without an X-User-ID header and stores the
// caller in the request context.
func (s *Server) requireUser(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := strings.TrimSpace(r.Header.Get(userHeader))
		if user == "" {
			s.writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing " + userHeader + " header"})
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func userFrom(r *http.Request) string {
	user, _ := r.Context().Value(userKey).(string)
	return user
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads a single JSON object into dst. Decode failures come back
// as *domain.ValidationError so they render like any other bad input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &typeErr):
			return &domain.ValidationError{Field: typeErr.Field, Reason: "must be a " + typeErr.Type.String()}
		case errors.As(err, &maxErr):
			return &domain.ValidationError{Field: "body", Reason: "is too large"}
		case errors.Is(err, io.EOF):
			return &domain.ValidationError{Field: "body", Reason: "is required"}
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return &domain.ValidationError{Field: field, Reason: "is not allowed"}
		default:
			return &domain.ValidationError{Field: "body", Reason: "must be valid JSON"}
		}
	}
	if dec.More() {
		return &domain.ValidationError{Field: "body", Reason: "must contain a single JSON object"}
	}
	return nil
}

// writeError maps service errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		schemaErr     *domain.SchemaError
		upstreamErr   *domain.UpstreamError
		persistErr    *domain.PersistenceError
	)

	status := http.StatusInternalServerError
	body := errorBody{Error: "internal server error"}

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body = errorBody{Error: validationErr.Error(), Field: validationErr.Field}
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		body.Error = err.Error()
	case errors.Is(err, domain.ErrEmptyInput):
		status = http.StatusUnprocessableEntity
		body.Error = err.Error()
	case errors.Is(err, domain.ErrBusy):
		status = http.StatusConflict
		body.Error = err.Error()
	case errors.As(err, &schemaErr):
		status = http.StatusBadGateway
		body.Error = schemaErr.Error()
	case errors.As(err, &upstreamErr):
		status = http.StatusBadGateway
		body.Error = upstreamErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		body.Error = "request timed out"
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.
		s.logger.Info("request cancelled", "path", r.URL.Path)
		return
	case errors.As(err, &persistErr):
		s.logger.Error("persistence failure", "op", persistErr.Op, "path", r.URL.Path, "error", err)
	default:
		s.logger.Error("unhandled error", "path", r.URL.Path, "error", err)
	}

	s.writeJSON(w, status, body)
}
