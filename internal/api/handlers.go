package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/pkg/apperrors"
)

// Health represents the health check response
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// healthCheckHandler handles the health check endpoint
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	health := Health{
		Status:    "ok",
		Version:   "1.0.0",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	s.respondWithJSON(w, http.StatusOK, health)
}

// decodeJSON parses a request body into dst
func (s *Server) decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("Invalid JSON payload")
	}

	return nil
}

// respondWithAppError maps a service error onto its HTTP status and body
func (s *Server) respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		s.respondWithError(w, appErr.StatusCode, appErr.Message)
		return
	}

	s.logger.Error("Unhandled error", "error", err)
	s.respondWithError(w, http.StatusInternalServerError, "An unexpected error occurred")
}

// respondWithError sends a JSON response with an error message
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)

	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// identityHeader carries the caller's account email
const identityHeader = "X-User-Email"

// authenticatedUser resolves the account behind the identity header
func (s *Server) authenticatedUser(r *http.Request) (*models.User, error) {
	return s.userService.Authenticate(r.Context(), r.Header.Get(identityHeader))
}

// adminRequired guards a handler behind an admin-role check
func (s *Server) adminRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticatedUser(r)
		if err != nil {
			s.respondWithAppError(w, err)
			return
		}
		if !user.IsAdmin() {
			s.respondWithError(w, http.StatusForbidden, "Forbidden: Admin access required")
			return
		}

		next(w, r)
	}
}
