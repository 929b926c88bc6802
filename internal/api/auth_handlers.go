package api

import (
	"net/http"

	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/service"
)

type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// signupHandler registers a new customer account
func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	_, err := s.userService.Signup(r.Context(), service.AccountInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	IsAdmin    bool   `json:"isAdmin"`
	IsEmployee bool   `json:"isEmployee"`
}

func newUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsAdmin:    u.IsAdmin(),
		IsEmployee: u.IsEmployee(),
	}
}

// loginHandler verifies credentials and returns the account payload
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	user, err := s.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    newUserPayload(user),
	})
}
