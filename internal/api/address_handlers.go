package api

import (
	"net/http"

	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/service"
)

type addressRequest struct {
	Type     models.AddressType `json:"address_type"`
	Nickname string             `json:"nickname"`
	Name     string             `json:"name"`
	Street   string             `json:"address_street"`
	City     string             `json:"address_city"`
	State    string             `json:"address_state"`
	Pincode  string             `json:"address_pincode"`
	Country  string             `json:"address_country"`
	Phone    string             `json:"phone"`
}

func (req *addressRequest) toInput() service.AddressInput {
	return service.AddressInput{
		Type:     req.Type,
		Nickname: req.Nickname,
		Name:     req.Name,
		Street:   req.Street,
		City:     req.City,
		State:    req.State,
		Pincode:  req.Pincode,
		Country:  req.Country,
		Phone:    req.Phone,
	}
}

// createAddressHandler saves a new address book entry for the caller
func (s *Server) createAddressHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.authenticatedUser(r)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	var req addressRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	address, err := s.addressService.Create(r.Context(), user.ID, req.toInput())
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, address)
}

// listAddressesHandler lists the caller's saved addresses
func (s *Server) listAddressesHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.authenticatedUser(r)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	addresses, err := s.addressService.List(
		r.Context(), user.ID, models.AddressType(r.URL.Query().Get("type")))
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, addresses)
}

// updateAddressHandler rewrites one of the caller's saved addresses
func (s *Server) updateAddressHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.authenticatedUser(r)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	addressID, ok := pathInt64(r, "addressID")
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid address ID")
		return
	}

	var req addressRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	address, err := s.addressService.Update(r.Context(), user.ID, addressID, req.toInput())
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, address)
}

// deleteAddressHandler removes one of the caller's saved addresses
func (s *Server) deleteAddressHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.authenticatedUser(r)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	addressID, ok := pathInt64(r, "addressID")
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid address ID")
		return
	}

	if err := s.addressService.Delete(r.Context(), user.ID, addressID); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Address deleted"})
}
