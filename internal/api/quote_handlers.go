package api

import (
	"net/http"

	"github.com/logistix/courier-api/internal/service"
)

type domesticQuoteRequest struct {
	State  string  `json:"state"`
	City   string  `json:"city"`
	Mode   string  `json:"mode"`
	Weight float64 `json:"weight"`
}

// domesticQuoteHandler prices a domestic shipment
func (s *Server) domesticQuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req domesticQuoteRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	result, err := s.quoteService.DomesticQuote(service.DomesticQuoteInput{
		State:     req.State,
		City:      req.City,
		ModeLabel: req.Mode,
		WeightKg:  req.Weight,
	})
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, result)
}

type internationalQuoteRequest struct {
	Country string  `json:"country"`
	Weight  float64 `json:"weight"`
}

// internationalQuoteHandler prices an international shipment
func (s *Server) internationalQuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req internationalQuoteRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	result, err := s.quoteService.InternationalQuote(service.InternationalQuoteInput{
		Country:  req.Country,
		WeightKg: req.Weight,
	})
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, result)
}
