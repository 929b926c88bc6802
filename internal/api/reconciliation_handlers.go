package api

import (
	"net/http"

	"github.com/logistix/courier-api/internal/service"
	"github.com/shopspring/decimal"
)

type createInvoiceRequest struct {
	Transaction *service.BankTransaction `json:"transaction"`
	Order       *struct {
		Sender   *service.InvoiceParty `json:"sender"`
		Receiver *service.InvoiceParty `json:"receiver"`
	} `json:"order"`
}

// createInvoiceFromPaymentHandler mints a paid shipment from a bank
// transaction matched during reconciliation
func (s *Server) createInvoiceFromPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	if req.Transaction == nil || req.Order == nil {
		s.respondWithError(w, http.StatusBadRequest, "Missing 'transaction' or 'order' data")
		return
	}
	if req.Order.Sender == nil || req.Order.Receiver == nil {
		s.respondWithError(w, http.StatusBadRequest,
			"Missing 'sender' or 'receiver' data within the 'order' object")
		return
	}

	shipment, err := s.reconciliationService.CreateInvoiceFromPayment(r.Context(), service.InvoiceInput{
		Transaction: *req.Transaction,
		Sender:      *req.Order.Sender,
		Receiver:    *req.Order.Receiver,
	})
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":         "Paid invoice and shipment created successfully.",
		"shipment_id_str": shipment.PublicID,
	})
}

type findDestinationsRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// findDestinationsHandler suggests a plausible shipment for a bank amount
func (s *Server) findDestinationsHandler(w http.ResponseWriter, r *http.Request) {
	var req findDestinationsRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	suggestion, err := s.reconciliationService.FindDestinations(r.Context(), req.Amount)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, suggestion)
}
