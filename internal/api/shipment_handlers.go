package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/internal/service"
	"github.com/shopspring/decimal"
)

type bookingRequest struct {
	UserEmail string `json:"user_email"`

	SenderName    string `json:"sender_name"`
	SenderStreet  string `json:"sender_address_street"`
	SenderCity    string `json:"sender_address_city"`
	SenderState   string `json:"sender_address_state"`
	SenderPincode string `json:"sender_address_pincode"`
	SenderCountry string `json:"sender_address_country"`
	SenderPhone   string `json:"sender_phone"`

	ReceiverName    string `json:"receiver_name"`
	ReceiverStreet  string `json:"receiver_address_street"`
	ReceiverCity    string `json:"receiver_address_city"`
	ReceiverState   string `json:"receiver_address_state"`
	ReceiverPincode string `json:"receiver_address_pincode"`
	ReceiverCountry string `json:"receiver_address_country"`
	ReceiverPhone   string `json:"receiver_phone"`

	WeightKg float64 `json:"package_weight_kg"`
	LengthCm float64 `json:"package_length_cm"`
	WidthCm  float64 `json:"package_width_cm"`
	HeightCm float64 `json:"package_height_cm"`

	Goods       models.GoodsDetails `json:"goods_details"`
	PickupDate  string              `json:"pickup_date"`
	ServiceType string              `json:"service_type"`

	FinalTotalWithTax decimal.Decimal `json:"final_total_price_with_tax"`
}

func (req *bookingRequest) toInput() (service.BookingInput, error) {
	var pickup time.Time
	if req.PickupDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PickupDate)
		if err != nil {
			return service.BookingInput{}, fmt.Errorf("invalid pickup_date: %w", err)
		}
		pickup = parsed
	}

	return service.BookingInput{
		UserEmail: req.UserEmail,
		Sender: models.Address{
			Name:    req.SenderName,
			Street:  req.SenderStreet,
			City:    req.SenderCity,
			State:   req.SenderState,
			Pincode: req.SenderPincode,
			Country: req.SenderCountry,
			Phone:   req.SenderPhone,
		},
		Receiver: models.Address{
			Name:    req.ReceiverName,
			Street:  req.ReceiverStreet,
			City:    req.ReceiverCity,
			State:   req.ReceiverState,
			Pincode: req.ReceiverPincode,
			Country: req.ReceiverCountry,
			Phone:   req.ReceiverPhone,
		},
		WeightKg:          req.WeightKg,
		LengthCm:          req.LengthCm,
		WidthCm:           req.WidthCm,
		HeightCm:          req.HeightCm,
		Goods:             req.Goods,
		PickupDate:        pickup,
		ServiceType:       req.ServiceType,
		FinalTotalWithTax: req.FinalTotalWithTax,
	}, nil
}

// createDomesticShipmentHandler books a domestic shipment
func (s *Server) createDomesticShipmentHandler(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	// Domestic shipments always terminate in India
	req.ReceiverCountry = "India"
	if req.SenderCountry == "" {
		req.SenderCountry = "India"
	}

	s.createShipment(w, r, req)
}

// createInternationalShipmentHandler books an international shipment
func (s *Server) createInternationalShipmentHandler(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	if req.SenderCountry == "" {
		req.SenderCountry = "India"
	}

	s.createShipment(w, r, req)
}

func (s *Server) createShipment(w http.ResponseWriter, r *http.Request, req bookingRequest) {
	input, err := req.toInput()
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "pickup_date must be YYYY-MM-DD")
		return
	}

	shipment, err := s.shipmentService.CreateShipment(r.Context(), input)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	message := "Shipment initiated successfully. Please complete payment."
	if shipment.Status == models.StatusBooked {
		message = "Shipment initiated successfully."
	}

	s.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": message,
		"data":    shipment,
	})
}

type shipmentSummary struct {
	ID           int64                 `json:"id"`
	PublicID     string                `json:"shipment_id_str"`
	SenderName   string                `json:"sender_name"`
	ReceiverName string                `json:"receiver_name"`
	ServiceType  string                `json:"service_type"`
	BookingDate  time.Time             `json:"booking_date"`
	Status       models.ShipmentStatus `json:"status"`
	TotalWithTax decimal.Decimal       `json:"total_with_tax_18_percent"`
}

// getUserShipmentsHandler lists a user's shipments with optional filters
func (s *Server) getUserShipmentsHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	var filter repository.UserShipmentFilter
	if raw := r.URL.Query().Get("from_date"); raw != "" {
		from, err := parseDateParam(raw)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, "Invalid from_date format. Use ISO format.")
			return
		}
		filter.FromDate = &from
	}
	if raw := r.URL.Query().Get("to_date"); raw != "" {
		to, err := parseDateParam(raw)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, "Invalid to_date format. Use ISO format.")
			return
		}
		filter.ToDate = &to
	}
	if status := r.URL.Query().Get("status"); status != "" && status != "all" {
		filter.Status = status
	}

	shipments, err := s.shipmentService.ListUserShipments(r.Context(), email, filter)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	result := make([]shipmentSummary, 0, len(shipments))
	for _, sh := range shipments {
		result = append(result, shipmentSummary{
			ID:           sh.ID,
			PublicID:     sh.PublicID,
			SenderName:   sh.SenderName,
			ReceiverName: sh.ReceiverName,
			ServiceType:  sh.ServiceType,
			BookingDate:  sh.BookingDate,
			Status:       sh.Status,
			TotalWithTax: sh.TotalWithTax,
		})
	}

	s.respondWithJSON(w, http.StatusOK, result)
}

func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

type shipmentDetailResponse struct {
	*models.Shipment
	PaymentStatus *models.PaymentStatus `json:"payment_status"`
}

// getShipmentDetailHandler returns a shipment by public ID with its latest
// payment status
func (s *Server) getShipmentDetailHandler(w http.ResponseWriter, r *http.Request) {
	publicID := mux.Vars(r)["shipmentID"]

	detail, err := s.shipmentService.GetShipmentDetail(r.Context(), publicID)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, shipmentDetailResponse{
		Shipment:      detail.Shipment,
		PaymentStatus: detail.PaymentStatus,
	})
}

type submitPaymentRequest struct {
	ShipmentPublicID string          `json:"shipment_id_str"`
	UTR              string          `json:"utr"`
	Amount           decimal.Decimal `json:"amount"`
}

// submitPaymentHandler records a payment reference for review
func (s *Server) submitPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req submitPaymentRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	payment, err := s.paymentService.SubmitPayment(r.Context(), service.SubmitPaymentInput{
		ShipmentPublicID: req.ShipmentPublicID,
		UTR:              req.UTR,
		Amount:           req.Amount,
	})
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Payment submitted for review successfully.",
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
}

type paymentSummary struct {
	ID               int64                `json:"id"`
	ShipmentPublicID string               `json:"shipment_id_str"`
	Amount           decimal.Decimal      `json:"amount"`
	UTR              string               `json:"utr"`
	Status           models.PaymentStatus `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
}

// getUserPaymentsHandler lists a user's payment submissions
func (s *Server) getUserPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		s.respondWithError(w, http.StatusBadRequest, "Missing email parameter")
		return
	}

	payments, err := s.paymentService.ListUserPayments(r.Context(), email)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	result := make([]paymentSummary, 0, len(payments))
	for _, p := range payments {
		result = append(result, paymentSummary{
			ID:               p.ID,
			ShipmentPublicID: p.ShipmentPublicID,
			Amount:           p.Amount,
			UTR:              p.UTR,
			Status:           p.Status,
			CreatedAt:        p.CreatedAt,
		})
	}

	s.respondWithJSON(w, http.StatusOK, result)
}

type redeemCodeRequest struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}

// redeemBalanceCodeHandler credits an employee balance with a top-up code
func (s *Server) redeemBalanceCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req redeemCodeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	result, err := s.ledgerService.Redeem(r.Context(), req.Code, req.Email)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     fmt.Sprintf("Successfully redeemed code. Amount added: ₹%s", result.Amount),
		"new_balance": result.NewBalance,
	})
}

// dayEndStatsHandler returns an employee's day-end booking summary
func (s *Server) dayEndStatsHandler(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get(identityHeader)
	if email == "" {
		s.respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	stats, err := s.shipmentService.GetDayEndStats(r.Context(), email)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	type dayEndShipment struct {
		ID           int64                 `json:"id"`
		PublicID     string                `json:"shipment_id_str"`
		ReceiverName string                `json:"receiver_name"`
		Status       models.ShipmentStatus `json:"status"`
		TotalWithTax decimal.Decimal       `json:"total_with_tax_18_percent"`
	}

	shipments := make([]dayEndShipment, 0, len(stats.AllShipments))
	for _, sh := range stats.AllShipments {
		shipments = append(shipments, dayEndShipment{
			ID:           sh.ID,
			PublicID:     sh.PublicID,
			ReceiverName: sh.ReceiverName,
			Status:       sh.Status,
			TotalWithTax: sh.TotalWithTax,
		})
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"current_balance":       stats.CurrentBalance,
		"total_shipments_count": stats.TotalShipmentsCount,
		"total_shipments_value": stats.TotalShipmentsValue,
		"all_shipments":         shipments,
	})
}
