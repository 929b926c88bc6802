package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/service"
	"github.com/shopspring/decimal"
)

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func pathInt64(r *http.Request, key string) (int64, bool) {
	v, err := strconv.ParseInt(mux.Vars(r)[key], 10, 64)
	return v, err == nil
}

type adminShipmentSummary struct {
	ID           int64                 `json:"id"`
	PublicID     string                `json:"shipment_id_str"`
	SenderName   string                `json:"sender_name"`
	ReceiverName string                `json:"receiver_name"`
	ReceiverCity string                `json:"receiver_address_city"`
	ServiceType  string                `json:"service_type"`
	WeightKg     decimal.Decimal       `json:"package_weight_kg"`
	BookingDate  time.Time             `json:"booking_date"`
	Status       models.ShipmentStatus `json:"status"`
	Net          decimal.Decimal       `json:"price_without_tax"`
	Tax          decimal.Decimal       `json:"tax_amount_18_percent"`
	TotalWithTax decimal.Decimal       `json:"total_with_tax_18_percent"`
	UserType     string                `json:"user_type"`
}

// adminShipmentsHandler lists shipments for the back-office with search and
// pagination
func (s *Server) adminShipmentsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := s.adminService.ListShipments(
		r.Context(),
		r.URL.Query().Get("status"),
		r.URL.Query().Get("q"),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 10),
	)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	result := make([]adminShipmentSummary, 0, len(page.Items))
	for _, row := range page.Items {
		userType := "Customer"
		if row.UserRole == models.RoleEmployee {
			userType = "Employee"
		}

		result = append(result, adminShipmentSummary{
			ID:           row.ID,
			PublicID:     row.PublicID,
			SenderName:   row.SenderName,
			ReceiverName: row.ReceiverName,
			ReceiverCity: row.ReceiverCity,
			ServiceType:  row.ServiceType,
			WeightKg:     row.WeightKg,
			BookingDate:  row.BookingDate,
			Status:       row.Status,
			Net:          row.PriceWithoutTax,
			Tax:          row.TaxAmount,
			TotalWithTax: row.TotalWithTax,
			UserType:     userType,
		})
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"shipments":   result,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
		"totalCount":  page.TotalCount,
	})
}

type statusUpdateRequest struct {
	Status   models.ShipmentStatus `json:"status"`
	Location string                `json:"location"`
	Activity string                `json:"activity"`
}

// updateShipmentStatusHandler applies a status change to one shipment
func (s *Server) updateShipmentStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	shipment, err := s.shipmentService.UpdateStatus(
		r.Context(), mux.Vars(r)["shipmentID"], req.Status, req.Location, req.Activity)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Shipment status updated successfully",
		"updatedShipment": map[string]interface{}{
			"shipment_id_str":  shipment.PublicID,
			"status":           shipment.Status,
			"tracking_history": shipment.TrackingHistory,
		},
	})
}

type bulkStatusUpdateRequest struct {
	ShipmentIDs []int64               `json:"shipment_ids"`
	Status      models.ShipmentStatus `json:"status"`
}

// bulkStatusUpdateHandler applies a status change to many shipments at once
func (s *Server) bulkStatusUpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusUpdateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	count, err := s.shipmentService.BulkUpdateStatus(r.Context(), req.ShipmentIDs, req.Status)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Bulk status update applied successfully.",
		"updated_count": count,
	})
}

// adminPaymentsHandler lists every payment request for review
func (s *Server) adminPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	payments, err := s.paymentService.ListAllPayments(r.Context())
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	type paymentReview struct {
		ID        int64                `json:"id"`
		OrderID   string               `json:"order_id"`
		FirstName string               `json:"first_name"`
		LastName  string               `json:"last_name"`
		Amount    decimal.Decimal      `json:"amount"`
		UTR       string               `json:"utr"`
		Status    models.PaymentStatus `json:"status"`
		CreatedAt time.Time            `json:"created_at"`
	}

	result := make([]paymentReview, 0, len(payments))
	for _, p := range payments {
		result = append(result, paymentReview{
			ID:        p.ID,
			OrderID:   p.ShipmentPublicID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Amount:    p.Amount,
			UTR:       p.UTR,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
		})
	}

	s.respondWithJSON(w, http.StatusOK, result)
}

type reviewPaymentRequest struct {
	Status models.PaymentStatus `json:"status"`
}

// reviewPaymentHandler approves or rejects a pending payment
func (s *Server) reviewPaymentHandler(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathInt64(r, "paymentID")
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}

	var req reviewPaymentRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	if err := s.paymentService.ReviewPayment(r.Context(), paymentID, req.Status); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	message := "Payment approved successfully"
	if req.Status == models.PaymentStatusRejected {
		message = "Payment rejected successfully"
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}

type createBalanceCodeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// createBalanceCodeHandler mints a new balance top-up code
func (s *Server) createBalanceCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req createBalanceCodeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	code, err := s.ledgerService.CreateCode(r.Context(), req.Amount)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Balance code created successfully",
		"code":    code.Code,
		"amount":  code.Amount,
	})
}

// listBalanceCodesHandler lists balance codes with their redeemers
func (s *Server) listBalanceCodesHandler(w http.ResponseWriter, r *http.Request) {
	codes, err := s.ledgerService.ListCodes(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	type balanceCodeView struct {
		ID         int64           `json:"id"`
		Code       string          `json:"code"`
		Amount     decimal.Decimal `json:"amount"`
		IsRedeemed bool            `json:"is_redeemed"`
		CreatedAt  time.Time       `json:"created_at"`
		RedeemedAt *time.Time      `json:"redeemed_at"`
		RedeemedBy *string         `json:"redeemed_by"`
	}

	result := make([]balanceCodeView, 0, len(codes))
	for _, c := range codes {
		result = append(result, balanceCodeView{
			ID:         c.ID,
			Code:       c.Code,
			Amount:     c.Amount,
			IsRedeemed: c.IsRedeemed,
			CreatedAt:  c.CreatedAt,
			RedeemedAt: c.RedeemedAt,
			RedeemedBy: c.RedeemedBy,
		})
	}

	s.respondWithJSON(w, http.StatusOK, result)
}

// deleteBalanceCodeHandler removes an unredeemed balance code
func (s *Server) deleteBalanceCodeHandler(w http.ResponseWriter, r *http.Request) {
	codeID, ok := pathInt64(r, "codeID")
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid code ID")
		return
	}

	if err := s.ledgerService.DeleteCode(r.Context(), codeID); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Balance code deleted successfully",
	})
}

type userListView struct {
	ID            int64            `json:"id"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	Email         string           `json:"email"`
	CreatedAt     time.Time        `json:"created_at"`
	ShipmentCount int              `json:"shipment_count"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
}

func (s *Server) listUsersByRole(w http.ResponseWriter, r *http.Request, role models.Role) {
	page, err := s.adminService.ListUsersByRole(
		r.Context(),
		role,
		r.URL.Query().Get("q"),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 10),
	)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	result := make([]userListView, 0, len(page.Items))
	for _, row := range page.Items {
		view := userListView{
			ID:            row.ID,
			FirstName:     row.FirstName,
			LastName:      row.LastName,
			Email:         row.Email,
			CreatedAt:     row.CreatedAt,
			ShipmentCount: row.ShipmentCount,
		}
		if role == models.RoleEmployee {
			balance := row.Balance
			view.Balance = &balance
		}
		result = append(result, view)
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users":       result,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
		"totalCount":  page.TotalCount,
	})
}

// adminUsersHandler lists customer accounts
func (s *Server) adminUsersHandler(w http.ResponseWriter, r *http.Request) {
	s.listUsersByRole(w, r, models.RoleCustomer)
}

// adminEmployeesHandler lists employee accounts with balances
func (s *Server) adminEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	s.listUsersByRole(w, r, models.RoleEmployee)
}

// adminUserDetailsHandler returns one account with its shipments and payments
func (s *Server) adminUserDetailsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(r, "userID")
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	details, err := s.adminService.GetUserDetails(r.Context(), userID)
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	user := map[string]interface{}{
		"id":          details.User.ID,
		"first_name":  details.User.FirstName,
		"last_name":   details.User.LastName,
		"email":       details.User.Email,
		"created_at":  details.User.CreatedAt,
		"is_employee": details.User.IsEmployee(),
	}
	if details.User.IsEmployee() {
		user["balance"] = details.User.Balance
	}

	type userShipmentView struct {
		ID           int64                 `json:"id"`
		PublicID     string                `json:"shipment_id_str"`
		ReceiverName string                `json:"receiver_name"`
		BookingDate  time.Time             `json:"booking_date"`
		Status       models.ShipmentStatus `json:"status"`
		TotalWithTax decimal.Decimal       `json:"total_with_tax_18_percent"`
	}

	shipments := make([]userShipmentView, 0, len(details.Shipments))
	for _, sh := range details.Shipments {
		shipments = append(shipments, userShipmentView{
			ID:           sh.ID,
			PublicID:     sh.PublicID,
			ReceiverName: sh.ReceiverName,
			BookingDate:  sh.BookingDate,
			Status:       sh.Status,
			TotalWithTax: sh.TotalWithTax,
		})
	}

	payments := make([]paymentSummary, 0, len(details.Payments))
	for _, p := range details.Payments {
		payments = append(payments, paymentSummary{
			ID:               p.ID,
			ShipmentPublicID: p.ShipmentPublicID,
			Amount:           p.Amount,
			UTR:              p.UTR,
			Status:           p.Status,
			CreatedAt:        p.CreatedAt,
		})
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user":      user,
		"shipments": shipments,
		"payments":  payments,
	})
}

// createEmployeeHandler registers a new employee account
func (s *Server) createEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	employee, err := s.userService.CreateEmployee(r.Context(), service.AccountInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Employee created successfully",
		"user": map[string]interface{}{
			"id":        employee.ID,
			"email":     employee.Email,
			"firstName": employee.FirstName,
			"lastName":  employee.LastName,
		},
	})
}

type updateEmployeeRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

// updateEmployeeHandler applies a partial update to an employee account
func (s *Server) updateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathInt64(r, "employeeID")
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	var req updateEmployeeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	err := s.userService.UpdateEmployee(r.Context(), employeeID, service.EmployeeUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Employee updated successfully",
	})
}

// deleteEmployeeHandler removes an employee account
func (s *Server) deleteEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathInt64(r, "employeeID")
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	if err := s.userService.DeleteEmployee(r.Context(), employeeID); err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Employee deleted successfully",
	})
}

// webAnalyticsHandler returns the back-office dashboard summary
func (s *Server) webAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.adminService.GetAnalytics(r.Context())
	if err != nil {
		s.respondWithAppError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, analytics)
}
