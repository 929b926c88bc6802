package service

import (
	"context"
	"errors"

	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/logistix/courier-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// AdminService serves the admin back-office listings and summaries
type AdminService struct {
	users     *repository.UserRepository
	shipments *repository.ShipmentRepository
	payments  *repository.PaymentRepository
	logger    logger.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(
	users *repository.UserRepository,
	shipments *repository.ShipmentRepository,
	payments *repository.PaymentRepository,
	logger logger.Logger,
) *AdminService {
	return &AdminService{
		users:     users,
		shipments: shipments,
		payments:  payments,
		logger:    logger,
	}
}

// Page wraps a listing with pagination totals
type Page[T any] struct {
	Items       []T
	TotalPages  int
	CurrentPage int
	TotalCount  int
}

func totalPages(count, limit int) int {
	if limit <= 0 || count == 0 {
		return 1
	}
	pages := (count + limit - 1) / limit
	if pages == 0 {
		pages = 1
	}
	return pages
}

// ListShipments retrieves the admin shipment listing with search and paging
func (s *AdminService) ListShipments(ctx context.Context, status, query string, page, limit int) (*Page[*repository.AdminShipmentRow], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	rows, count, err := s.shipments.ListAdmin(ctx, repository.AdminShipmentFilter{
		Status: status,
		Query:  query,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	return &Page[*repository.AdminShipmentRow]{
		Items:       rows,
		TotalPages:  totalPages(count, limit),
		CurrentPage: page,
		TotalCount:  count,
	}, nil
}

// ListUsersByRole retrieves customers or employees with search and paging
func (s *AdminService) ListUsersByRole(ctx context.Context, role models.Role, query string, page, limit int) (*Page[*repository.UserListRow], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	rows, count, err := s.users.ListByRole(ctx, role, query, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &Page[*repository.UserListRow]{
		Items:       rows,
		TotalPages:  totalPages(count, limit),
		CurrentPage: page,
		TotalCount:  count,
	}, nil
}

// UserDetails aggregates one account with its shipments and payments
type UserDetails struct {
	User      *models.User
	Shipments []*models.Shipment
	Payments  []*repository.PaymentListRow
}

// GetUserDetails retrieves the admin drill-down view of one account.
// Admin accounts are not viewable.
func (s *AdminService) GetUserDetails(ctx context.Context, userID int64) (*UserDetails, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		return nil, err
	}

	if user.IsAdmin() {
		return nil, apperrors.NewForbiddenError("Cannot access admin user details")
	}

	shipments, err := s.shipments.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserDetails{
		User:      user,
		Shipments: shipments,
		Payments:  payments,
	}, nil
}

// Analytics is the back-office dashboard summary
type Analytics struct {
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AvgRevenue   decimal.Decimal `json:"avg_revenue"`
	TotalUsers   int             `json:"total_users"`
}

// GetAnalytics computes the dashboard summary across all shipments
func (s *AdminService) GetAnalytics(ctx context.Context) (*Analytics, error) {
	orders, revenue, err := s.shipments.GlobalStats(ctx)
	if err != nil {
		return nil, err
	}

	customers, err := s.users.CountByRole(ctx, models.RoleCustomer)
	if err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if orders > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(orders))).Round(2)
	}

	return &Analytics{
		TotalOrders:  orders,
		TotalRevenue: revenue,
		AvgRevenue:   avg,
		TotalUsers:   customers,
	}, nil
}
