package service

import (
	"context"
	"errors"
	"net/mail"

	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/logistix/courier-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength is the minimum accepted password length
const minPasswordLength = 6

// UserService handles accounts: registration, login and identity checks
type UserService struct {
	users  *repository.UserRepository
	logger logger.Logger
}

// NewUserService creates a new UserService
func NewUserService(users *repository.UserRepository, logger logger.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// AccountInput is a registration payload
type AccountInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Validate checks the registration payload field by field
func (in *AccountInput) Validate() error {
	if in.FirstName == "" {
		return apperrors.NewValidationError("First name is required.")
	}
	if in.LastName == "" {
		return apperrors.NewValidationError("Last name is required.")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperrors.NewValidationError("A valid email is required.")
	}
	if len(in.Password) < minPasswordLength {
		return apperrors.NewValidationError("Password must be at least 6 characters.")
	}
	return nil
}

// Signup registers a new customer account
func (s *UserService) Signup(ctx context.Context, input AccountInput) (*models.User, error) {
	return s.createAccount(ctx, input, models.RoleCustomer)
}

// CreateEmployee registers a new employee account
func (s *UserService) CreateEmployee(ctx context.Context, input AccountInput) (*models.User, error) {
	return s.createAccount(ctx, input, models.RoleEmployee)
}

func (s *UserService) createAccount(ctx context.Context, input AccountInput, role models.Role) (*models.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(input.FirstName, input.LastName, input.Email, string(hash), role)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflictError("Email already exists")
		}
		return nil, err
	}

	s.logger.Info("User created", "email", user.Email, "role", user.Role)
	return user, nil
}

// Login verifies credentials and returns the account
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid email or password")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	return user, nil
}

// Authenticate resolves the account behind an identity email header
func (s *UserService) Authenticate(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, apperrors.NewUnauthorizedError("Authentication required: Missing user email header")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		return nil, err
	}

	return user, nil
}

// EmployeeUpdateInput is a partial employee profile update
type EmployeeUpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

// UpdateEmployee applies a partial update to an employee account
func (s *UserService) UpdateEmployee(ctx context.Context, employeeID int64, input EmployeeUpdateInput) error {
	user, err := s.users.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundError("Employee not found")
		}
		return err
	}
	if !user.IsEmployee() {
		return apperrors.NewValidationError("This is not an employee account")
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil && *input.Email != "" {
		user.Email = *input.Email
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflictError("Email already in use")
		}
		return err
	}

	return nil
}

// DeleteEmployee removes an employee account. Their shipments keep the
// denormalized booking email, so history stays readable.
func (s *UserService) DeleteEmployee(ctx context.Context, employeeID int64) error {
	user, err := s.users.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundError("Employee not found")
		}
		return err
	}
	if !user.IsEmployee() {
		return apperrors.NewValidationError("This is not an employee account")
	}

	return s.users.Delete(ctx, employeeID)
}
