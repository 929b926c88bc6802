package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/logistix/courier-api/pkg/logger"
)

// minNicknameLength is the minimum accepted address nickname length
const minNicknameLength = 2

// AddressService manages a user's saved address book
type AddressService struct {
	addresses *repository.AddressRepository
	logger    logger.Logger
}

// NewAddressService creates a new AddressService
func NewAddressService(addresses *repository.AddressRepository, logger logger.Logger) *AddressService {
	return &AddressService{
		addresses: addresses,
		logger:    logger,
	}
}

// AddressInput is a saved-address create or update payload
type AddressInput struct {
	Type     models.AddressType
	Nickname string
	Name     string
	Street   string
	City     string
	State    string
	Pincode  string
	Country  string
	Phone    string
}

// Validate checks the saved-address payload field by field
func (in *AddressInput) Validate() error {
	if !models.IsValidAddressType(in.Type) {
		return apperrors.NewValidationError("address_type must be 'sender' or 'receiver'")
	}
	if len(in.Nickname) < minNicknameLength {
		return apperrors.NewValidationError("Nickname must be at least 2 characters.")
	}

	required := map[string]string{
		"name":            in.Name,
		"address_street":  in.Street,
		"address_city":    in.City,
		"address_state":   in.State,
		"address_pincode": in.Pincode,
		"phone":           in.Phone,
	}
	for field, value := range required {
		if value == "" {
			return apperrors.NewValidationError(fmt.Sprintf("%s is a required field", field))
		}
	}

	return nil
}

// Create saves a new address book entry for the user
func (s *AddressService) Create(ctx context.Context, userID int64, input AddressInput) (*models.SavedAddress, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	address := &models.SavedAddress{
		UserID:   userID,
		Type:     input.Type,
		Nickname: input.Nickname,
		Name:     input.Name,
		Street:   input.Street,
		City:     input.City,
		State:    input.State,
		Pincode:  input.Pincode,
		Country:  input.Country,
		Phone:    input.Phone,
	}

	if err := s.addresses.Create(ctx, address); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflictError(fmt.Sprintf(
				"An address with the nickname '%s' already exists for this address type.", input.Nickname))
		}
		return nil, err
	}

	return address, nil
}

// List retrieves the user's saved addresses, optionally one type only
func (s *AddressService) List(ctx context.Context, userID int64, addressType models.AddressType) ([]*models.SavedAddress, error) {
	if addressType != "" && !models.IsValidAddressType(addressType) {
		return nil, apperrors.NewValidationError("address_type must be 'sender' or 'receiver'")
	}

	return s.addresses.ListByUser(ctx, userID, addressType)
}

// Update rewrites one of the user's saved addresses
func (s *AddressService) Update(ctx context.Context, userID, addressID int64, input AddressInput) (*models.SavedAddress, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	address, err := s.addresses.GetByIDAndUser(ctx, addressID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Address not found")
		}
		return nil, err
	}

	address.Type = input.Type
	address.Nickname = input.Nickname
	address.Name = input.Name
	address.Street = input.Street
	address.City = input.City
	address.State = input.State
	address.Pincode = input.Pincode
	address.Country = input.Country
	address.Phone = input.Phone

	if err := s.addresses.Update(ctx, address); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflictError(fmt.Sprintf(
				"An address with the nickname '%s' already exists for this address type.", input.Nickname))
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Address not found")
		}
		return nil, err
	}

	return address, nil
}

// Delete removes one of the user's saved addresses
func (s *AddressService) Delete(ctx context.Context, userID, addressID int64) error {
	err := s.addresses.Delete(ctx, addressID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFoundError("Address not found")
	}
	return err
}
