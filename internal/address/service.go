package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/pkg/db/models"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
)

// CreateInput carries the fields a customer submits when saving an address.
type CreateInput struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city"`
	Pincode string `json:"pincode" validate:"required"`
	HouseNo string `json:"house_no"`
	Type    string `json:"type"`
}

// UpdateInput carries the optional fields for an address edit.
type UpdateInput struct {
	Street  *string `json:"street"`
	City    *string `json:"city"`
	Pincode *string `json:"pincode"`
	HouseNo *string `json:"house_no"`
	Type    *string `json:"type"`
}

// Service manages a customer's saved delivery addresses.
type Service interface {
	Create(ctx context.Context, customerID int64, input CreateInput) (*models.Address, error)
	List(ctx context.Context, customerID int64) ([]models.Address, error)
	Get(ctx context.Context, customerID, addressID int64) (*models.Address, error)
	Update(ctx context.Context, customerID, addressID int64, input UpdateInput) (*models.Address, error)
	Delete(ctx context.Context, customerID, addressID int64) error
}

type service struct {
	repo Repository
}

// NewService builds an address service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, customerID int64, input CreateInput) (*models.Address, error) {
	if strings.TrimSpace(input.Street) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "street is required")
	}
	if strings.TrimSpace(input.Pincode) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pincode is required")
	}

	addrType := input.Type
	if addrType == "" {
		addrType = "home"
	}

	addr := &models.Address{
		CustomerID: customerID,
		Street:     strings.TrimSpace(input.Street),
		City:       strings.TrimSpace(input.City),
		Pincode:    strings.TrimSpace(input.Pincode),
		HouseNo:    strings.TrimSpace(input.HouseNo),
		Type:       addrType,
	}
	created, err := s.repo.Create(ctx, addr)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, customerID int64) ([]models.Address, error) {
	addrs, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	return addrs, nil
}

// Get loads an address and enforces ownership.
func (s *service) Get(ctx context.Context, customerID, addressID int64) (*models.Address, error) {
	addr, err := s.repo.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find address")
	}
	if addr.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return addr, nil
}

func (s *service) Update(ctx context.Context, customerID, addressID int64, input UpdateInput) (*models.Address, error) {
	if _, err := s.Get(ctx, customerID, addressID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Street != nil {
		if strings.TrimSpace(*input.Street) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "street cannot be empty")
		}
		updates["street"] = strings.TrimSpace(*input.Street)
	}
	if input.City != nil {
		updates["city"] = strings.TrimSpace(*input.City)
	}
	if input.Pincode != nil {
		if strings.TrimSpace(*input.Pincode) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pincode cannot be empty")
		}
		updates["pincode"] = strings.TrimSpace(*input.Pincode)
	}
	if input.HouseNo != nil {
		updates["house_no"] = strings.TrimSpace(*input.HouseNo)
	}
	if input.Type != nil {
		updates["type"] = *input.Type
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, addressID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update address")
		}
	}
	return s.Get(ctx, customerID, addressID)
}

func (s *service) Delete(ctx context.Context, customerID, addressID int64) error {
	if _, err := s.Get(ctx, customerID, addressID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
	}
	return nil
}
