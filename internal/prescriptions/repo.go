package prescriptions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/pkg/db/models"
)

// Repository defines persistence operations for prescription uploads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, prescription *models.Prescription) (*models.Prescription, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Prescription, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Prescription, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a prescriptions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, prescription *models.Prescription) (*models.Prescription, error) {
	if err := r.db.WithContext(ctx).Create(prescription).Error; err != nil {
		return nil, err
	}
	return prescription, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Prescription, error) {
	var prescription models.Prescription
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&prescription).Error
	if err != nil {
		return nil, err
	}
	return &prescription, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&prescriptions).Error
	if err != nil {
		return nil, err
	}
	return prescriptions, nil
}
