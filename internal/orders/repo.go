package orders

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	"github.com/medbasket/medbasket-backend/pkg/pagination"
)

// Repository defines persistence operations for orders, their line items and
// the pending rows staged for online payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	UpdateOrder(ctx context.Context, orderID int64, updates map[string]any) error
	FindOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64, limit int, cursor *pagination.Cursor) ([]models.Order, error)
	CountConfirmedByGatewayOrder(ctx context.Context, gatewayOrderID string) (int64, error)

	CreatePendingOrder(ctx context.Context, pending *models.PendingOrder) (*models.PendingOrder, error)
	FindPendingByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PendingOrder, error)
	ClaimPendingOrder(ctx context.Context, gatewayOrderID string) (int64, error)
	RepointItemsToOrder(ctx context.Context, pendingOrderID, orderID int64) error
	DeletePendingOrder(ctx context.Context, pendingOrderID int64) error
	MarkPendingAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) UpdateOrder(ctx context.Context, orderID int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) FindOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrdersByCustomer(ctx context.Context, customerID int64, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) CountConfirmedByGatewayOrder(ctx context.Context, gatewayOrderID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Count(&count).Error
	return count, err
}

func (r *repository) CreatePendingOrder(ctx context.Context, pending *models.PendingOrder) (*models.PendingOrder, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Create(pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *repository) FindPendingByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PendingOrder, error) {
	var pending models.PendingOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&pending).Error
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

// ClaimPendingOrder flips the row from pending to processing. The status
// guard makes promotion idempotent: a concurrent second verification sees
// zero rows affected and backs off.
func (r *repository) ClaimPendingOrder(ctx context.Context, gatewayOrderID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PendingOrder{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, enums.PendingOrderStatusPending).
		Update("status", enums.PendingOrderStatusProcessing)
	return result.RowsAffected, result.Error
}

func (r *repository) RepointItemsToOrder(ctx context.Context, pendingOrderID, orderID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("pending_order_id = ?", pendingOrderID).
		Updates(map[string]any{
			"order_id":         orderID,
			"pending_order_id": nil,
		}).Error
}

func (r *repository) DeletePendingOrder(ctx context.Context, pendingOrderID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", pendingOrderID).
		Delete(&models.PendingOrder{}).Error
}

func (r *repository) MarkPendingAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PendingOrder{}).
		Where("status = ? AND created_at < ?", enums.PendingOrderStatusPending, cutoff).
		Update("status", enums.PendingOrderStatusAbandoned)
	return result.RowsAffected, result.Error
}
