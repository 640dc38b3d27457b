package payments

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/internal/orders"
	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
	"github.com/medbasket/medbasket-backend/pkg/pagination"
)

type memoryRepo struct {
	nextOrderID int64
	orders      map[int64]*models.Order
	pending     map[int64]*models.PendingOrder
	items       []*models.OrderItem
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextOrderID: 1,
		orders:      map[int64]*models.Order{},
		pending:     map[int64]*models.PendingOrder{},
	}
}

func (m *memoryRepo) WithTx(tx *gorm.DB) orders.Repository { return m }

func (m *memoryRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = m.nextOrderID
	m.nextOrderID++
	order.CreatedAt = time.Now()
	copied := *order
	m.orders[order.ID] = &copied
	return order, nil
}

func (m *memoryRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	for i := range items {
		copied := items[i]
		m.items = append(m.items, &copied)
	}
	return nil
}

func (m *memoryRepo) UpdateOrder(ctx context.Context, orderID int64, updates map[string]any) error {
	order, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["transaction_number"]; ok {
		order.TransactionNumber = v.(string)
	}
	return nil
}

func (m *memoryRepo) FindOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	if order, ok := m.orders[orderID]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepo) ListOrdersByCustomer(ctx context.Context, customerID int64, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	return nil, nil
}

func (m *memoryRepo) CountConfirmedByGatewayOrder(ctx context.Context, gatewayOrderID string) (int64, error) {
	var count int64
	for _, order := range m.orders {
		if order.GatewayOrderID != nil && *order.GatewayOrderID == gatewayOrderID {
			count++
		}
	}
	return count, nil
}

func (m *memoryRepo) CreatePendingOrder(ctx context.Context, pending *models.PendingOrder) (*models.PendingOrder, error) {
	copied := *pending
	m.pending[pending.ID] = &copied
	return pending, nil
}

func (m *memoryRepo) FindPendingByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PendingOrder, error) {
	for _, pending := range m.pending {
		if pending.GatewayOrderID == gatewayOrderID {
			copied := *pending
			copied.Items = nil
			for _, item := range m.items {
				if item.PendingOrderID != nil && *item.PendingOrderID == pending.ID {
					copied.Items = append(copied.Items, *item)
				}
			}
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepo) ClaimPendingOrder(ctx context.Context, gatewayOrderID string) (int64, error) {
	for _, pending := range m.pending {
		if pending.GatewayOrderID == gatewayOrderID && pending.Status == enums.PendingOrderStatusPending {
			pending.Status = enums.PendingOrderStatusProcessing
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memoryRepo) RepointItemsToOrder(ctx context.Context, pendingOrderID, orderID int64) error {
	for _, item := range m.items {
		if item.PendingOrderID != nil && *item.PendingOrderID == pendingOrderID {
			item.PendingOrderID = nil
			id := orderID
			item.OrderID = &id
		}
	}
	return nil
}

func (m *memoryRepo) DeletePendingOrder(ctx context.Context, pendingOrderID int64) error {
	delete(m.pending, pendingOrderID)
	return nil
}

func (m *memoryRepo) MarkPendingAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubVerifier struct {
	valid bool
}

func (s stubVerifier) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return s.valid
}

type stubNotifier struct {
	placed []int64
}

func (s *stubNotifier) OrderPlaced(ctx context.Context, order *models.Order, email *string) error {
	s.placed = append(s.placed, order.ID)
	return nil
}

type stubCustomerReader struct{}

func (stubCustomerReader) FindByID(ctx context.Context, id int64) (*models.Customer, error) {
	return &models.Customer{ID: id, Phone: "9876543210"}, nil
}

func seedPending(repo *memoryRepo, gatewayOrderID string) *models.PendingOrder {
	pendingID := int64(1)
	pending := &models.PendingOrder{
		ID:             pendingID,
		CustomerID:     7,
		GatewayOrderID: gatewayOrderID,
		Status:         enums.PendingOrderStatusPending,
		PatientName:    "Asha",
		PatientPhone:   "9876543210",
		ShipStreet:     "12 MG Road",
		ShipPincode:    "560001",
		Subtotal:       decimal.NewFromInt(1000),
		ShippingCharge: decimal.NewFromInt(50),
		Amount:         decimal.NewFromInt(1050),
		CreatedAt:      time.Now(),
	}
	copied := *pending
	repo.pending[pendingID] = &copied

	repo.items = append(repo.items, &models.OrderItem{
		ID:             1,
		PendingOrderID: &pendingID,
		ProductID:      1,
		ProductName:    "Paracetamol 500mg",
		UnitPrice:      decimal.NewFromInt(1000),
		Quantity:       1,
		LineTotal:      decimal.NewFromInt(1000),
	})
	return pending
}

type paymentsFixture struct {
	repo     *memoryRepo
	notifier *stubNotifier
	svc      Service
}

func newPaymentsFixture(t *testing.T, validSignature bool) *paymentsFixture {
	t.Helper()

	f := &paymentsFixture{
		repo:     newMemoryRepo(),
		notifier: &stubNotifier{},
	}
	svc, err := NewService(ServiceParams{
		Repo:      f.repo,
		Tx:        stubTxRunner{},
		Verifier:  stubVerifier{valid: validSignature},
		Notifier:  f.notifier,
		Customers: stubCustomerReader{},
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func validVerifyRequest() VerifyRequest {
	return VerifyRequest{
		RazorpayPaymentID: "pay_abc123",
		RazorpayOrderID:   "order_xyz789",
		RazorpaySignature: "deadbeef",
	}
}

func TestVerifyRefusesWhenOrderAlreadyConfirmed(t *testing.T) {
	f := newPaymentsFixture(t, true)
	seedPending(f.repo, "order_xyz789")

	gatewayOrderID := "order_xyz789"
	f.repo.orders[99] = &models.Order{
		ID:             99,
		CustomerID:     7,
		Status:         enums.OrderStatusConfirmed,
		GatewayOrderID: &gatewayOrderID,
	}

	_, err := f.svc.Verify(context.Background(), validVerifyRequest())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	require.Len(t, f.repo.orders, 1, "no second confirmed order created")
	assert.Empty(t, f.notifier.placed)
}

func TestVerifyPromotesPendingOrder(t *testing.T) {
	f := newPaymentsFixture(t, true)
	seedPending(f.repo, "order_xyz789")

	result, err := f.svc.Verify(context.Background(), validVerifyRequest())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, RedirectSuccess, result.Redirect)

	order := f.repo.orders[result.OrderID]
	require.NotNil(t, order, "exactly one confirmed order exists")
	assert.Equal(t, enums.OrderStatusConfirmed, order.Status)
	assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, enums.PaymentOptionOnline, order.PaymentOption)
	assert.Equal(t, "PH-1", order.TransactionNumber)
	require.NotNil(t, order.GatewayPaymentID)
	assert.Equal(t, "pay_abc123", *order.GatewayPaymentID)

	assert.Empty(t, f.repo.pending, "pending row deleted after promotion")

	require.Len(t, f.repo.items, 1)
	assert.Nil(t, f.repo.items[0].PendingOrderID)
	assert.EqualValues(t, result.OrderID, *f.repo.items[0].OrderID)

	assert.Contains(t, f.notifier.placed, result.OrderID)
}

func TestVerifyMissingFields(t *testing.T) {
	f := newPaymentsFixture(t, true)

	for _, mutate := range []func(*VerifyRequest){
		func(r *VerifyRequest) { r.RazorpayPaymentID = "" },
		func(r *VerifyRequest) { r.RazorpayOrderID = "" },
		func(r *VerifyRequest) { r.RazorpaySignature = "" },
	} {
		req := validVerifyRequest()
		mutate(&req)

		_, err := f.svc.Verify(context.Background(), req)
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	}
}

func TestVerifyInvalidSignatureKeepsPendingOrder(t *testing.T) {
	f := newPaymentsFixture(t, false)
	seedPending(f.repo, "order_xyz789")

	_, err := f.svc.Verify(context.Background(), validVerifyRequest())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePaymentVerification))

	assert.Empty(t, f.repo.orders, "no confirmed order on signature mismatch")
	require.Len(t, f.repo.pending, 1, "pending order kept for investigation")
	assert.Equal(t, enums.PendingOrderStatusPending, f.repo.pending[1].Status)
}

func TestVerifyTwiceIsIdempotent(t *testing.T) {
	f := newPaymentsFixture(t, true)
	seedPending(f.repo, "order_xyz789")

	first, err := f.svc.Verify(context.Background(), validVerifyRequest())
	require.NoError(t, err)

	_, err = f.svc.Verify(context.Background(), validVerifyRequest())
	require.Error(t, err, "second verification must not promote again")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	assert.Len(t, f.repo.orders, 1, "still exactly one confirmed order")
	_, ok := f.repo.orders[first.OrderID]
	assert.True(t, ok)
}

func TestVerifyUnknownGatewayOrder(t *testing.T) {
	f := newPaymentsFixture(t, true)

	_, err := f.svc.Verify(context.Background(), validVerifyRequest())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
