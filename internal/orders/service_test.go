package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/internal/coupons"
	"github.com/medbasket/medbasket-backend/internal/settings"
	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
	"github.com/medbasket/medbasket-backend/pkg/pagination"
	"github.com/medbasket/medbasket-backend/pkg/razorpay"
)

type stubOrdersRepo struct {
	nextOrderID   int64
	nextPendingID int64
	nextItemID    int64
	orders        map[int64]*models.Order
	pending       map[int64]*models.PendingOrder
	items         []*models.OrderItem
	failItems     bool
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		nextOrderID:   1,
		nextPendingID: 1,
		nextItemID:    1,
		orders:        map[int64]*models.Order{},
		pending:       map[int64]*models.PendingOrder{},
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = s.nextOrderID
	s.nextOrderID++
	order.CreatedAt = time.Now()
	copied := *order
	s.orders[order.ID] = &copied
	return order, nil
}

func (s *stubOrdersRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if s.failItems {
		return errors.New("items insert failed")
	}
	for i := range items {
		items[i].ID = s.nextItemID
		s.nextItemID++
		copied := items[i]
		s.items = append(s.items, &copied)
	}
	return nil
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID int64, updates map[string]any) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["transaction_number"]; ok {
		order.TransactionNumber = v.(string)
	}
	return nil
}

func (s *stubOrdersRepo) FindOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.Items = nil
	for _, item := range s.items {
		if item.OrderID != nil && *item.OrderID == orderID {
			copied.Items = append(copied.Items, *item)
		}
	}
	return &copied, nil
}

func (s *stubOrdersRepo) ListOrdersByCustomer(ctx context.Context, customerID int64, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	var out []models.Order
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) CountConfirmedByGatewayOrder(ctx context.Context, gatewayOrderID string) (int64, error) {
	var count int64
	for _, order := range s.orders {
		if order.GatewayOrderID != nil && *order.GatewayOrderID == gatewayOrderID {
			count++
		}
	}
	return count, nil
}

func (s *stubOrdersRepo) CreatePendingOrder(ctx context.Context, pending *models.PendingOrder) (*models.PendingOrder, error) {
	pending.ID = s.nextPendingID
	s.nextPendingID++
	pending.CreatedAt = time.Now()
	copied := *pending
	s.pending[pending.ID] = &copied
	return pending, nil
}

func (s *stubOrdersRepo) FindPendingByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PendingOrder, error) {
	for _, pending := range s.pending {
		if pending.GatewayOrderID == gatewayOrderID {
			copied := *pending
			for _, item := range s.items {
				if item.PendingOrderID != nil && *item.PendingOrderID == pending.ID {
					copied.Items = append(copied.Items, *item)
				}
			}
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) ClaimPendingOrder(ctx context.Context, gatewayOrderID string) (int64, error) {
	for _, pending := range s.pending {
		if pending.GatewayOrderID == gatewayOrderID && pending.Status == enums.PendingOrderStatusPending {
			pending.Status = enums.PendingOrderStatusProcessing
			return 1, nil
		}
	}
	return 0, nil
}

func (s *stubOrdersRepo) RepointItemsToOrder(ctx context.Context, pendingOrderID, orderID int64) error {
	for _, item := range s.items {
		if item.PendingOrderID != nil && *item.PendingOrderID == pendingOrderID {
			item.PendingOrderID = nil
			id := orderID
			item.OrderID = &id
		}
	}
	return nil
}

func (s *stubOrdersRepo) DeletePendingOrder(ctx context.Context, pendingOrderID int64) error {
	delete(s.pending, pendingOrderID)
	return nil
}

func (s *stubOrdersRepo) MarkPendingAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	for _, pending := range s.pending {
		if pending.Status == enums.PendingOrderStatusPending && pending.CreatedAt.Before(cutoff) {
			pending.Status = enums.PendingOrderStatusAbandoned
			count++
		}
	}
	return count, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCouponService struct {
	evals map[string]*coupons.Evaluation
}

func (s *stubCouponService) Apply(ctx context.Context, code string, cartTotal decimal.Decimal) (*coupons.Evaluation, error) {
	if eval, ok := s.evals[code]; ok {
		return eval, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
}

type stubPricingReader struct {
	pricing settings.Pricing
}

func (s *stubPricingReader) GetPricing(ctx context.Context) (settings.Pricing, error) {
	return s.pricing, nil
}

type stubGateway struct {
	orders []razorpay.Order
	err    error
}

func (s *stubGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*razorpay.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	order := razorpay.Order{
		ID:          "order_test_1",
		AmountPaise: amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:    "INR",
		Receipt:     receipt,
	}
	s.orders = append(s.orders, order)
	return &order, nil
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
	return &models.Customer{ID: id, Name: "Asha", Phone: "9876543210"}, nil
}

type orderFixture struct {
	repo     *stubOrdersRepo
	coupons  *stubCouponService
	gateway  *stubGateway
	notifier *stubNotifier
	svc      Service
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	f := &orderFixture{
		repo:     newStubOrdersRepo(),
		coupons:  &stubCouponService{evals: map[string]*coupons.Evaluation{}},
		gateway:  &stubGateway{},
		notifier: &stubNotifier{},
	}

	svc, err := NewService(ServiceParams{
		Repo:    f.repo,
		Tx:      stubTxRunner{},
		Coupons: f.coupons,
		Pricing: &stubPricingReader{pricing: settings.Pricing{
			ShippingThreshold: decimal.NewFromInt(1500),
			ShippingCharge:    decimal.NewFromInt(50),
			CODFee:            decimal.NewFromInt(30),
		}},
		Gateway:   f.gateway,
		Notifier:  f.notifier,
		Customers: stubCustomerReader{},
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func codRequest(total int64) CreateOrderRequest {
	return CreateOrderRequest{
		Address:       AddressInput{Street: "12 MG Road", City: "Bengaluru", Pincode: "560001"},
		PatientName:   "Asha",
		PatientPhone:  "9876543210",
		PaymentOption: enums.PaymentOptionCOD,
		Cart: Cart{
			Items: []CartItem{
				{ProductID: 1, ProductName: "Paracetamol 500mg", UnitPrice: decimal.NewFromInt(total), Quantity: 1},
			},
			TotalPrice: decimal.NewFromInt(total),
		},
	}
}

func TestCreateCODPersistsOrderWithItems(t *testing.T) {
	f := newOrderFixture(t)

	result, err := f.svc.Create(context.Background(), 7, codRequest(1000))
	require.NoError(t, err)

	assert.True(t, result.OrderPlaced)
	require.NotNil(t, result.Order)
	assert.Equal(t, "PH-1", result.Order.TransactionNumber)
	assert.Equal(t, enums.OrderStatusConfirmed, result.Order.Status)

	stored := f.repo.orders[result.OrderID]
	require.NotNil(t, stored)
	assert.Equal(t, "PH-1", stored.TransactionNumber)
	require.Len(t, f.repo.items, 1)
	assert.EqualValues(t, result.OrderID, *f.repo.items[0].OrderID)

	assert.Contains(t, f.notifier.placed, result.OrderID)
}

func TestShippingChargeThreshold(t *testing.T) {
	t.Run("above threshold ships free", func(t *testing.T) {
		f := newOrderFixture(t)

		result, err := f.svc.Create(context.Background(), 7, codRequest(2000))
		require.NoError(t, err)
		assert.True(t, result.Order.ShippingCharge.IsZero())
		// 2000 + 0 shipping + 30 cod fee
		assert.True(t, result.Order.Amount.Equal(decimal.NewFromInt(2030)))
	})

	t.Run("below threshold pays shipping", func(t *testing.T) {
		f := newOrderFixture(t)

		result, err := f.svc.Create(context.Background(), 7, codRequest(1000))
		require.NoError(t, err)
		assert.True(t, result.Order.ShippingCharge.Equal(decimal.NewFromInt(50)))
		assert.True(t, result.Order.Amount.Equal(decimal.NewFromInt(1080)))
	})
}

func TestCreateCODWithCoupon(t *testing.T) {
	f := newOrderFixture(t)
	f.coupons.evals["SAVE10"] = &coupons.Evaluation{
		Discount:   decimal.NewFromInt(180),
		GrandTotal: decimal.NewFromInt(1620),
	}

	req := codRequest(1800)
	code := "SAVE10"
	req.CouponCode = &code

	result, err := f.svc.Create(context.Background(), 7, req)
	require.NoError(t, err)

	order := result.Order
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(180)))
	// 1800 subtotal above the 1500 threshold, so no shipping; plus 30 cod fee
	assert.True(t, order.Amount.Equal(decimal.NewFromInt(1650)))
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "SAVE10", *order.CouponCode)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newOrderFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateOrderRequest)
	}{
		{"empty cart", func(r *CreateOrderRequest) { r.Cart.Items = nil }},
		{"zero quantity", func(r *CreateOrderRequest) { r.Cart.Items[0].Quantity = 0 }},
		{"missing street", func(r *CreateOrderRequest) { r.Address.Street = "" }},
		{"missing pincode", func(r *CreateOrderRequest) { r.Address.Pincode = "" }},
		{"missing patient name", func(r *CreateOrderRequest) { r.PatientName = "" }},
		{"missing patient phone", func(r *CreateOrderRequest) { r.PatientPhone = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := codRequest(1000)
			tc.mutate(&req)

			_, err := f.svc.Create(context.Background(), 7, req)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
		})
	}

	_, err := f.svc.Create(context.Background(), 0, codRequest(1000))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
	assert.Empty(t, f.repo.orders, "validation failures must not write")
}

func TestCreateOnlineStagesPendingOrder(t *testing.T) {
	f := newOrderFixture(t)

	req := codRequest(1000)
	req.PaymentOption = enums.PaymentOptionOnline

	result, err := f.svc.Create(context.Background(), 7, req)
	require.NoError(t, err)

	require.NotNil(t, result.GatewayOrder)
	assert.Equal(t, "order_test_1", result.GatewayOrder.ID)
	// 1000 + 50 shipping, no cod fee, in paise
	assert.EqualValues(t, 105000, result.GatewayOrder.AmountPaise)

	assert.Empty(t, f.repo.orders, "no confirmed order before verification")
	require.Len(t, f.repo.pending, 1)
	pending := f.repo.pending[1]
	assert.Equal(t, "order_test_1", pending.GatewayOrderID)
	assert.Equal(t, enums.PendingOrderStatusPending, pending.Status)

	require.Len(t, f.repo.items, 1)
	assert.Nil(t, f.repo.items[0].OrderID)
	assert.EqualValues(t, 1, *f.repo.items[0].PendingOrderID)

	assert.Empty(t, f.notifier.placed, "no notification before payment confirms")
}

func TestCreateOnlineGatewayFailureAbortsBeforePersist(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.err = pkgerrors.New(pkgerrors.CodeGateway, "gateway down")

	req := codRequest(1000)
	req.PaymentOption = enums.PaymentOptionOnline

	_, err := f.svc.Create(context.Background(), 7, req)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeGateway))
	assert.Empty(t, f.repo.pending)
	assert.Empty(t, f.repo.items)
}

func TestReorderCompletedOrder(t *testing.T) {
	f := newOrderFixture(t)

	first, err := f.svc.Create(context.Background(), 7, codRequest(1000))
	require.NoError(t, err)

	f.repo.orders[first.OrderID].Status = enums.OrderStatusCompleted

	second, err := f.svc.Reorder(context.Background(), 7, first.OrderID, ReorderRequest{})
	require.NoError(t, err)

	assert.NotEqual(t, first.OrderID, second.OrderID)
	assert.Equal(t, "PH-2", second.Order.TransactionNumber)
	assert.True(t, second.Order.Amount.Equal(first.Order.Amount))
}

func TestReorderPaymentOptionOverride(t *testing.T) {
	f := newOrderFixture(t)

	first, err := f.svc.Create(context.Background(), 7, codRequest(1000))
	require.NoError(t, err)
	f.repo.orders[first.OrderID].Status = enums.OrderStatusCompleted

	second, err := f.svc.Reorder(context.Background(), 7, first.OrderID, ReorderRequest{
		PaymentOption: enums.PaymentOptionOnline,
	})
	require.NoError(t, err)

	require.NotNil(t, second.GatewayOrder, "online override stages a gateway order")
	require.Len(t, f.repo.pending, 1)
	assert.Len(t, f.repo.orders, 1, "only the original confirmed order exists")
}

func TestReorderInvalidPaymentOptionRejected(t *testing.T) {
	f := newOrderFixture(t)

	first, err := f.svc.Create(context.Background(), 7, codRequest(1000))
	require.NoError(t, err)
	f.repo.orders[first.OrderID].Status = enums.OrderStatusCompleted

	_, err = f.svc.Reorder(context.Background(), 7, first.OrderID, ReorderRequest{
		PaymentOption: "Cheque",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestReorderPendingOrderRejected(t *testing.T) {
	f := newOrderFixture(t)

	first, err := f.svc.Create(context.Background(), 7, codRequest(1000))
	require.NoError(t, err)

	f.repo.orders[first.OrderID].Status = enums.OrderStatusPending

	_, err = f.svc.Reorder(context.Background(), 7, first.OrderID, ReorderRequest{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotReorderable))
}

func TestReorderWithExpiredCouponDegrades(t *testing.T) {
	f := newOrderFixture(t)
	f.coupons.evals["SAVE10"] = &coupons.Evaluation{
		Discount:   decimal.NewFromInt(100),
		GrandTotal: decimal.NewFromInt(900),
	}

	req := codRequest(1000)
	code := "SAVE10"
	req.CouponCode = &code

	first, err := f.svc.Create(context.Background(), 7, req)
	require.NoError(t, err)

	f.repo.orders[first.OrderID].Status = enums.OrderStatusCompleted
	delete(f.coupons.evals, "SAVE10")

	second, err := f.svc.Reorder(context.Background(), 7, first.OrderID, ReorderRequest{})
	require.NoError(t, err, "reorder proceeds without the discount")
	assert.Equal(t, "coupon was invalid or expired", second.CouponMessage)
	assert.True(t, second.Order.Discount.IsZero())
	assert.True(t, second.Order.Amount.GreaterThan(first.Order.Amount))
}

func TestReorderOtherCustomersOrder(t *testing.T) {
	f := newOrderFixture(t)

	first, err := f.svc.Create(context.Background(), 7, codRequest(1000))
	require.NoError(t, err)
	f.repo.orders[first.OrderID].Status = enums.OrderStatusCompleted

	_, err = f.svc.Reorder(context.Background(), 8, first.OrderID, ReorderRequest{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCreateCODItemFailureFailsCheckout(t *testing.T) {
	f := newOrderFixture(t)
	f.repo.failItems = true

	_, err := f.svc.Create(context.Background(), 7, codRequest(1000))
	require.Error(t, err, "line item failures roll the whole order back")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))
}

func TestEndToEndPricingScenario(t *testing.T) {
	// cart 1800, SAVE10 at 10% with min order 1000: discount 180, grand 1620.
	f := newOrderFixture(t)

	coupon := &models.Coupon{
		Code:          "SAVE10",
		DiscountType:  enums.DiscountTypePercentage,
		PercentageOff: decimal.NewFromInt(10),
		MinOrderValue: decimal.NewFromInt(1000),
		Status:        enums.CouponStatusActive,
	}
	eval, err := coupons.Evaluate(coupon, decimal.NewFromInt(1800), coupons.EvaluateOptions{})
	require.NoError(t, err)
	assert.True(t, eval.Discount.Equal(decimal.NewFromInt(180)))
	assert.True(t, eval.GrandTotal.Equal(decimal.NewFromInt(1620)))

	f.coupons.evals["SAVE10"] = eval
	req := codRequest(1800)
	code := "SAVE10"
	req.CouponCode = &code

	result, err := f.svc.Create(context.Background(), 7, req)
	require.NoError(t, err)

	// 1800 is above the 1500 threshold so shipping is 0; COD adds the fee.
	want := decimal.NewFromInt(1620).Add(decimal.NewFromInt(30))
	assert.True(t, result.Order.Amount.Equal(want),
		"amount %s, want %s", result.Order.Amount, want)
}
