package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/internal/coupons"
	"github.com/medbasket/medbasket-backend/internal/settings"
	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
	"github.com/medbasket/medbasket-backend/pkg/metrics"
	"github.com/medbasket/medbasket-backend/pkg/pagination"
	"github.com/medbasket/medbasket-backend/pkg/razorpay"
)

const couponExpiredMessage = "coupon was invalid or expired"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type couponService interface {
	Apply(ctx context.Context, code string, cartTotal decimal.Decimal) (*coupons.Evaluation, error)
}

type pricingReader interface {
	GetPricing(ctx context.Context) (settings.Pricing, error)
}

type paymentGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*razorpay.Order, error)
}

type orderNotifier interface {
	OrderPlaced(ctx context.Context, order *models.Order, email *string) error
}

type customerReader interface {
	FindByID(ctx context.Context, id int64) (*models.Customer, error)
}

// Service runs the checkout workflow: COD orders persist immediately, online
// orders stage a pending row behind a gateway order.
type Service interface {
	Create(ctx context.Context, customerID int64, req CreateOrderRequest) (*CreateOrderResult, error)
	Reorder(ctx context.Context, customerID, orderID int64, req ReorderRequest) (*CreateOrderResult, error)
	List(ctx context.Context, customerID int64, limit int, cursor string) (*ListResult, error)
	Get(ctx context.Context, customerID, orderID int64) (*models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	coupons   couponService
	pricing   pricingReader
	gateway   paymentGateway
	notifier  orderNotifier
	customers customerReader
	metrics   *metrics.OrderMetrics
	logger    *logger.Logger
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Coupons   couponService
	Pricing   pricingReader
	Gateway   paymentGateway
	Notifier  orderNotifier
	Customers customerReader
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
}

// NewService constructs the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing reader required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer reader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		coupons:   params.Coupons,
		pricing:   params.Pricing,
		gateway:   params.Gateway,
		notifier:  params.Notifier,
		customers: params.Customers,
		metrics:   params.Metrics,
		logger:    params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, customerID int64, req CreateOrderRequest) (*CreateOrderResult, error) {
	return s.create(ctx, customerID, req, false)
}

// create runs the shared checkout flow. degradeCoupon softens coupon
// failures into an informational message, which reorder relies on.
func (s *service) create(ctx context.Context, customerID int64, req CreateOrderRequest, degradeCoupon bool) (*CreateOrderResult, error) {
	if err := validateCreate(customerID, req); err != nil {
		return nil, err
	}

	priced, err := s.price(ctx, req, degradeCoupon)
	if err != nil {
		return nil, err
	}

	switch req.PaymentOption {
	case enums.PaymentOptionCOD:
		return s.createCOD(ctx, customerID, req, priced)
	case enums.PaymentOptionOnline:
		return s.createOnline(ctx, customerID, req, priced)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment option")
	}
}

func validateCreate(customerID int64, req CreateOrderRequest) error {
	if customerID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "customer not resolved")
	}
	if len(req.Cart.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart must have at least one item")
	}
	for _, item := range req.Cart.Items {
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if strings.TrimSpace(req.Address.Street) == "" || strings.TrimSpace(req.Address.Pincode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address street and pincode are required")
	}
	if strings.TrimSpace(req.PatientName) == "" || strings.TrimSpace(req.PatientPhone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "patient name and phone are required")
	}
	return nil
}

func (s *service) price(ctx context.Context, req CreateOrderRequest, degradeCoupon bool) (pricedOrder, error) {
	pricing, err := s.pricing.GetPricing(ctx)
	if err != nil {
		return pricedOrder{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pricing settings")
	}

	subtotal := cartSubtotal(req.Cart)
	if !subtotal.IsPositive() {
		return pricedOrder{}, pkgerrors.New(pkgerrors.CodeValidation, "cart total must be positive")
	}

	var eval *coupons.Evaluation
	var couponCode *string
	couponMessage := ""
	if req.CouponCode != nil && strings.TrimSpace(*req.CouponCode) != "" {
		code := strings.TrimSpace(*req.CouponCode)
		eval, err = s.coupons.Apply(ctx, code, subtotal)
		if err != nil {
			if !degradeCoupon {
				return pricedOrder{}, err
			}
			eval = nil
			couponMessage = couponExpiredMessage
			s.logger.Warn(s.logger.WithField(ctx, "coupon_code", code), "reorder coupon no longer applies")
		} else {
			couponCode = &code
		}
	}

	priced := priceOrder(subtotal, pricing, req.PaymentOption, eval)
	priced.couponCode = couponCode
	priced.couponMessage = couponMessage
	return priced, nil
}

func (s *service) createCOD(ctx context.Context, customerID int64, req CreateOrderRequest, priced pricedOrder) (*CreateOrderResult, error) {
	order := buildOrder(customerID, req, priced)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := buildItems(req.Cart, &order.ID, nil)
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		order.Items = items

		order.TransactionNumber = transactionNumber(order.ID)
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"transaction_number": order.TransactionNumber,
		}); err != nil {
			return fmt.Errorf("backfill transaction number: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cod order")
	}

	s.metrics.IncOrderCreated(enums.PaymentOptionCOD.String())
	logCtx := s.logger.WithOrderID(ctx, order.ID)
	s.logger.Info(logCtx, "cod order placed")

	s.notifyPlaced(logCtx, customerID, order)

	return &CreateOrderResult{
		Message:       "order placed",
		OrderPlaced:   true,
		OrderID:       order.ID,
		Order:         order,
		CouponMessage: priced.couponMessage,
	}, nil
}

func (s *service) createOnline(ctx context.Context, customerID int64, req CreateOrderRequest, priced pricedOrder) (*CreateOrderResult, error) {
	receipt := fmt.Sprintf("mb-%d-%d", customerID, time.Now().Unix())
	gatewayOrder, err := s.gateway.CreateOrder(ctx, priced.amount, receipt)
	if err != nil {
		return nil, err
	}

	pending := buildPendingOrder(customerID, req, priced, gatewayOrder.ID)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.CreatePendingOrder(ctx, pending); err != nil {
			return fmt.Errorf("create pending order: %w", err)
		}
		items := buildItems(req.Cart, nil, &pending.ID)
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return fmt.Errorf("create pending order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist pending order")
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{"gateway_order_id": gatewayOrder.ID})
	s.logger.Info(logCtx, "online order staged")

	return &CreateOrderResult{
		Message:       "complete the payment to confirm your order",
		GatewayOrder:  gatewayOrder,
		CouponMessage: priced.couponMessage,
	}, nil
}

func (s *service) Reorder(ctx context.Context, customerID, orderID int64, reorder ReorderRequest) (*CreateOrderResult, error) {
	original, err := s.Get(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if !original.Status.Reorderable() {
		return nil, pkgerrors.New(pkgerrors.CodeNotReorderable, "order cannot be repeated").
			WithDetails(map[string]any{"status": original.Status})
	}

	paymentOption := original.PaymentOption
	if reorder.PaymentOption != "" {
		if !reorder.PaymentOption.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment option").
				WithDetails(map[string]any{"paymentOption": reorder.PaymentOption})
		}
		paymentOption = reorder.PaymentOption
	}

	req := CreateOrderRequest{
		PrescriptionID: original.PrescriptionID,
		Address: AddressInput{
			Street:  original.ShipStreet,
			City:    original.ShipCity,
			Pincode: original.ShipPincode,
			HouseNo: original.ShipHouseNo,
			Type:    original.ShipAddrType,
		},
		PatientName:       original.PatientName,
		PatientPhone:      original.PatientPhone,
		HospitalName:      original.HospitalName,
		DoctorName:        original.DoctorName,
		PrescriptionNotes: original.Notes,
		CouponCode:        original.CouponCode,
		PaymentOption:     paymentOption,
		Cart:              cartFromItems(original.Items),
	}

	return s.create(ctx, customerID, req, true)
}

func (s *service) List(ctx context.Context, customerID int64, limit int, cursor string) (*ListResult, error) {
	limit = pagination.NormalizeLimit(limit)

	var parsed *pagination.Cursor
	if cursor != "" {
		var err error
		parsed, err = pagination.ParseCursor(cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
	}

	rows, err := s.repo.ListOrdersByCustomer(ctx, customerID, limit+1, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Items: rows, Cursor: next}, nil
}

// Get loads an order and enforces ownership.
func (s *service) Get(ctx context.Context, customerID, orderID int64) (*models.Order, error) {
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// notifyPlaced is best effort: failures are logged by the notifier and must
// never fail the checkout response.
func (s *service) notifyPlaced(ctx context.Context, customerID int64, order *models.Order) {
	var email *string
	if customer, err := s.customers.FindByID(ctx, customerID); err == nil {
		email = customer.Email
	}
	_ = s.notifier.OrderPlaced(ctx, order, email)
}

func transactionNumber(orderID int64) string {
	return fmt.Sprintf("PH-%d", orderID)
}

func buildOrder(customerID int64, req CreateOrderRequest, priced pricedOrder) *models.Order {
	return &models.Order{
		CustomerID:       customerID,
		PrescriptionID:   req.PrescriptionID,
		PatientName:      strings.TrimSpace(req.PatientName),
		PatientPhone:     strings.TrimSpace(req.PatientPhone),
		HospitalName:     req.HospitalName,
		DoctorName:       req.DoctorName,
		Notes:            req.PrescriptionNotes,
		ShipStreet:       req.Address.Street,
		ShipCity:         req.Address.City,
		ShipPincode:      req.Address.Pincode,
		ShipHouseNo:      req.Address.HouseNo,
		ShipAddrType:     req.Address.Type,
		Subtotal:         priced.subtotal,
		CouponCode:       priced.couponCode,
		Discount:         priced.discount,
		ShippingCharge:   priced.shippingCharge,
		AdditionalCharge: priced.additionalCharge,
		Amount:           priced.amount,
		PaymentOption:    req.PaymentOption,
		PaymentStatus:    enums.PaymentStatusUnpaid,
		Status:           enums.OrderStatusConfirmed,
	}
}

func buildPendingOrder(customerID int64, req CreateOrderRequest, priced pricedOrder, gatewayOrderID string) *models.PendingOrder {
	return &models.PendingOrder{
		CustomerID:       customerID,
		PrescriptionID:   req.PrescriptionID,
		GatewayOrderID:   gatewayOrderID,
		Status:           enums.PendingOrderStatusPending,
		PatientName:      strings.TrimSpace(req.PatientName),
		PatientPhone:     strings.TrimSpace(req.PatientPhone),
		HospitalName:     req.HospitalName,
		DoctorName:       req.DoctorName,
		Notes:            req.PrescriptionNotes,
		ShipStreet:       req.Address.Street,
		ShipCity:         req.Address.City,
		ShipPincode:      req.Address.Pincode,
		ShipHouseNo:      req.Address.HouseNo,
		ShipAddrType:     req.Address.Type,
		Subtotal:         priced.subtotal,
		CouponCode:       priced.couponCode,
		Discount:         priced.discount,
		ShippingCharge:   priced.shippingCharge,
		AdditionalCharge: priced.additionalCharge,
		Amount:           priced.amount,
	}
}

func buildItems(cart Cart, orderID, pendingOrderID *int64) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, models.OrderItem{
			OrderID:        orderID,
			PendingOrderID: pendingOrderID,
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			ImageURL:       line.ImageURL,
			UnitPrice:      line.UnitPrice,
			Quantity:       line.Quantity,
			Tax:            line.Tax,
			LineTotal:      line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Add(line.Tax),
		})
	}
	return items
}

func cartFromItems(items []models.OrderItem) Cart {
	cart := Cart{Items: make([]CartItem, 0, len(items))}
	total := decimal.Zero
	for _, item := range items {
		cart.Items = append(cart.Items, CartItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ImageURL:    item.ImageURL,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Tax:         item.Tax,
		})
		total = total.Add(item.LineTotal)
	}
	cart.TotalPrice = total
	return cart
}
