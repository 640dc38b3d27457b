package payments

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/internal/orders"
	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
	"github.com/medbasket/medbasket-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type signatureVerifier interface {
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

type orderNotifier interface {
	OrderPlaced(ctx context.Context, order *models.Order, email *string) error
}

type customerReader interface {
	FindByID(ctx context.Context, id int64) (*models.Customer, error)
}

// Service verifies gateway payments and promotes the staged pending order
// into a confirmed one. Promotion claims the pending row with a conditional
// status update so a given gateway order id is promoted at most once.
type Service interface {
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
}

type service struct {
	repo      orders.Repository
	tx        txRunner
	verifier  signatureVerifier
	notifier  orderNotifier
	customers customerReader
	metrics   *metrics.OrderMetrics
	logger    *logger.Logger
}

// ServiceParams bundles the dependencies required to build a payments service.
type ServiceParams struct {
	Repo      orders.Repository
	Tx        txRunner
	Verifier  signatureVerifier
	Notifier  orderNotifier
	Customers customerReader
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
}

// NewService constructs the payment verification service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Verifier == nil {
		return nil, fmt.Errorf("signature verifier required")
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
		verifier:  params.Verifier,
		notifier:  params.Notifier,
		customers: params.Customers,
		metrics:   params.Metrics,
		logger:    params.Logger,
	}, nil
}

func (s *service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if req.RazorpayPaymentID == "" || req.RazorpayOrderID == "" || req.RazorpaySignature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id, order id and signature are all required")
	}

	ctx = s.logger.WithFields(ctx, map[string]any{"gateway_order_id": req.RazorpayOrderID})

	if !s.verifier.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.metrics.IncVerification("failure")
		s.logger.Warn(ctx, "payment signature mismatch")
		// the pending row is left in place for support-driven recovery
		return nil, pkgerrors.New(pkgerrors.CodePaymentVerification, "payment signature mismatch")
	}

	order, err := s.promote(ctx, req)
	if err != nil {
		return nil, err
	}

	s.metrics.IncVerification("success")
	s.metrics.IncOrderCreated(enums.PaymentOptionOnline.String())
	s.logger.Info(s.logger.WithOrderID(ctx, order.ID), "online order confirmed")

	s.notifyPlaced(ctx, order)

	return &VerifyResult{
		Success:  true,
		Redirect: RedirectSuccess,
		Message:  "payment verified",
		OrderID:  order.ID,
	}, nil
}

// promote copies the pending order into a confirmed one inside a single
// transaction: claim, copy, re-point items, backfill, delete.
func (s *service) promote(ctx context.Context, req VerifyRequest) (*models.Order, error) {
	var order *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		claimed, err := repo.ClaimPendingOrder(ctx, req.RazorpayOrderID)
		if err != nil {
			return fmt.Errorf("claim pending order: %w", err)
		}
		if claimed == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pending order not found")
		}

		confirmed, err := repo.CountConfirmedByGatewayOrder(ctx, req.RazorpayOrderID)
		if err != nil {
			return fmt.Errorf("count confirmed orders: %w", err)
		}
		if confirmed > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already confirmed for this payment")
		}

		pending, err := repo.FindPendingByGatewayOrderID(ctx, req.RazorpayOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "pending order not found")
			}
			return fmt.Errorf("load pending order: %w", err)
		}

		order = orderFromPending(pending, req.RazorpayPaymentID)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create confirmed order: %w", err)
		}

		if err := repo.RepointItemsToOrder(ctx, pending.ID, order.ID); err != nil {
			return fmt.Errorf("re-point order items: %w", err)
		}

		order.TransactionNumber = fmt.Sprintf("PH-%d", order.ID)
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"transaction_number": order.TransactionNumber,
		}); err != nil {
			return fmt.Errorf("backfill transaction number: %w", err)
		}

		if err := repo.DeletePendingOrder(ctx, pending.ID); err != nil {
			return fmt.Errorf("delete pending order: %w", err)
		}

		order.Items = pending.Items
		for i := range order.Items {
			order.Items[i].OrderID = &order.ID
			order.Items[i].PendingOrderID = nil
		}
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote pending order")
	}
	return order, nil
}

func orderFromPending(pending *models.PendingOrder, paymentID string) *models.Order {
	gatewayOrderID := pending.GatewayOrderID
	return &models.Order{
		CustomerID:       pending.CustomerID,
		PrescriptionID:   pending.PrescriptionID,
		PatientName:      pending.PatientName,
		PatientPhone:     pending.PatientPhone,
		HospitalName:     pending.HospitalName,
		DoctorName:       pending.DoctorName,
		Notes:            pending.Notes,
		ShipStreet:       pending.ShipStreet,
		ShipCity:         pending.ShipCity,
		ShipPincode:      pending.ShipPincode,
		ShipHouseNo:      pending.ShipHouseNo,
		ShipAddrType:     pending.ShipAddrType,
		Subtotal:         pending.Subtotal,
		CouponCode:       pending.CouponCode,
		Discount:         pending.Discount,
		ShippingCharge:   pending.ShippingCharge,
		AdditionalCharge: pending.AdditionalCharge,
		Amount:           pending.Amount,
		PaymentOption:    enums.PaymentOptionOnline,
		PaymentStatus:    enums.PaymentStatusPaid,
		Status:           enums.OrderStatusConfirmed,
		GatewayOrderID:   &gatewayOrderID,
		GatewayPaymentID: &paymentID,
	}
}

func (s *service) notifyPlaced(ctx context.Context, order *models.Order) {
	var email *string
	if customer, err := s.customers.FindByID(ctx, order.CustomerID); err == nil {
		email = customer.Email
	}
	_ = s.notifier.OrderPlaced(ctx, order, email)
}
