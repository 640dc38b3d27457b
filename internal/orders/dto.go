package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medbasket/medbasket-backend/internal/coupons"
	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	"github.com/medbasket/medbasket-backend/pkg/razorpay"
)

// CartItem is one line of the client-held cart.
type CartItem struct {
	ProductID   int64           `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name" validate:"required"`
	ImageURL    string          `json:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	Tax         decimal.Decimal `json:"tax"`
}

// Cart is the transient cart submitted at checkout. TotalPrice is the
// client's figure; the service recomputes and trusts its own sum.
type Cart struct {
	Items      []CartItem      `json:"items" validate:"required,min=1,dive"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// AddressInput is the shipping address submitted with an order. Fields are
// copied into the order row by value.
type AddressInput struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city"`
	Pincode string `json:"pincode" validate:"required"`
	HouseNo string `json:"house_no"`
	Type    string `json:"type"`
}

// CreateOrderRequest is the make-a-order payload.
type CreateOrderRequest struct {
	PrescriptionID    *uuid.UUID          `json:"Rx_id"`
	Address           AddressInput        `json:"address" validate:"required"`
	PatientName       string              `json:"patientName" validate:"required"`
	PatientPhone      string              `json:"patientPhone" validate:"required"`
	HospitalName      string              `json:"hospitalName"`
	DoctorName        string              `json:"doctorName"`
	PrescriptionNotes string              `json:"prescriptionNotes"`
	CouponCode        *string             `json:"couponCode"`
	PaymentOption     enums.PaymentOption `json:"paymentOption" validate:"required"`
	Cart              Cart                `json:"cart" validate:"required"`
}

// ReorderRequest is the optional repeat_order payload. PaymentOption, when
// set, replaces the original order's option for the new checkout.
type ReorderRequest struct {
	PaymentOption enums.PaymentOption `json:"paymentOption"`
}

// CreateOrderResult covers both checkout branches. COD fills Order and
// OrderID; Online fills GatewayOrder so the client can drive the payment UI.
type CreateOrderResult struct {
	Message       string          `json:"message"`
	OrderPlaced   bool            `json:"orderPlaced"`
	OrderID       int64           `json:"orderId,omitempty"`
	Order         *models.Order   `json:"order,omitempty"`
	GatewayOrder  *razorpay.Order `json:"sendOrder,omitempty"`
	CouponMessage string          `json:"couponMessage,omitempty"`
}

// ListResult is one page of a customer's order history.
type ListResult struct {
	Items  []models.Order `json:"items"`
	Cursor string         `json:"cursor"`
}

// pricedOrder is the outcome of validation + pricing, shared by both branches.
type pricedOrder struct {
	subtotal         decimal.Decimal
	discount         decimal.Decimal
	shippingCharge   decimal.Decimal
	additionalCharge decimal.Decimal
	amount           decimal.Decimal
	couponCode       *string
	couponMessage    string
	evaluation       *coupons.Evaluation
}
