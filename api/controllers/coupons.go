package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/medbasket/medbasket-backend/api/responses"
	"github.com/medbasket/medbasket-backend/api/validators"
	couponsvc "github.com/medbasket/medbasket-backend/internal/coupons"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

type applyCouponRequest struct {
	CouponCode string          `json:"couponCode" validate:"required"`
	TotalPrice decimal.Decimal `json:"totalPrice" validate:"required"`
	// ProductsFromCart is part of the client payload but evaluation only
	// needs the total; the cart lines are accepted and ignored.
	ProductsFromCart json.RawMessage `json:"ProductsFromCart"`
}

type applyCouponResponse struct {
	Success    bool            `json:"success"`
	Discount   decimal.Decimal `json:"discount"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Message    string          `json:"message,omitempty"`
}

// CouponApply evaluates a coupon code against the client's cart total.
func CouponApply(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		evaluation, err := svc.Apply(r.Context(), payload.CouponCode, payload.TotalPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, applyCouponResponse{
			Success:    true,
			Discount:   evaluation.Discount,
			GrandTotal: evaluation.GrandTotal,
			Message:    "coupon applied",
		})
	}
}
