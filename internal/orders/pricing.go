package orders

import (
	"github.com/shopspring/decimal"

	"github.com/medbasket/medbasket-backend/internal/coupons"
	"github.com/medbasket/medbasket-backend/internal/settings"
	"github.com/medbasket/medbasket-backend/pkg/enums"
)

// cartSubtotal recomputes the cart total from its lines. The client-sent
// TotalPrice is ignored when it disagrees.
func cartSubtotal(cart Cart) decimal.Decimal {
	total := decimal.Zero
	for _, item := range cart.Items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Add(item.Tax)
		total = total.Add(line)
	}
	return total
}

// priceOrder applies shipping and COD charges on top of the discounted cart.
// Shipping is free above the configured threshold and whenever a
// free-delivery coupon is in play. The COD fee applies only to COD orders.
func priceOrder(subtotal decimal.Decimal, pricing settings.Pricing, paymentOption enums.PaymentOption, eval *coupons.Evaluation) pricedOrder {
	priced := pricedOrder{
		subtotal:         subtotal,
		discount:         decimal.Zero,
		shippingCharge:   decimal.Zero,
		additionalCharge: decimal.Zero,
		evaluation:       eval,
	}

	freeDelivery := false
	if eval != nil {
		priced.discount = eval.Discount
		freeDelivery = eval.FreeDelivery
	}

	if !freeDelivery && subtotal.LessThanOrEqual(pricing.ShippingThreshold) {
		priced.shippingCharge = pricing.ShippingCharge
	}
	if paymentOption == enums.PaymentOptionCOD {
		priced.additionalCharge = pricing.CODFee
	}

	priced.amount = subtotal.
		Sub(priced.discount).
		Add(priced.shippingCharge).
		Add(priced.additionalCharge)
	return priced
}
