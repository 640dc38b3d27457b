package notifications

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/medbasket/medbasket-backend/pkg/db/models"
)

// OrderSummaryMessage builds the WhatsApp text sent after an order is placed.
func OrderSummaryMessage(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, your MedBasket order %s is confirmed.\n", order.PatientName, order.TransactionNumber)

	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x%d (Rs %s)\n", item.ProductName, item.Quantity, item.LineTotal.StringFixed(2))
	}

	if order.Discount.IsPositive() {
		fmt.Fprintf(&b, "Discount: Rs %s\n", order.Discount.StringFixed(2))
	}
	if order.ShippingCharge.IsPositive() {
		fmt.Fprintf(&b, "Delivery: Rs %s\n", order.ShippingCharge.StringFixed(2))
	}
	if order.AdditionalCharge.IsPositive() {
		fmt.Fprintf(&b, "COD fee: Rs %s\n", order.AdditionalCharge.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: Rs %s (%s)\n", order.Amount.StringFixed(2), order.PaymentOption)
	fmt.Fprintf(&b, "Delivery to: %s, %s %s", order.ShipStreet, order.ShipCity, order.ShipPincode)
	return b.String()
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Order {{.TransactionNumber}} confirmed</h2>
  <p>Hi {{.PatientName}}, thank you for ordering with MedBasket.</p>
  <table width="100%" cellpadding="6" style="border-collapse: collapse;">
    <tr style="background: #f4f4f4;">
      <th align="left">Item</th><th align="right">Qty</th><th align="right">Amount</th>
    </tr>
    {{range .Items}}
    <tr>
      <td>{{.ProductName}}</td>
      <td align="right">{{.Quantity}}</td>
      <td align="right">&#8377; {{.LineTotal.StringFixed 2}}</td>
    </tr>
    {{end}}
    <tr><td colspan="2" align="right">Subtotal</td><td align="right">&#8377; {{.Subtotal.StringFixed 2}}</td></tr>
    {{if .Discount.IsPositive}}
    <tr><td colspan="2" align="right">Discount{{if .CouponCode}} ({{.CouponCode}}){{end}}</td><td align="right">-&#8377; {{.Discount.StringFixed 2}}</td></tr>
    {{end}}
    <tr><td colspan="2" align="right">Delivery</td><td align="right">&#8377; {{.ShippingCharge.StringFixed 2}}</td></tr>
    {{if .AdditionalCharge.IsPositive}}
    <tr><td colspan="2" align="right">COD fee</td><td align="right">&#8377; {{.AdditionalCharge.StringFixed 2}}</td></tr>
    {{end}}
    <tr style="font-weight: bold;"><td colspan="2" align="right">Total</td><td align="right">&#8377; {{.Amount.StringFixed 2}}</td></tr>
  </table>
  <p>Delivery to: {{.ShipStreet}}, {{.ShipCity}} {{.ShipPincode}}</p>
</body>
</html>`))

// ReceiptHTML renders the order receipt email body.
func ReceiptHTML(order *models.Order) (string, error) {
	var b strings.Builder
	if err := receiptTemplate.Execute(&b, order); err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return b.String(), nil
}
