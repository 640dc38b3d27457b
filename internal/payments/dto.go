package payments

// VerifyRequest is the payload the client posts after the gateway's
// client-side flow completes. Field names follow the gateway's checkout SDK.
type VerifyRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// Redirect signals tell the client which screen to navigate to.
const (
	RedirectSuccess = "success_screen"
	RedirectFailed  = "failed_screen"
)

// VerifyResult is the terminal outcome of a verification attempt.
type VerifyResult struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
	Message  string `json:"message"`
	OrderID  int64  `json:"orderId,omitempty"`
}
