package auth

// RequestOTPRequest asks for a login code to be sent to a phone number.
type RequestOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=13"`
}

// RequestOTPResponse acknowledges the send without echoing the code.
type RequestOTPResponse struct {
	Sent      bool   `json:"sent"`
	RetryMins int    `json:"retry_minutes,omitempty"`
	Message   string `json:"message"`
}

// VerifyOTPRequest exchanges a phone + code for an access token.
type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=13"`
	Code  string `json:"code" validate:"required,min=4,max=8"`
	Name  string `json:"name"`
}

// VerifyOTPResponse carries the minted token and the customer profile.
type VerifyOTPResponse struct {
	Token       string `json:"token"`
	CustomerID  int64  `json:"customer_id"`
	Name        string `json:"name"`
	NewCustomer bool   `json:"new_customer"`
}
