package enums

// PaymentOption is how the customer chose to pay at checkout.
type PaymentOption string

const (
	PaymentOptionCOD    PaymentOption = "COD"
	PaymentOptionOnline PaymentOption = "Online"
)

func (p PaymentOption) String() string {
	return string(p)
}

func (p PaymentOption) IsValid() bool {
	return p == PaymentOptionCOD || p == PaymentOptionOnline
}

// PaymentStatus tracks whether money has been collected for an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) String() string {
	return string(p)
}

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}
