package enums

// PendingOrderStatus tracks the staging row created for an online payment.
// pending: awaiting gateway verification. processing: claimed by a
// verification call mid-promotion. abandoned: swept after the TTL elapsed.
type PendingOrderStatus string

const (
	PendingOrderStatusPending    PendingOrderStatus = "pending"
	PendingOrderStatusProcessing PendingOrderStatus = "processing"
	PendingOrderStatusAbandoned  PendingOrderStatus = "abandoned"
)

func (s PendingOrderStatus) String() string {
	return string(s)
}

func (s PendingOrderStatus) IsValid() bool {
	switch s {
	case PendingOrderStatusPending, PendingOrderStatusProcessing, PendingOrderStatusAbandoned:
		return true
	}
	return false
}
