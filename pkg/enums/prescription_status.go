package enums

// PrescriptionStatus tracks an uploaded prescription through review.
type PrescriptionStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "pending"
	PrescriptionStatusCompleted PrescriptionStatus = "completed"
	PrescriptionStatusCancelled PrescriptionStatus = "cancelled"
)

func (s PrescriptionStatus) String() string {
	return string(s)
}

func (s PrescriptionStatus) IsValid() bool {
	switch s {
	case PrescriptionStatusPending, PrescriptionStatusCompleted, PrescriptionStatusCancelled:
		return true
	}
	return false
}
