package enums

import "fmt"

// ReservationStatus tracks a stock hold through its lifecycle. Active holds
// reduce availability, consumed holds have been deducted from stock, and
// released holds no longer count against anything.
type ReservationStatus string

const (
	ReservationStatusActive   ReservationStatus = "active"
	ReservationStatusConsumed ReservationStatus = "consumed"
	ReservationStatusReleased ReservationStatus = "released"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusActive,
	ReservationStatusConsumed,
	ReservationStatusReleased,
}

// String implements fmt.Stringer.
func (r ReservationStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReservationStatus.
func (r ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
