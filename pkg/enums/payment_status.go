package enums

import "fmt"

// PaymentStatus tracks whether an order has been settled against the buyer's
// balance.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}

// GatewayPaymentStatus tracks the lifecycle of a hosted gateway payment.
type GatewayPaymentStatus string

const (
	GatewayPaymentStatusPending   GatewayPaymentStatus = "pending"
	GatewayPaymentStatusCompleted GatewayPaymentStatus = "completed"
	GatewayPaymentStatusFailed    GatewayPaymentStatus = "failed"
	GatewayPaymentStatusRefunded  GatewayPaymentStatus = "refunded"
)

var validGatewayPaymentStatuses = []GatewayPaymentStatus{
	GatewayPaymentStatusPending,
	GatewayPaymentStatusCompleted,
	GatewayPaymentStatusFailed,
	GatewayPaymentStatusRefunded,
}

// String implements fmt.Stringer.
func (g GatewayPaymentStatus) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GatewayPaymentStatus.
func (g GatewayPaymentStatus) IsValid() bool {
	for _, candidate := range validGatewayPaymentStatuses {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGatewayPaymentStatus converts raw input into a GatewayPaymentStatus.
func ParseGatewayPaymentStatus(value string) (GatewayPaymentStatus, error) {
	for _, candidate := range validGatewayPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gateway payment status %q", value)
}
