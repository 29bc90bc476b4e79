package enums

import "fmt"

// OrderType selects the purchase flow for an order.
type OrderType string

const (
	OrderTypeBuyNow         OrderType = "buy_now"
	OrderTypeBuyNowPayLater OrderType = "buy_now_pay_later"
	OrderTypeBulkOrder      OrderType = "bulk_order"
)

var validOrderTypes = []OrderType{
	OrderTypeBuyNow,
	OrderTypeBuyNowPayLater,
	OrderTypeBulkOrder,
}

// String implements fmt.Stringer.
func (o OrderType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderType.
func (o OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
