package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregateWindow  OutboxAggregateType = "bulk_order_window"
	AggregatePayment OutboxAggregateType = "payment"
	AggregateAccount OutboxAggregateType = "account"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateWindow,
	AggregatePayment,
	AggregateAccount,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated    OutboxEventType = "order_created"
	EventOrderPaid       OutboxEventType = "order_paid"
	EventOrderRepriced   OutboxEventType = "order_repriced"
	EventWindowCreated   OutboxEventType = "window_created"
	EventWindowFinalized OutboxEventType = "window_finalized"
	EventPaymentCredited OutboxEventType = "payment_credited"
	EventPaymentFailed   OutboxEventType = "payment_failed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderPaid,
	EventOrderRepriced,
	EventWindowCreated,
	EventWindowFinalized,
	EventPaymentCredited,
	EventPaymentFailed,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
