package enums

import "fmt"

// LedgerDirection marks which way a ledger entry moved the balance.
type LedgerDirection string

const (
	LedgerDirectionDebit  LedgerDirection = "debit"
	LedgerDirectionCredit LedgerDirection = "credit"
)

var validLedgerDirections = []LedgerDirection{
	LedgerDirectionDebit,
	LedgerDirectionCredit,
}

// String implements fmt.Stringer.
func (l LedgerDirection) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerDirection.
func (l LedgerDirection) IsValid() bool {
	for _, candidate := range validLedgerDirections {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLedgerDirection converts raw input into a LedgerDirection.
func ParseLedgerDirection(value string) (LedgerDirection, error) {
	for _, candidate := range validLedgerDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger direction %q", value)
}

// LedgerCauseType names the business event that caused a balance mutation.
type LedgerCauseType string

const (
	LedgerCauseOrderSettlement  LedgerCauseType = "order_settlement"
	LedgerCauseWindowSettlement LedgerCauseType = "window_settlement"
	LedgerCausePaymentCredit    LedgerCauseType = "payment_credit"
	LedgerCauseRefund           LedgerCauseType = "refund"
)

var validLedgerCauseTypes = []LedgerCauseType{
	LedgerCauseOrderSettlement,
	LedgerCauseWindowSettlement,
	LedgerCausePaymentCredit,
	LedgerCauseRefund,
}

// String implements fmt.Stringer.
func (l LedgerCauseType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerCauseType.
func (l LedgerCauseType) IsValid() bool {
	for _, candidate := range validLedgerCauseTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLedgerCauseType converts raw input into a LedgerCauseType.
func ParseLedgerCauseType(value string) (LedgerCauseType, error) {
	for _, candidate := range validLedgerCauseTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger cause type %q", value)
}
