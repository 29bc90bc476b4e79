package enums

import "fmt"

// WindowStatus tracks a bulk order window through settlement. A window moves
// open -> processing -> finalized; processing marks an exclusive settlement
// claim so concurrent sweepers never settle the same window twice.
type WindowStatus string

const (
	WindowStatusOpen       WindowStatus = "open"
	WindowStatusProcessing WindowStatus = "processing"
	WindowStatusFinalized  WindowStatus = "finalized"
)

var validWindowStatuses = []WindowStatus{
	WindowStatusOpen,
	WindowStatusProcessing,
	WindowStatusFinalized,
}

// String implements fmt.Stringer.
func (w WindowStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WindowStatus.
func (w WindowStatus) IsValid() bool {
	for _, candidate := range validWindowStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWindowStatus converts raw input into a WindowStatus.
func ParseWindowStatus(value string) (WindowStatus, error) {
	for _, candidate := range validWindowStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid window status %q", value)
}
