package stripe

import "fmt"

var (
	// ErrNotFound means the charge does not exist on Stripe's side.
	ErrNotFound = fmt.Errorf("not found")
	// ErrInvalidChargeID means the charge ID is invalid, most likely blank.
	ErrInvalidChargeID = fmt.Errorf("invalid stripe charge ID")
)
