package notify

import "fmt"

// DeliveryError reports that the mail transport failed to accept a message.
type DeliveryError struct {
	Kind string // "verification" or "welcome"
	To   string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s email to %s: %v", e.Kind, e.To, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
