package quote

import (
	"fmt"
	"strings"
)

// ValidationError blocks submission; the messages are meant for the customer.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "quote validation failed: " + strings.Join(e.Messages, "; ")
}

// PriceLookupError is reported per line and never aborts a submission;
// the affected line is priced at zero.
type PriceLookupError struct {
	ProductID string
	Err       error
}

func (e PriceLookupError) Error() string {
	return fmt.Sprintf("price lookup for product %q: %v", e.ProductID, e.Err)
}

func (e PriceLookupError) Unwrap() error { return e.Err }

// SubmissionError means the backend did not create the quote.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "quote submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// NotificationError is logged and reported but never returned: the quote
// already exists when notifications are attempted.
type NotificationError struct {
	Err error
}

func (e NotificationError) Error() string {
	return "quote notifications failed: " + e.Err.Error()
}

func (e NotificationError) Unwrap() error { return e.Err }
