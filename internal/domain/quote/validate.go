package quote

import (
	"fmt"
	"net/mail"
	"strings"

	"logolate/go_backend/internal/domain/cart"
)

const MsgNoProducts = "no products in the quote request"

// Validate checks cart lines before anything is sent to the backend and
// returns human-readable messages; nil means the lines are valid.
func Validate(lines []cart.Line) []string {
	if len(lines) == 0 {
		return []string{MsgNoProducts}
	}
	var msgs []string
	for i, l := range lines {
		label := lineLabel(i, l)
		if l.Key() == "" {
			msgs = append(msgs, fmt.Sprintf("%s: missing product id", label))
		}
		if strings.TrimSpace(l.DisplayName) == "" {
			msgs = append(msgs, fmt.Sprintf("%s: missing product name", label))
		}
		if strings.TrimSpace(l.Reference) == "" {
			msgs = append(msgs, fmt.Sprintf("%s: missing product reference", label))
		}
		if l.Quantity <= 0 {
			msgs = append(msgs, fmt.Sprintf("%s: quantity must be greater than zero", label))
			continue
		}
		if l.MinQuantity > 0 && l.Quantity < l.MinQuantity {
			msgs = append(msgs, fmt.Sprintf("%s: quantity %d is below the minimum order quantity of %d",
				label, l.Quantity, l.MinQuantity))
		}
	}
	return msgs
}

// ValidateClient checks the contact data a quote needs.
func ValidateClient(c Client) []string {
	var msgs []string
	if strings.TrimSpace(c.Name) == "" {
		msgs = append(msgs, "client name is required")
	}
	email := strings.TrimSpace(c.Email)
	if email == "" {
		msgs = append(msgs, "client email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		msgs = append(msgs, fmt.Sprintf("client email %q is not valid", email))
	}
	return msgs
}

func lineLabel(i int, l cart.Line) string {
	if name := strings.TrimSpace(l.DisplayName); name != "" {
		return name
	}
	return fmt.Sprintf("line %d", i+1)
}
