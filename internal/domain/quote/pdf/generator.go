package pdf

import "logolate/go_backend/internal/domain/quote"

// Generator renders a budget as a printable document.
type Generator interface {
	Generate(q quote.Quote) ([]byte, error)
}
