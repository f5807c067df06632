package quote

import (
	"time"

	"logolate/go_backend/internal/domain/cart"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusExpired    Status = "expired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSent, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// Stage is a step of quote assembly. The flow only moves forward.
type Stage int

const (
	StageDraft Stage = iota
	StageValidated
	StagePriceEnriched
	StageSubmitted
	StageNotificationsAttempted
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageDraft:
		return "draft"
	case StageValidated:
		return "validated"
	case StagePriceEnriched:
		return "price_enriched"
	case StageSubmitted:
		return "submitted"
	case StageNotificationsAttempted:
		return "notifications_attempted"
	case StageDone:
		return "done"
	}
	return "unknown"
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type Quote struct {
	ID               string     `json:"id"`
	SequenceNumber   string     `json:"sequenceNumber"`
	Client           Client     `json:"client"`
	Lines            []Line     `json:"lines"`
	TotalPrice       float64    `json:"totalPrice"`
	Status           Status     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CompanyLogo      string     `json:"companyLogo,omitempty"`
	AcceptsMarketing bool       `json:"acceptsMarketing"`
}

type Client struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Company string `json:"company,omitempty"`
}

// Line is a cart line once its price has been looked up.
type Line struct {
	ProductID   string  `json:"productId"`
	LegacyID    int64   `json:"legacyId,omitempty"`
	Name        string  `json:"name"`
	Reference   string  `json:"reference"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	MinQuantity int     `json:"minQuantity,omitempty"`
	Subtotal    float64 `json:"subtotal"`
}

func (l Line) Key() string {
	return cart.Line{ProductID: l.ProductID, LegacyID: l.LegacyID}.Key()
}

// Total sums line subtotals. Values are not rounded.
func Total(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal
	}
	return total
}

func lineFromCart(l cart.Line) Line {
	return Line{
		ProductID:   l.ProductID,
		LegacyID:    l.LegacyID,
		Name:        l.DisplayName,
		Reference:   l.Reference,
		UnitPrice:   l.UnitPrice,
		Quantity:    l.Quantity,
		MinQuantity: l.MinQuantity,
	}
}

// Request is everything the storefront submits to create a quote.
type Request struct {
	Client           Client
	Lines            []cart.Line
	Notes            string
	CompanyLogo      string
	AcceptsMarketing bool
	ExpiresAt        *time.Time
}
