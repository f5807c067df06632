package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"logolate/go_backend/internal/domain/catalog"
	"logolate/go_backend/internal/domain/quote"
)

type clientBody struct {
	Nombre    string `json:"nombre"`
	Email     string `json:"email"`
	Telefono  string `json:"telefono,omitempty"`
	Direccion string `json:"direccion,omitempty"`
	Empresa   string `json:"empresa,omitempty"`
}

type budgetLineBody struct {
	Producto       string  `json:"producto"`
	Nombre         string  `json:"nombre"`
	Referencia     string  `json:"referencia"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precioUnitario"`
	Subtotal       float64 `json:"subtotal"`
}

// budgetBody is the POST /budgets payload.
type budgetBody struct {
	Cliente                    clientBody       `json:"cliente"`
	Productos                  []budgetLineBody `json:"productos"`
	LogotipoEmpresa            string           `json:"logotipoEmpresa,omitempty"`
	AceptaCorreosPublicitarios bool             `json:"aceptaCorreosPublicitarios"`
	Notas                      string           `json:"notas,omitempty"`
	PrecioTotal                float64          `json:"precioTotal"`
	FechaVencimiento           *time.Time       `json:"fechaVencimiento,omitempty"`
}

func newBudgetBody(q quote.Quote) budgetBody {
	b := budgetBody{
		Cliente: clientBody{
			Nombre:    q.Client.Name,
			Email:     q.Client.Email,
			Telefono:  q.Client.Phone,
			Direccion: q.Client.Address,
			Empresa:   q.Client.Company,
		},
		Productos:                  make([]budgetLineBody, 0, len(q.Lines)),
		LogotipoEmpresa:            q.CompanyLogo,
		AceptaCorreosPublicitarios: q.AcceptsMarketing,
		Notas:                      q.Notes,
		PrecioTotal:                q.TotalPrice,
		FechaVencimiento:           q.ExpiresAt,
	}
	for _, l := range q.Lines {
		b.Productos = append(b.Productos, budgetLineBody{
			Producto:       l.Key(),
			Nombre:         l.Name,
			Referencia:     l.Reference,
			Cantidad:       l.Quantity,
			PrecioUnitario: l.UnitPrice,
			Subtotal:       l.Subtotal,
		})
	}
	return b
}

// rawClient takes strings or numbers in every field.
type rawClient struct {
	Nombre    json.RawMessage `json:"nombre"`
	Name      json.RawMessage `json:"name"`
	Email     json.RawMessage `json:"email"`
	Telefono  json.RawMessage `json:"telefono"`
	Phone     json.RawMessage `json:"phone"`
	Direccion json.RawMessage `json:"direccion"`
	Address   json.RawMessage `json:"address"`
	Empresa   json.RawMessage `json:"empresa"`
	Company   json.RawMessage `json:"company"`
}

type rawBudgetLine struct {
	Producto       json.RawMessage     `json:"producto"`
	Nombre         string              `json:"nombre"`
	Referencia     string              `json:"referencia"`
	Cantidad       *catalog.FlexNumber `json:"cantidad"`
	PrecioUnitario *catalog.FlexNumber `json:"precioUnitario"`
	Subtotal       *catalog.FlexNumber `json:"subtotal"`
}

type rawBudget struct {
	MongoID                    json.RawMessage     `json:"_id"`
	ID                         json.RawMessage     `json:"id"`
	NumeroPresupuesto          json.RawMessage     `json:"numeroPresupuesto"`
	Cliente                    rawClient           `json:"cliente"`
	Productos                  []rawBudgetLine     `json:"productos"`
	PrecioTotal                *catalog.FlexNumber `json:"precioTotal"`
	Estado                     json.RawMessage     `json:"estado"`
	FechaCreacion              flexTime            `json:"fechaCreacion"`
	CreatedAt                  flexTime            `json:"createdAt"`
	FechaVencimiento           flexTime            `json:"fechaVencimiento"`
	Notas                      string              `json:"notas"`
	LogotipoEmpresa            string              `json:"logotipoEmpresa"`
	AceptaCorreosPublicitarios bool                `json:"aceptaCorreosPublicitarios"`
}

func (r rawBudget) quote(log *zap.Logger) quote.Quote {
	q := quote.Quote{
		ID:             firstNonEmpty(scalarText(r.MongoID), scalarText(r.ID)),
		SequenceNumber: scalarText(r.NumeroPresupuesto),
		Client: quote.Client{
			Name:    firstNonEmpty(scalarText(r.Cliente.Nombre), scalarText(r.Cliente.Name)),
			Email:   scalarText(r.Cliente.Email),
			Phone:   firstNonEmpty(scalarText(r.Cliente.Telefono), scalarText(r.Cliente.Phone)),
			Address: firstNonEmpty(scalarText(r.Cliente.Direccion), scalarText(r.Cliente.Address)),
			Company: firstNonEmpty(scalarText(r.Cliente.Empresa), scalarText(r.Cliente.Company)),
		},
		Status:           quote.Status(strings.ToLower(scalarText(r.Estado))),
		Notes:            r.Notas,
		CompanyLogo:      r.LogotipoEmpresa,
		AcceptsMarketing: r.AceptaCorreosPublicitarios,
	}
	if r.PrecioTotal != nil {
		q.TotalPrice = float64(*r.PrecioTotal)
	}
	if !r.FechaCreacion.IsZero() {
		q.CreatedAt = r.FechaCreacion.Time
	} else {
		q.CreatedAt = r.CreatedAt.Time
	}
	if !r.FechaVencimiento.IsZero() {
		exp := r.FechaVencimiento.Time
		q.ExpiresAt = &exp
	}
	for _, rl := range r.Productos {
		q.Lines = append(q.Lines, rl.line(log))
	}
	return q
}

func (rl rawBudgetLine) line(log *zap.Logger) quote.Line {
	l := quote.Line{
		Name:      strings.TrimSpace(rl.Nombre),
		Reference: strings.TrimSpace(rl.Referencia),
	}
	ref := bytes.TrimSpace(rl.Producto)
	if len(ref) > 0 && ref[0] == '{' {
		p, err := catalog.Normalize(ref)
		if err != nil {
			var id struct {
				MongoID json.RawMessage `json:"_id"`
				ID      json.RawMessage `json:"id"`
			}
			_ = json.Unmarshal(ref, &id)
			l.ProductID = firstNonEmpty(scalarText(id.MongoID), scalarText(id.ID))
			log.Warn("embedded budget product unreadable, keeping its id only",
				zap.String("product_id", l.ProductID), zap.Error(err))
		} else {
			l.ProductID = p.ID
			l.LegacyID = p.LegacyID
			l.Name = firstNonEmpty(l.Name, p.Name)
			l.Reference = firstNonEmpty(l.Reference, p.Reference)
			l.MinQuantity = p.MinQuantity
		}
	} else {
		l.ProductID = scalarText(ref)
	}
	if rl.Cantidad != nil {
		l.Quantity = int(*rl.Cantidad)
	}
	if rl.PrecioUnitario != nil {
		l.UnitPrice = float64(*rl.PrecioUnitario)
	}
	if rl.Subtotal != nil {
		l.Subtotal = float64(*rl.Subtotal)
	} else {
		l.Subtotal = l.UnitPrice * float64(l.Quantity)
	}
	return l
}

func (c *Client) decodeBudget(data json.RawMessage) (quote.Quote, error) {
	var r rawBudget
	if err := json.Unmarshal(data, &r); err != nil {
		return quote.Quote{}, fmt.Errorf("decode budget: %w", err)
	}
	return r.quote(c.log), nil
}

// CreateBudget posts q and returns the backend's view of the created budget.
// Once the backend has accepted the budget an unreadable reply is logged and
// q is returned as submitted, since the budget exists either way.
func (c *Client) CreateBudget(ctx context.Context, q quote.Quote) (quote.Quote, error) {
	data, err := c.do(ctx, http.MethodPost, "/budgets", nil, newBudgetBody(q))
	if err != nil {
		return quote.Quote{}, err
	}
	created, err := c.decodeBudget(data)
	if err != nil {
		c.log.Warn("budget created but reply unreadable, using submitted quote",
			zap.String("client_email", q.Client.Email), zap.Error(err))
		return q, nil
	}
	return created, nil
}

func (c *Client) GetBudget(ctx context.Context, id string) (quote.Quote, error) {
	data, err := c.do(ctx, http.MethodGet, "/budgets/"+escape(id), nil, nil)
	if err != nil {
		return quote.Quote{}, err
	}
	return c.decodeBudget(data)
}

// ListBudgets returns every budget, or only those in status when it is set.
func (c *Client) ListBudgets(ctx context.Context, status quote.Status) ([]quote.Quote, error) {
	q := url.Values{}
	if status != "" {
		q.Set("estado", string(status))
	}
	data, err := c.do(ctx, http.MethodGet, "/budgets", q, nil)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, nil
	}
	var raws []rawBudget
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode budgets: %w", err)
	}
	out := make([]quote.Quote, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.quote(c.log))
	}
	return out, nil
}

func (c *Client) UpdateBudgetStatus(ctx context.Context, id string, status quote.Status) (quote.Quote, error) {
	if !status.Valid() {
		return quote.Quote{}, fmt.Errorf("invalid budget status %q", status)
	}
	data, err := c.do(ctx, http.MethodPut, "/budgets/"+escape(id)+"/status", nil, map[string]string{"estado": string(status)})
	if err != nil {
		return quote.Quote{}, err
	}
	return c.decodeBudget(data)
}

// flexTime tolerates empty and non-RFC3339 dates by leaving the value zero.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || strings.TrimSpace(s) == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return nil
}

// scalarText renders a JSON string or number as text.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
