package quote

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const DefaultAdminEmail = "admin@logolate.com"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Email is one rendered notification.
type Email struct {
	Role    Role   `json:"role"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NotificationBatch is what the backend's batch endpoint receives.
type NotificationBatch struct {
	Quote      Quote   `json:"quote"`
	AdminEmail string  `json:"adminEmail"`
	Emails     []Email `json:"emails"`
}

type NotificationOutcome struct {
	RecipientRole Role       `json:"recipientRole"`
	Sent          bool       `json:"sent"`
	SentAt        *time.Time `json:"sentAt,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// NotificationReport tells the caller what happened to notifications. It is
// informational only: a failed report never turns a created quote into an error.
type NotificationReport struct {
	Attempted  bool                  `json:"attempted"`
	AdminEmail string                `json:"adminEmail,omitempty"`
	Outcomes   []NotificationOutcome `json:"outcomes,omitempty"`
	Error      string                `json:"error,omitempty"`
	Err        error                 `json:"-"`
}

func (r NotificationReport) AllSent() bool {
	if !r.Attempted || r.Err != nil || len(r.Outcomes) == 0 {
		return false
	}
	for _, o := range r.Outcomes {
		if !o.Sent {
			return false
		}
	}
	return true
}

type emailView struct {
	Quote     Quote
	Number    string
	Total     string
	CreatedAt string
	ExpiresAt string
	Lines     []emailLine
}

type emailLine struct {
	Name      string
	Reference string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

var adminTemplate = template.Must(template.New("admin").Parse(`<h2>Nuevo presupuesto {{.Number}}</h2>
<p><strong>Cliente:</strong> {{.Quote.Client.Name}} &lt;{{.Quote.Client.Email}}&gt;</p>
{{if .Quote.Client.Phone}}<p><strong>Teléfono:</strong> {{.Quote.Client.Phone}}</p>{{end}}
{{if .Quote.Client.Company}}<p><strong>Empresa:</strong> {{.Quote.Client.Company}}</p>{{end}}
{{if .Quote.Client.Address}}<p><strong>Dirección:</strong> {{.Quote.Client.Address}}</p>{{end}}
<table>
<tr><th>Producto</th><th>Referencia</th><th>Cantidad</th><th>Precio</th><th>Subtotal</th></tr>
{{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Reference}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.Subtotal}}</td></tr>
{{end}}</table>
<p><strong>Total:</strong> {{.Total}}</p>
{{if .Quote.Notes}}<p><strong>Notas:</strong> {{.Quote.Notes}}</p>{{end}}
<p>Publicidad aceptada: {{if .Quote.AcceptsMarketing}}sí{{else}}no{{end}}</p>
<p>Recibido el {{.CreatedAt}}</p>
`))

var customerTemplate = template.Must(template.New("customer").Parse(`<h2>Hola {{.Quote.Client.Name}},</h2>
<p>Hemos recibido tu solicitud de presupuesto {{.Number}}. Nuestro equipo la revisará y te responderá lo antes posible.</p>
<table>
<tr><th>Producto</th><th>Cantidad</th><th>Subtotal</th></tr>
{{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Subtotal}}</td></tr>
{{end}}</table>
<p><strong>Total estimado:</strong> {{.Total}}</p>
{{if .ExpiresAt}}<p>Presupuesto válido hasta el {{.ExpiresAt}}.</p>{{end}}
<p>Gracias por confiar en Logolate.</p>
`))

// BuildNotifications renders the admin alert and the customer confirmation for q.
func BuildNotifications(q Quote, adminEmail string) (NotificationBatch, error) {
	view := newEmailView(q)

	var admin, customer bytes.Buffer
	if err := adminTemplate.Execute(&admin, view); err != nil {
		return NotificationBatch{}, fmt.Errorf("render admin email: %w", err)
	}
	if err := customerTemplate.Execute(&customer, view); err != nil {
		return NotificationBatch{}, fmt.Errorf("render customer email: %w", err)
	}

	return NotificationBatch{
		Quote:      q,
		AdminEmail: adminEmail,
		Emails: []Email{
			{
				Role:    RoleAdmin,
				To:      adminEmail,
				Subject: fmt.Sprintf("Nuevo presupuesto %s de %s", view.Number, q.Client.Name),
				HTML:    admin.String(),
			},
			{
				Role:    RoleCustomer,
				To:      q.Client.Email,
				Subject: fmt.Sprintf("Hemos recibido tu presupuesto %s", view.Number),
				HTML:    customer.String(),
			},
		},
	}, nil
}

func newEmailView(q Quote) emailView {
	number := q.SequenceNumber
	if number == "" {
		number = q.ID
	}
	if number != "" {
		number = "#" + number
	}
	v := emailView{
		Quote:     q,
		Number:    number,
		Total:     FormatPrice(q.TotalPrice),
		CreatedAt: q.CreatedAt.Format("02/01/2006 15:04"),
	}
	if q.ExpiresAt != nil {
		v.ExpiresAt = q.ExpiresAt.Format("02/01/2006")
	}
	for _, l := range q.Lines {
		v.Lines = append(v.Lines, emailLine{
			Name:      l.Name,
			Reference: l.Reference,
			Quantity:  l.Quantity,
			UnitPrice: FormatPrice(l.UnitPrice),
			Subtotal:  FormatPrice(l.Subtotal),
		})
	}
	return v
}
