package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"logolate/go_backend/internal/domain/quote"
)

type notificationBudget struct {
	ID                string `json:"_id,omitempty"`
	NumeroPresupuesto string `json:"numeroPresupuesto,omitempty"`
	Estado            string `json:"estado,omitempty"`
	budgetBody
}

type emailBody struct {
	Tipo         string `json:"tipo"`
	Destinatario string `json:"destinatario"`
	Asunto       string `json:"asunto"`
	HTML         string `json:"html"`
}

type notificationBody struct {
	Presupuesto         notificationBudget `json:"presupuesto"`
	EmailAdministracion string             `json:"emailAdministracion"`
	Correos             []emailBody        `json:"correos"`
}

type rawOutcome struct {
	Tipo    string   `json:"tipo"`
	Enviado bool     `json:"enviado"`
	Fecha   flexTime `json:"fecha"`
	Error   string   `json:"error"`
}

// SendQuoteNotifications posts both emails to the batch endpoint. When the
// backend answers 2xx without per-recipient results every email counts as sent.
func (c *Client) SendQuoteNotifications(ctx context.Context, b quote.NotificationBatch) ([]quote.NotificationOutcome, error) {
	body := notificationBody{
		Presupuesto: notificationBudget{
			ID:                b.Quote.ID,
			NumeroPresupuesto: b.Quote.SequenceNumber,
			Estado:            string(b.Quote.Status),
			budgetBody:        newBudgetBody(b.Quote),
		},
		EmailAdministracion: b.AdminEmail,
	}
	for _, e := range b.Emails {
		body.Correos = append(body.Correos, emailBody{
			Tipo:         wireRole(e.Role),
			Destinatario: e.To,
			Asunto:       e.Subject,
			HTML:         e.HTML,
		})
	}

	data, err := c.do(ctx, http.MethodPost, "/api/send-presupuesto-notifications", nil, body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Resultados []rawOutcome `json:"resultados"`
	}
	if !isNull(data) && len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &resp); err != nil {
			c.log.Debug("notification response not understood, assuming sent")
		}
	}

	if len(resp.Resultados) == 0 {
		now := time.Now()
		out := make([]quote.NotificationOutcome, 0, len(b.Emails))
		for _, e := range b.Emails {
			out = append(out, quote.NotificationOutcome{RecipientRole: e.Role, Sent: true, SentAt: &now})
		}
		return out, nil
	}

	out := make([]quote.NotificationOutcome, 0, len(resp.Resultados))
	for _, r := range resp.Resultados {
		o := quote.NotificationOutcome{RecipientRole: domainRole(r.Tipo), Sent: r.Enviado, Error: r.Error}
		if r.Enviado && !r.Fecha.IsZero() {
			t := r.Fecha.Time
			o.SentAt = &t
		}
		out = append(out, o)
	}
	return out, nil
}

func wireRole(r quote.Role) string {
	if r == quote.RoleAdmin {
		return "admin"
	}
	return "cliente"
}

func domainRole(s string) quote.Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "administrador", "administracion":
		return quote.RoleAdmin
	}
	return quote.RoleCustomer
}
