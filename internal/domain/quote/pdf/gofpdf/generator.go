package gofpdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"logolate/go_backend/internal/domain/quote"
)

type Generator struct {
	log *zap.Logger
	now func() time.Time
}

func New(log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{log: log, now: time.Now}
}

// Generate lays the budget out on a single A4 page set in core Helvetica.
// Text goes through the cp1252 translator so accents and the euro sign survive.
func (g *Generator) Generate(q quote.Quote) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Presupuesto Logolate"), false)
	pdf.AddPage()

	number := q.SequenceNumber
	if number == "" {
		number = q.ID
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Presupuesto Logolate"))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Nº %s del %s", number, q.CreatedAt.Format("02/01/2006"))))
	pdf.Ln(6)
	if q.Status != "" {
		pdf.Cell(0, 6, tr("Estado: "+string(q.Status)))
		pdf.Ln(6)
	}
	if q.ExpiresAt != nil {
		pdf.Cell(0, 6, tr("Válido hasta: "+q.ExpiresAt.Format("02/01/2006")))
		pdf.Ln(6)
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, tr("Cliente"))
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range []string{q.Client.Name, q.Client.Company, q.Client.Email, q.Client.Phone, q.Client.Address} {
		if row == "" {
			continue
		}
		pdf.Cell(0, 5, tr(row))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(80, 7, tr("Producto"))
	pdf.Cell(30, 7, tr("Referencia"))
	pdf.Cell(20, 7, tr("Cantidad"))
	pdf.Cell(30, 7, tr("Precio"))
	pdf.Cell(30, 7, tr("Subtotal"))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	for _, l := range q.Lines {
		pdf.Cell(80, 6, tr(trim(l.Name, 45)))
		pdf.Cell(30, 6, tr(trim(l.Reference, 16)))
		pdf.Cell(20, 6, fmt.Sprintf("%d", l.Quantity))
		pdf.Cell(30, 6, tr(quote.FormatPrice(l.UnitPrice)))
		pdf.Cell(30, 6, tr(quote.FormatPrice(l.Subtotal)))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, tr("Total: "+quote.FormatPrice(q.TotalPrice)))
	pdf.Ln(8)

	if q.Notes != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr("Notas: "+q.Notes), "", "L", false)
		pdf.Ln(2)
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.Cell(0, 5, tr("Logolate · Chocolates y caramelos personalizados"))
	pdf.Ln(5)
	pdf.Cell(0, 5, tr("Generado: "+g.now().Format(time.RFC3339)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.log.Error("quote pdf output failed", zap.String("quote_id", q.ID), zap.Error(err))
		return nil, err
	}
	return buf.Bytes(), nil
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
