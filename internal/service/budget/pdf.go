package budget

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jwalitptl/dental-admin/internal/model"
)

const (
	margin    = 15.0
	rowHeight = 8.0
)

var columns = []struct {
	header string
	width  float64
	align  string
}{
	{"Procedimiento", 70, "L"},
	{"Cant.", 20, "C"},
	{"P. Unit.", 30, "R"},
	{"Subtotal", 30, "R"},
	{"Pagado", 30, "R"},
}

// PDFOptions controls the look of the exported document
type PDFOptions struct {
	ClinicName string
	LogoPath   string
	// Currency prefixes every amount; empty means model.DefaultCurrency.
	Currency string
	// Compress is disabled in tests so page content stays searchable
	Compress bool
}

// Money formats m in the configured currency
func (o PDFOptions) Money(m model.Money) string {
	return m.Format(o.Currency)
}

type footerLine struct {
	Label  string
	Amount model.Money
	Strong bool
}

func footerLines(t model.BudgetTotals) []footerLine {
	return []footerLine{
		{Label: "Total", Amount: t.Total},
		{Label: "Pagado", Amount: t.Paid},
		{Label: "Por pagar", Amount: t.Owed, Strong: true},
	}
}

// Filename is Presupuesto_<Surname>_<IDSuffix>.pdf
func Filename(b *model.Budget) string {
	surname := b.PatientSurname
	if surname == "" {
		surname = "Paciente"
	}
	return fmt.Sprintf("Presupuesto_%s_%s.pdf", surname, b.IDSuffix())
}

func render(b *model.Budget, opts PDFOptions, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetCompression(opts.Compress)
	pdf.SetCreationDate(now)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(tr("Presupuesto "+b.PatientName), false)
	pdf.SetCreator(tr(opts.ClinicName), false)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d/{nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	textX := margin
	if opts.LogoPath != "" {
		if _, err := os.Stat(opts.LogoPath); err == nil {
			pdf.ImageOptions(opts.LogoPath, margin, margin, 25, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
			textX += 30
		}
	}
	pdf.SetXY(textX, margin)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(opts.ClinicName), "", 1, "L", false, 0, "")
	pdf.SetX(textX)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Emitido: "+now.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Presupuesto N° "+b.ID), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr("Paciente: "+b.PatientName), "", 1, "L", false, 0, "")
	if !b.CreatedAt.IsZero() {
		pdf.CellFormat(0, 7, "Fecha: "+b.CreatedAt.Format("02/01/2006"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(220, 235, 245)
		for _, c := range columns {
			pdf.CellFormat(c.width, rowHeight, tr(c.header), "1", 0, c.align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if bottom < 20 {
		bottom = 20
	}

	header()
	for _, it := range b.Items {
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		cells := []string{
			it.Procedure,
			fmt.Sprintf("%d", it.Quantity),
			opts.Money(it.UnitPrice),
			opts.Money(it.Subtotal()),
			opts.Money(it.AmountPaid),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, rowHeight, tr(cells[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	labelWidth := columns[0].width + columns[1].width + columns[2].width + columns[3].width
	amountWidth := columns[4].width
	for _, line := range footerLines(b.Totals()) {
		if line.Strong {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.SetFillColor(250, 225, 210)
		} else {
			pdf.SetFont("Helvetica", "", 11)
		}
		pdf.CellFormat(labelWidth, rowHeight, line.Label, "1", 0, "R", line.Strong, 0, "")
		pdf.CellFormat(amountWidth, rowHeight, tr(opts.Money(line.Amount)), "1", 1, "R", line.Strong, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render budget pdf: %w", err)
	}
	return buf.Bytes(), nil
}
