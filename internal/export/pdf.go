package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"monthledger/internal/core"
)

// A4 layout in points.
const (
	pdfMarginLeft = 30.0
	pdfRowHeight  = 20.0
	pdfFooterY    = 30.0
	pdfTableTop   = 130.0
)

var pdfColumnWidths = []float64{120, 90, 90, 90, 90}

type rgb struct{ r, g, b int }

var (
	colorHeaderFill = rgb{128, 128, 128}
	colorHeaderText = rgb{245, 245, 245}
	colorBodyFill   = rgb{245, 245, 220}
	colorBlack      = rgb{0, 0, 0}
)

// PDFExporter renders an A4 report: title, parties, table, totals, footer.
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter returns a PDF exporter. A nil clock means time.Now.
func NewPDFExporter(now func() time.Time) *PDFExporter {
	if now == nil {
		now = time.Now
	}
	return &PDFExporter{now: now}
}

func (*PDFExporter) ContentType() string { return "application/pdf" }
func (*PDFExporter) Extension() string   { return "pdf" }

func (p *PDFExporter) Export(w io.Writer, v core.View) error {
	if v.IsEmpty() {
		return ErrEmptyLedger
	}

	generated := p.now()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(generated)
	pdf.SetTitle(reportTitle, true)
	pdf.SetMargins(pdfMarginLeft, pdfTableTop, pdfMarginLeft)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	pdf.SetFooterFunc(func() {
		pdf.SetXY(pdfMarginLeft, pageH-pdfFooterY)
		pdf.SetFont("Helvetica", "", 10)
		setText(pdf, colorBlack)
		pdf.CellFormat(0, 10, "Generated on "+generated.Format("2006-01-02 15:04:05"), "", 0, "L", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(0, 40)
	pdf.CellFormat(pageW, 20, reportTitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(pdfMarginLeft, 70)
	pdf.CellFormat(0, 14, tr("Recipient Name: "+v.Recipient), "", 1, "L", false, 0, "")
	pdf.SetX(pdfMarginLeft)
	pdf.CellFormat(0, 14, tr("Payor Name: "+v.Payor), "", 1, "L", false, 0, "")

	pdf.SetY(pdfTableTop)
	drawHeader(pdf)

	pdf.SetDrawColor(colorBlack.r, colorBlack.g, colorBlack.b)
	pdf.SetLineWidth(1)
	bottom := pageH - pdfFooterY - 2*pdfRowHeight
	for _, row := range rows(v) {
		if pdf.GetY()+pdfRowHeight > bottom {
			pdf.AddPage()
			pdf.SetY(pdfTableTop - 2*pdfRowHeight)
			drawHeader(pdf)
		}
		pdf.SetFont("Helvetica", "", 10)
		setText(pdf, colorBlack)
		pdf.SetFillColor(colorBodyFill.r, colorBodyFill.g, colorBodyFill.b)
		pdf.SetX(pdfMarginLeft)
		for i, cell := range row {
			pdf.CellFormat(pdfColumnWidths[i], pdfRowHeight, cell, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(pdfRowHeight)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(colorHeaderFill.r, colorHeaderFill.g, colorHeaderFill.b)
	setText(pdf, colorHeaderText)
	pdf.SetDrawColor(colorBlack.r, colorBlack.g, colorBlack.b)
	pdf.SetX(pdfMarginLeft)
	for i, h := range columns {
		pdf.CellFormat(pdfColumnWidths[i], pdfRowHeight+4, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(pdfRowHeight + 4)
}

func setText(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetTextColor(c.r, c.g, c.b)
}
