//go:build !nopdf

package invoice

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
)

func defaultDocumentRenderer() DocumentRenderer { return PDFRenderer{} }

const pdfDescWidth = 45

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Description", 90, "L"},
	{"Qty", 20, "C"},
	{"Unit", 30, "R"},
	{"Amount", 30, "R"},
}

// PDFRenderer lays invoices out on A4 pages. Rows that overflow a page
// continue on the next one under a repeated column header.
type PDFRenderer struct{}

func (PDFRenderer) RenderDocument(inv *Invoice) ([]byte, error) {
	b, p := inv.Bill, inv.Patient

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(inv.Title, true)
	pdf.SetCreationDate(b.CreatedAt.UTC())
	pdf.SetModificationDate(b.CreatedAt.UTC())
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(inv.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	info := []string{
		fmt.Sprintf("Bill ID: %d", b.ID),
		"Date: " + b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		"",
		fmt.Sprintf("Patient: %s (%s)", p.Name, p.AgeGender()),
		"Phone: " + p.Phone,
		"Address: " + p.Address,
	}
	for _, line := range info {
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
	}
	header()

	const rowH = 6.0
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, it := range inv.Items {
		if pdf.GetY()+rowH > pageH-bottom-15 {
			pdf.AddPage()
			header()
		}
		cells := []string{
			tr(truncate(it.Description, pdfDescWidth)),
			fmt.Sprintf("%d", it.Quantity),
			billing.Money(it.UnitPrice),
			billing.Money(it.Amount),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, rowH, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "TOTAL: "+billing.Money(b.Total), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
