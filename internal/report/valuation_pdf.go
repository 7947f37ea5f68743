// Package report renders printable versions of the sales and stock reports.
package report

import (
	"fmt"
	"io"

	"go-pos-inventory/internal/service"

	"github.com/go-pdf/fpdf"
)

const maxNameLen = 40

// WriteStockValuation renders the stock valuation as an A4 PDF: one table per
// category with a subtotal row, then the grand total.
func WriteStockValuation(w io.Writer, v *service.StockValuation, storeName string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetTitle("Stock Valuation", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, storeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Stock Valuation - "+v.GeneratedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	cols := []float64{contentW * 0.40, contentW * 0.12, contentW * 0.16, contentW * 0.16, contentW * 0.16}
	headers := []string{"Product", "Qty", "Unit Cost", "Cost Value", "Retail Value"}

	for _, cat := range v.Categories {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 7, cat.Category, "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range headers {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(cols[i], 6, h, "B", 0, align, true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, item := range cat.Items {
			name := item.Name
			if len(name) > maxNameLen {
				name = name[:maxNameLen-3] + "..."
			}
			pdf.CellFormat(cols[0], 6, name, "", 0, "L", false, 0, "")
			pdf.CellFormat(cols[1], 6, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
			pdf.CellFormat(cols[2], 6, item.UnitCost.StringFixed(2), "", 0, "R", false, 0, "")
			pdf.CellFormat(cols[3], 6, item.CostValue.StringFixed(2), "", 0, "R", false, 0, "")
			pdf.CellFormat(cols[4], 6, item.RetailValue.StringFixed(2), "", 1, "R", false, 0, "")
		}

		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(cols[0], 6, "Subtotal", "T", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 6, fmt.Sprintf("%d", cat.Units), "T", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 6, "", "T", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 6, cat.CostValue.StringFixed(2), "T", 0, "R", false, 0, "")
		pdf.CellFormat(cols[4], 6, cat.RetailValue.StringFixed(2), "T", 1, "R", false, 0, "")
		pdf.Ln(3)
	}

	if len(v.Categories) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(contentW, 8, "No products in inventory.", "", 1, "C", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(cols[0], 8, "Grand Total", "TB", 0, "L", false, 0, "")
	pdf.CellFormat(cols[1], 8, fmt.Sprintf("%d", v.Units), "TB", 0, "R", false, 0, "")
	pdf.CellFormat(cols[2], 8, "", "TB", 0, "R", false, 0, "")
	pdf.CellFormat(cols[3], 8, v.CostValue.StringFixed(2), "TB", 0, "R", false, 0, "")
	pdf.CellFormat(cols[4], 8, v.RetailValue.StringFixed(2), "TB", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render stock valuation: %w", err)
	}
	return nil
}
