package infra

// pdf.go renders a thermal-receipt sized PDF for a completed sale:
// store header, invoice number and date, item table, totals, payment and
// change, and the configured footer. Output: dir/receipt_<invoice>.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/go-pdf/fpdf"
)

// ReceiptHeader carries the shop settings printed on every receipt.
type ReceiptHeader struct {
	StoreName string
	Currency  string
	Footer    string
}

// ReceiptPath is where the receipt for invoice is stored inside dir.
func ReceiptPath(dir, invoice string) string {
	return filepath.Join(dir, "receipt_"+invoice+".pdf")
}

// GenerateReceiptPDF writes the receipt for sale into dir and returns its path.
func GenerateReceiptPDF(sale *model.Sale, header ReceiptHeader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := ReceiptPath(dir, sale.InvoiceNumber)

	// 80mm roll; height grows with the item count.
	height := 110 + float64(len(sale.Items))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(header.StoreName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Invoice "+sale.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if sale.Status == model.SaleCancelled {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "CANCELLED", "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := item.ProductName
		if item.VariantLabel != nil {
			name += " (" + *item.VariantLabel + ")"
		}
		if len(name) > 26 {
			name = name[:25] + "."
		}
		pdf.CellFormat(col1, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, money(header.Currency, item.Subtotal.StringFixed(2)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	line := func(label, value string) {
		pdf.CellFormat(col1+col2, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7)
	line("Subtotal:", money(header.Currency, sale.Subtotal.StringFixed(2)))
	if !sale.Discount.IsZero() {
		line("Discount:", "-"+money(header.Currency, sale.Discount.StringFixed(2)))
	}
	if !sale.Tax.IsZero() {
		line(fmt.Sprintf("Tax (%s%%):", sale.TaxRate.String()), money(header.Currency, sale.Tax.StringFixed(2)))
	}
	pdf.SetFont("Helvetica", "B", 9)
	line("TOTAL:", money(header.Currency, sale.Total.StringFixed(2)))

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	line("Paid ("+sale.PaymentMethod+"):", money(header.Currency, sale.AmountReceived.StringFixed(2)))
	if sale.Change.IsPositive() {
		line("Change:", money(header.Currency, sale.Change.StringFixed(2)))
	}

	if header.Footer != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(contentW, 4, tr(header.Footer), "", 1, "C", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func money(currency, amount string) string {
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}
