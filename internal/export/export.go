// Package export renders sales and product listings as CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	KindSales    = "sales"
	KindProducts = "products"
)

// Table is a header row plus data rows, the common shape of every export.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

func SalesTable(sales []model.Sale) Table {
	t := Table{
		Sheet: "Sales",
		Header: []string{"invoice", "date", "status", "payment_method", "items",
			"subtotal", "discount", "tax", "total", "received", "change"},
	}
	for _, s := range sales {
		items := 0
		for _, it := range s.Items {
			items += it.Quantity
		}
		t.Rows = append(t.Rows, []string{
			s.InvoiceNumber,
			s.CreatedAt.UTC().Format(time.RFC3339),
			s.Status,
			s.PaymentMethod,
			strconv.Itoa(items),
			s.Subtotal.StringFixed(2),
			s.Discount.StringFixed(2),
			s.Tax.StringFixed(2),
			s.Total.StringFixed(2),
			s.AmountReceived.StringFixed(2),
			s.Change.StringFixed(2),
		})
	}
	return t
}

func ProductsTable(products []model.Product) Table {
	t := Table{
		Sheet:  "Products",
		Header: []string{"id", "name", "barcode", "identifier", "price", "cost", "stock", "min_stock", "unit", "active"},
	}
	for _, p := range products {
		t.Rows = append(t.Rows, []string{
			p.ID.String(),
			p.Name,
			deref(p.Barcode),
			deref(p.Identifier),
			p.Price.StringFixed(2),
			p.Cost.StringFixed(2),
			strconv.Itoa(p.Stock),
			strconv.Itoa(p.MinStock),
			p.Unit,
			strconv.FormatBool(p.Active),
		})
	}
	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil && len(t.Header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
		_ = f.SetCellStyle(sheet, "A1", last, bold)
	}
	_, err = f.WriteTo(w)
	return err
}

// WriteFile writes t into dir as <kind>_<timestamp>.<format> and returns the path.
func WriteFile(dir, kind, format string, t Table, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.%s", kind, at.UTC().Format("20060102_150405"), format)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create file: %w", err)
	}
	switch format {
	case FormatCSV:
		err = WriteCSV(f, t)
	case FormatXLSX:
		err = WriteXLSX(f, t)
	default:
		err = fmt.Errorf("export: unsupported format %q", format)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
