package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleSales() []model.Sale {
	return []model.Sale{{
		ID:             uuid.New(),
		InvoiceNumber:  "INV-20260101-0001",
		Status:         model.SaleCompleted,
		PaymentMethod:  model.PaymentCash,
		Subtotal:       decimal.NewFromInt(30000),
		Total:          decimal.NewFromInt(30000),
		AmountReceived: decimal.NewFromInt(50000),
		Change:         decimal.NewFromInt(20000),
		CreatedAt:      time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		Items:          []model.SaleItem{{Quantity: 3}},
	}}
}

func TestWriteCSV_Sales(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, SalesTable(sampleSales())))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "invoice", records[0][0])
	assert.Equal(t, "INV-20260101-0001", records[1][0])
	assert.Equal(t, "3", records[1][4])
	assert.Equal(t, "30000.00", records[1][8])
	assert.Equal(t, "20000.00", records[1][10])
}

func TestWriteXLSX_Products(t *testing.T) {
	barcode := "7790001"
	products := []model.Product{{
		ID: uuid.New(), Name: "Yerba", Barcode: &barcode,
		Price: decimal.NewFromInt(1500), Cost: decimal.NewFromInt(900),
		Stock: 4, MinStock: 2, Unit: "unit", Active: true,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, ProductsTable(products)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "name", rows[0][1])
	assert.Equal(t, "Yerba", rows[1][1])
	assert.Equal(t, "7790001", rows[1][2])
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	path, err := WriteFile(dir, KindSales, FormatCSV, SalesTable(sampleSales()), at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sales_20260304_050607.csv"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = WriteFile(dir, KindSales, "pdf", SalesTable(nil), at)
	assert.Error(t, err)
	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1)
}
