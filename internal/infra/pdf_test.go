package infra

import (
	"os"
	"testing"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReceiptPDF(t *testing.T) {
	dir := t.TempDir()
	label := "Red"
	sale := &model.Sale{
		ID:             uuid.New(),
		InvoiceNumber:  "INV-20260301-0001",
		Subtotal:       decimal.NewFromInt(30000),
		Total:          decimal.NewFromInt(30000),
		PaymentMethod:  model.PaymentCash,
		AmountReceived: decimal.NewFromInt(50000),
		Change:         decimal.NewFromInt(20000),
		Status:         model.SaleCompleted,
		CreatedAt:      time.Now(),
		Items: []model.SaleItem{{
			ProductName:  "T-Shirt",
			VariantLabel: &label,
			Quantity:     3,
			UnitPrice:    decimal.NewFromInt(10000),
			Subtotal:     decimal.NewFromInt(30000),
		}},
	}

	path, err := GenerateReceiptPDF(sale, ReceiptHeader{StoreName: "Corner Shop", Currency: "PYG", Footer: "Thanks"}, dir)
	require.NoError(t, err)
	assert.Equal(t, ReceiptPath(dir, sale.InvoiceNumber), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
