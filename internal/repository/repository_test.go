package repository

import (
	"context"
	"testing"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"
	"github.com/xZoluGames/InventarioApp-sub001/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func TestProductRepo_FindAndList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	cola := testutil.SeedProduct(t, db, "Coca Cola 500ml", 8000, 10)
	cola.Barcode = strPtr("7790895000997")
	require.NoError(t, db.Save(cola).Error)
	testutil.SeedProduct(t, db, "Agua Mineral", 5000, 1)

	found, err := repo.FindByBarcode(ctx, "7790895000997")
	require.NoError(t, err)
	assert.Equal(t, cola.ID, found.ID)

	_, err = repo.FindByBarcode(ctx, "0000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, total, err := repo.List(ctx, dto.ProductFilter{Query: "cola", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Coca Cola 500ml", list[0].Name)

	low, err := repo.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Agua Mineral", low[0].Name)
}

func TestSaleRepo_NextInvoiceNumber(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSaleRepository(db)
	user := testutil.SeedUser(t, db, "cashier", session.RoleEmployee)
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	first, err := repo.NextInvoiceNumberTx(db, at)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260314-0001", first)

	sale := &model.Sale{
		InvoiceNumber: first, UserID: user.ID,
		Subtotal: decimal.NewFromInt(100), Total: decimal.NewFromInt(100),
		AmountReceived: decimal.NewFromInt(100), PaymentMethod: model.PaymentCash,
		Status: model.SaleCompleted,
	}
	require.NoError(t, repo.CreateTx(db, sale))

	second, err := repo.NextInvoiceNumberTx(db, at)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260314-0002", second)

	other, err := repo.NextInvoiceNumberTx(db, at.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "INV-20260315-0001", other)
}

func TestSyncQueueRepo_FailedAtRetryCeiling(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSyncQueueRepository(db)
	ctx := context.Background()

	entry := &model.SyncQueueEntry{EntityType: model.EntityProduct, Operation: model.SyncUpdate, Payload: "{}"}
	require.NoError(t, repo.EnqueueTx(db, entry))

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.MarkFailedAttempt(ctx, entry.ID, "timeout", 3))
	}
	pending, failed, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)
	assert.EqualValues(t, 0, failed)

	require.NoError(t, repo.MarkFailedAttempt(ctx, entry.ID, "timeout", 3))
	pending, failed, err = repo.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, pending)
	assert.EqualValues(t, 1, failed)

	var stored model.SyncQueueEntry
	require.NoError(t, db.Where("id = ?", entry.ID).First(&stored).Error)
	assert.Equal(t, 3, stored.RetryCount)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, "timeout", *stored.LastError)

	n, err := repo.ResetFailed(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	list, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].RetryCount)
}

func TestCashSummaryRepo_AccumulatesSales(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCashSummaryRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := repo.AddSaleTx(tx, "2026-03-14", decimal.NewFromInt(30000), true, 1); err != nil {
			return err
		}
		if err := repo.AddSaleTx(tx, "2026-03-14", decimal.NewFromInt(12000), false, 1); err != nil {
			return err
		}
		return repo.AddExpenseTx(tx, "2026-03-14", decimal.NewFromInt(5000))
	}))

	s, err := repo.FindByDate(ctx, "2026-03-14")
	require.NoError(t, err)
	assert.True(t, s.CashSales.Equal(decimal.NewFromInt(30000)))
	assert.True(t, s.NonCashSales.Equal(decimal.NewFromInt(12000)))
	assert.Equal(t, 2, s.SalesCount)
	assert.True(t, s.ExpectedCash().Equal(decimal.NewFromInt(25000)))
}

func TestSettingRepo_Upsert(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, map[string]string{model.SettingTaxRate: "10", "printer": "bt-01"}))
	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", all[model.SettingTaxRate])
	assert.Equal(t, "bt-01", all["printer"])
	assert.Equal(t, "PYG", all[model.SettingCurrency])
}

func TestCartRepo_FindLineDistinguishesVariants(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	user := testutil.SeedUser(t, db, "cashier", session.RoleEmployee)
	p := testutil.SeedProduct(t, db, "Remera", 50000, 5)
	v := &model.ProductVariant{ProductID: p.ID, Type: "size", Label: "M", Value: "M", Stock: 3, Active: true}
	require.NoError(t, db.Create(v).Error)

	require.NoError(t, repo.Create(ctx, &model.CartItem{UserID: user.ID, ProductID: p.ID, Quantity: 1}))
	require.NoError(t, repo.Create(ctx, &model.CartItem{UserID: user.ID, ProductID: p.ID, VariantID: &v.ID, Quantity: 2}))

	plain, err := repo.FindLine(ctx, user.ID, p.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, plain.Quantity)

	withVariant, err := repo.FindLine(ctx, user.ID, p.ID, &v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, withVariant.Quantity)

	items, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotNil(t, items[0].Product)

	require.NoError(t, repo.Clear(ctx, user.ID))
	items, err = repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
