package service

import (
	"context"
	"testing"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name                  string
		subtotal, discount    int64
		rate                  string
		method                string
		received              int64
		wantTax, wantTotal    string
		wantChange, wantRecvd string
		wantErr               error
	}{
		{name: "cash with change", subtotal: 30000, rate: "0", method: model.PaymentCash, received: 50000,
			wantTax: "0", wantTotal: "30000", wantChange: "20000", wantRecvd: "50000"},
		{name: "discount then tax", subtotal: 10000, discount: 1000, rate: "10", method: model.PaymentCash, received: 9900,
			wantTax: "900", wantTotal: "9900", wantChange: "0", wantRecvd: "9900"},
		{name: "card exact when zero received", subtotal: 5000, rate: "0", method: model.PaymentCard,
			wantTax: "0", wantTotal: "5000", wantChange: "0", wantRecvd: "5000"},
		{name: "tax rounds to cents", subtotal: 999, rate: "7.5", method: model.PaymentTransfer,
			wantTax: "74.93", wantTotal: "1073.93", wantChange: "0", wantRecvd: "1073.93"},
		{name: "cash short", subtotal: 30000, rate: "0", method: model.PaymentCash, received: 29999, wantErr: ErrInsufficientPayment},
		{name: "discount above subtotal", subtotal: 100, discount: 101, rate: "0", method: model.PaymentCash, received: 100, wantErr: ErrInvalidDiscount},
		{name: "rate above 100", subtotal: 100, rate: "101", method: model.PaymentCash, received: 1000, wantErr: ErrInvalidTaxRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeTotals(dec(tc.subtotal), dec(tc.discount), decimal.RequireFromString(tc.rate), tc.method, dec(tc.received))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantTax, got.Tax.String())
			assert.Equal(t, tc.wantTotal, got.Total.String())
			assert.Equal(t, tc.wantChange, got.Change.String())
			assert.Equal(t, tc.wantRecvd, got.Received.String())
			assert.True(t, got.Total.Equal(got.Subtotal.Sub(got.Discount).Add(got.Tax)))
			assert.False(t, got.Change.IsNegative())
		})
	}
}

func TestCheckout_CashExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Harina 1kg", 10000, 5)

	_, err := f.cart.Add(ctx, f.clerk, dto.AddToCartRequest{ProductID: p.ID.String(), Quantity: 3})
	require.NoError(t, err)

	sale, err := f.checkout.Checkout(ctx, f.clerk, dto.CheckoutRequest{
		PaymentMethod:  model.PaymentCash,
		AmountReceived: dec(50000),
	})
	require.NoError(t, err)

	assert.True(t, sale.Subtotal.Equal(dec(30000)))
	assert.True(t, sale.Discount.IsZero())
	assert.True(t, sale.Tax.IsZero())
	assert.True(t, sale.Total.Equal(dec(30000)))
	assert.True(t, sale.Change.Equal(dec(20000)))
	assert.Equal(t, model.SaleCompleted, sale.Status)
	assert.Regexp(t, `^INV-\d{8}-0001$`, sale.InvoiceNumber)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 3, sale.Items[0].Quantity)

	assert.Equal(t, 2, f.stockOf(t, p))

	cart, err := f.cart.Get(ctx, f.clerk)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	moves, err := f.inventory.Movements(ctx, dto.MovementFilter{ProductID: p.ID.String(), Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, moves.Data, 1)
	m := moves.Data[0]
	assert.Equal(t, model.MovementSale, m.Type)
	assert.Equal(t, -3, m.Quantity)
	assert.Equal(t, m.PreviousStock+m.Quantity, m.NewStock)

	summary, err := f.cash.Today(ctx)
	require.NoError(t, err)
	assert.True(t, summary.CashSales.Equal(dec(30000)))
	assert.Equal(t, 1, summary.SalesCount)

	assert.Contains(t, f.jobs.types(), JobReceipt)

	pending, _, err := f.syncQueue.Counts(ctx)
	require.NoError(t, err)
	assert.Positive(t, pending)
}

func TestCheckout_InsufficientCashPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Aceite", 10000, 5)

	_, err := f.cart.Add(ctx, f.clerk, dto.AddToCartRequest{ProductID: p.ID.String(), Quantity: 3})
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, f.clerk, dto.CheckoutRequest{
		PaymentMethod:  model.PaymentCash,
		AmountReceived: dec(20000),
	})
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	var sales int64
	require.NoError(t, f.db.Model(&model.Sale{}).Count(&sales).Error)
	assert.Zero(t, sales)
	assert.Equal(t, 5, f.stockOf(t, p))

	cart, err := f.cart.Get(ctx, f.clerk)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.checkout.Checkout(context.Background(), f.clerk, dto.CheckoutRequest{PaymentMethod: model.PaymentCard})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckout_UsesSettingsTaxRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rate := decimal.NewFromInt(10)
	_, err := f.settings.Update(ctx, dto.UpdateSettingsRequest{TaxRate: &rate})
	require.NoError(t, err)

	p := f.product(t, "Queso", 1000, 10)
	_, err = f.cart.Add(ctx, f.clerk, dto.AddToCartRequest{ProductID: p.ID.String(), Quantity: 2})
	require.NoError(t, err)

	sale, err := f.checkout.Checkout(ctx, f.clerk, dto.CheckoutRequest{PaymentMethod: model.PaymentCard})
	require.NoError(t, err)
	assert.True(t, sale.Tax.Equal(dec(200)))
	assert.True(t, sale.Total.Equal(dec(2200)))
}

func TestCancel_RestoresStockAndIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Galletas", 2500, 4)

	_, err := f.cart.Add(ctx, f.clerk, dto.AddToCartRequest{ProductID: p.ID.String(), Quantity: 4})
	require.NoError(t, err)
	sale, err := f.checkout.Checkout(ctx, f.clerk, dto.CheckoutRequest{PaymentMethod: model.PaymentCash, AmountReceived: dec(10000)})
	require.NoError(t, err)
	assert.Equal(t, 0, f.stockOf(t, p))

	id := uuid.MustParse(sale.ID)
	_, err = f.checkout.Cancel(ctx, f.clerk, id, "wrong item")
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.checkout.Cancel(ctx, f.owner, id, "wrong item")
	require.NoError(t, err)
	assert.Equal(t, model.SaleCancelled, cancelled.Status)
	assert.Equal(t, 4, f.stockOf(t, p))

	_, err = f.checkout.Cancel(ctx, f.owner, id, "again")
	assert.ErrorIs(t, err, ErrSaleAlreadyCancelled)

	summary, err := f.cash.Today(ctx)
	require.NoError(t, err)
	assert.True(t, summary.CashSales.IsZero())
	assert.Equal(t, 0, summary.SalesCount)
}

func TestCart_AddBeyondStockReportsAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Arroz", 3000, 2)

	_, err := f.cart.Add(ctx, f.clerk, dto.AddToCartRequest{ProductID: p.ID.String(), Quantity: 3})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	_, err = f.cart.Add(ctx, f.clerk, dto.AddToCartRequest{ProductID: p.ID.String(), Quantity: 2})
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, f.clerk, dto.AddToCartRequest{ProductID: p.ID.String(), Quantity: 1})
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
}

func TestSaleList_BadDateIsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.checkout.List(ctx, dto.SaleFilter{From: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = f.checkout.List(ctx, dto.SaleFilter{To: "31/01/2026"})
	assert.ErrorIs(t, err, ErrInvalidDate)

	out, err := f.checkout.List(ctx, dto.SaleFilter{From: "2026-01-01", To: "2026-01-31"})
	require.NoError(t, err)
	assert.Empty(t, out.Data)
}
