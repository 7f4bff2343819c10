package service

import (
	"context"
	"testing"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// syncOps lists the queued operations for one entity.
func syncOps(t *testing.T, f *fixture, entity string, id uuid.UUID) []string {
	t.Helper()
	var ops []string
	require.NoError(t, f.db.Model(&model.SyncQueueEntry{}).
		Where("entity_type = ? AND entity_id = ?", entity, id).
		Order("created_at ASC").
		Pluck("operation", &ops).Error)
	return ops
}

func TestProductCreate_DuplicateBarcodeOrIdentifier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{
		Name: "Yerba 1kg", Price: decimal.NewFromInt(4200), Barcode: strPtr("7790001000011"), Identifier: strPtr("YER-1"),
	})
	require.NoError(t, err)

	_, err = f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{
		Name: "Yerba 500g", Price: decimal.NewFromInt(2300), Barcode: strPtr("7790001000011"),
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{
		Name: "Yerba 500g", Price: decimal.NewFromInt(2300), Identifier: strPtr("YER-1"),
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	// blank codes are stored as NULL and never collide
	for i := 0; i < 2; i++ {
		_, err = f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{
			Name: "Loose bread", Price: decimal.NewFromInt(100), Barcode: strPtr("  "),
		})
		require.NoError(t, err)
	}
}

func TestProductUpdate_DuplicateBarcode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{Name: "Milk", Price: decimal.NewFromInt(900), Barcode: strPtr("1111")})
	require.NoError(t, err)
	other, err := f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{Name: "Cream", Price: decimal.NewFromInt(1500)})
	require.NoError(t, err)

	_, err = f.catalog.Update(ctx, f.owner, uuid.MustParse(other.ID), dto.UpdateProductRequest{Barcode: strPtr("1111")})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestProduct_DeactivateHidesFromLookupAndReactivateRestores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{
		Name: "Olive oil", Price: decimal.NewFromInt(8000), Barcode: strPtr("8410000000001"), Stock: 3,
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, f.catalog.Deactivate(ctx, id))

	// the row stays so sale history keeps its reference
	got, err := f.catalog.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, 3, got.Stock)

	_, err = f.catalog.GetByBarcode(ctx, "8410000000001")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = f.catalog.Lookup(ctx, "8410000000001")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.catalog.Reactivate(ctx, id))
	found, err := f.catalog.GetByBarcode(ctx, "8410000000001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.True(t, found.Active)

	assert.Equal(t, []string{model.SyncCreate, model.SyncDelete, model.SyncUpdate}, syncOps(t, f, model.EntityProduct, id))
}

func TestProductUpdate_RecordsPriceChangeOnlyWhenPriceOrCostMoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{
		Name: "Coffee 250g", Price: decimal.NewFromInt(3000), Cost: decimal.NewFromInt(1800),
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = f.catalog.Update(ctx, f.owner, id, dto.UpdateProductRequest{Name: strPtr("Coffee beans 250g")})
	require.NoError(t, err)
	history, err := f.catalog.PriceHistory(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, history)

	newPrice := decimal.NewFromInt(3400)
	updated, err := f.catalog.Update(ctx, f.owner, id, dto.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(newPrice))
	assert.Equal(t, model.SyncStatusPending, updated.SyncStatus)

	history, err = f.catalog.PriceHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].PriceBefore.Equal(decimal.NewFromInt(3000)))
	assert.True(t, history[0].PriceAfter.Equal(newPrice))
	assert.True(t, history[0].CostBefore.Equal(history[0].CostAfter))

	assert.Equal(t, []string{model.SyncCreate, model.SyncUpdate, model.SyncUpdate}, syncOps(t, f, model.EntityProduct, id))
}

func TestProductCreate_InitialStockMovement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{Name: "Rice 1kg", Price: decimal.NewFromInt(1300), Stock: 12})
	require.NoError(t, err)

	movs, total, err := f.movements.List(ctx, dto.MovementFilter{ProductID: created.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.MovementPurchase, movs[0].Type)
	assert.Equal(t, 12, movs[0].Quantity)
	assert.Equal(t, movs[0].PreviousStock+movs[0].Quantity, movs[0].NewStock)
	assert.Nil(t, movs[0].VariantID)

	_, err = f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{Name: "Salt", Price: decimal.NewFromInt(500)})
	require.NoError(t, err)
	_, total, err = f.movements.List(ctx, dto.MovementFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestVariant_UnitPriceIsProductPricePlusDelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "T-shirt", 5000, 0)

	large, err := f.catalog.AddVariant(ctx, f.owner, p.ID, dto.CreateVariantRequest{
		Type: "size", Label: "L", Value: "L", PriceDelta: decimal.NewFromInt(700),
	})
	require.NoError(t, err)
	assert.True(t, large.UnitPrice.Equal(decimal.NewFromInt(5700)))

	small, err := f.catalog.AddVariant(ctx, f.owner, p.ID, dto.CreateVariantRequest{
		Type: "size", Label: "S", Value: "S", PriceDelta: decimal.NewFromInt(-500),
	})
	require.NoError(t, err)
	assert.True(t, small.UnitPrice.Equal(decimal.NewFromInt(4500)))

	delta := decimal.NewFromInt(1000)
	updated, err := f.catalog.UpdateVariant(ctx, uuid.MustParse(large.ID), dto.UpdateVariantRequest{PriceDelta: &delta})
	require.NoError(t, err)
	assert.True(t, updated.UnitPrice.Equal(decimal.NewFromInt(6000)))

	list, err := f.catalog.ListVariants(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, v := range list {
		assert.True(t, v.UnitPrice.Equal(decimal.NewFromInt(5000).Add(v.PriceDelta)), v.Label)
	}

	require.NoError(t, f.catalog.DeactivateVariant(ctx, uuid.MustParse(small.ID)))
	list, err = f.catalog.ListVariants(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, v := range list {
		assert.Equal(t, v.ID == large.ID, v.Active, v.Label)
	}
	// the product view only carries active variants
	prod, err := f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, prod.Variants, 1)
	assert.Equal(t, large.ID, prod.Variants[0].ID)

	assert.Equal(t, []string{model.SyncCreate, model.SyncUpdate}, syncOps(t, f, model.EntityVariant, uuid.MustParse(large.ID)))
	assert.Equal(t, []string{model.SyncCreate, model.SyncDelete}, syncOps(t, f, model.EntityVariant, uuid.MustParse(small.ID)))
}

func TestAddVariant_InitialStockIsInTheLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Sneakers", 40000, 0)

	v, err := f.catalog.AddVariant(ctx, f.owner, p.ID, dto.CreateVariantRequest{
		Type: "size", Label: "42", Value: "42", Stock: 4,
	})
	require.NoError(t, err)

	movs, total, err := f.movements.List(ctx, dto.MovementFilter{ProductID: p.ID.String(), Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	m := movs[0]
	require.NotNil(t, m.VariantID)
	assert.Equal(t, v.ID, m.VariantID.String())
	assert.Equal(t, model.MovementPurchase, m.Type)
	assert.Equal(t, 0, m.PreviousStock)
	assert.Equal(t, 4, m.NewStock)
	assert.Equal(t, m.PreviousStock+m.Quantity, m.NewStock)
	require.NotNil(t, m.UserID)
	assert.Equal(t, f.owner.UserID, *m.UserID)

	// the product's own stock is untouched
	assert.Equal(t, 0, f.stockOf(t, p))

	_, err = f.catalog.AddVariant(ctx, f.owner, p.ID, dto.CreateVariantRequest{Type: "size", Label: "43", Value: "43"})
	require.NoError(t, err)
	_, total, err = f.movements.List(ctx, dto.MovementFilter{ProductID: p.ID.String(), Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestAddVariant_DuplicateBarcode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cap", 3000, 0)

	_, err := f.catalog.AddVariant(ctx, f.owner, p.ID, dto.CreateVariantRequest{Type: "color", Label: "Red", Value: "red", Barcode: strPtr("CAP-RED")})
	require.NoError(t, err)
	_, err = f.catalog.AddVariant(ctx, f.owner, p.ID, dto.CreateVariantRequest{Type: "color", Label: "Blue", Value: "blue", Barcode: strPtr("CAP-RED")})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = f.catalog.AddVariant(ctx, f.owner, uuid.New(), dto.CreateVariantRequest{Type: "color", Label: "Red", Value: "red"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategories_UniqueNameSoftDeleteAndSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCategoryService(repository.NewCategoryRepository(f.db), f.syncQueue, f.db)

	drinks, err := svc.Create(ctx, dto.CategoryRequest{Name: " Drinks "})
	require.NoError(t, err)
	assert.Equal(t, "Drinks", drinks.Name)

	_, err = svc.Create(ctx, dto.CategoryRequest{Name: "Drinks"})
	assert.ErrorIs(t, err, ErrDuplicate)

	snacks, err := svc.Create(ctx, dto.CategoryRequest{Name: "Snacks"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, uuid.MustParse(snacks.ID), dto.CategoryRequest{Name: "Drinks"})
	assert.ErrorIs(t, err, ErrDuplicate)

	id := uuid.MustParse(drinks.ID)
	_, err = svc.Update(ctx, id, dto.CategoryRequest{Name: "Beverages"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, id))

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Snacks", active[0].Name)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.Equal(t, []string{model.SyncCreate, model.SyncUpdate, model.SyncDelete}, syncOps(t, f, model.EntityCategory, id))
	assert.ErrorIs(t, svc.Deactivate(ctx, uuid.New()), ErrNotFound)
}

func TestProductCreate_UnknownCategoryIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.Create(context.Background(), f.owner, dto.CreateProductRequest{
		Name: "Orphan", Price: decimal.NewFromInt(100), CategoryID: strPtr(uuid.NewString()),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSuppliers_DeactivateRefusedWhileProductsReferenceIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewSupplierService(repository.NewSupplierRepository(f.db), f.syncQueue, f.db)

	sup, err := svc.Create(ctx, dto.SupplierRequest{Name: "Mayorista Sur", Phone: strPtr("+54 11 5555 0000")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.SupplierRequest{Name: "Mayorista Sur"})
	assert.ErrorIs(t, err, ErrDuplicate)

	product, err := f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{
		Name: "Flour 1kg", Price: decimal.NewFromInt(900), SupplierID: &sup.ID,
	})
	require.NoError(t, err)

	id := uuid.MustParse(sup.ID)
	assert.ErrorIs(t, svc.Deactivate(ctx, id), ErrConflict)

	require.NoError(t, f.catalog.Deactivate(ctx, uuid.MustParse(product.ID)))
	require.NoError(t, svc.Deactivate(ctx, id))

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, []string{model.SyncCreate, model.SyncDelete}, syncOps(t, f, model.EntitySupplier, id))
}

func TestCustomers_SearchUpdateAndSoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCustomerService(repository.NewCustomerRepository(f.db), f.syncQueue, f.db)

	ana, err := svc.Create(ctx, dto.CustomerRequest{Name: "Ana Gomez", Phone: strPtr("1155550001")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.CustomerRequest{Name: "Bruno Diaz", TaxID: strPtr("20-12345678-9")})
	require.NoError(t, err)

	byName, err := svc.Search(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, ana.ID, byName[0].ID)

	byTaxID, err := svc.Search(ctx, "20-12345678-9")
	require.NoError(t, err)
	require.Len(t, byTaxID, 1)
	assert.Equal(t, "Bruno Diaz", byTaxID[0].Name)

	id := uuid.MustParse(ana.ID)
	updated, err := svc.Update(ctx, id, dto.CustomerRequest{Name: "Ana Gomez", Email: strPtr("ana@example.com")})
	require.NoError(t, err)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "ana@example.com", *updated.Email)

	require.NoError(t, svc.Deactivate(ctx, id))
	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Bruno Diaz", all[0].Name)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.Equal(t, []string{model.SyncCreate, model.SyncUpdate, model.SyncDelete}, syncOps(t, f, model.EntityCustomer, id))
}
