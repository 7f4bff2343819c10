package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote accepts or rejects pushes and serves a fixed pull page.
type fakeRemote struct {
	pushErr   error
	rejectAll bool
	pushed    []dto.SyncEntry
	pull      dto.SyncPullResponse
	since     time.Time
}

func (r *fakeRemote) Configured() bool           { return true }
func (r *fakeRemote) BaseURL() string            { return "http://remote" }
func (r *fakeRemote) SetBaseURL(string) error    { return nil }
func (r *fakeRemote) BreakerState() string       { return "closed" }
func (r *fakeRemote) Ping(context.Context) error { return r.pushErr }

func (r *fakeRemote) Push(_ context.Context, req dto.SyncPushRequest) (*dto.SyncPushResponse, error) {
	if r.pushErr != nil {
		return nil, r.pushErr
	}
	r.pushed = append(r.pushed, req.Entries...)
	out := &dto.SyncPushResponse{}
	for _, e := range req.Entries {
		if r.rejectAll {
			out.Rejected = append(out.Rejected, dto.SyncRejection{ID: e.ID, Error: "rejected"})
			continue
		}
		out.Accepted = append(out.Accepted, e.ID)
	}
	return out, nil
}

func (r *fakeRemote) Pull(_ context.Context, since time.Time) (*dto.SyncPullResponse, error) {
	r.since = since
	out := r.pull
	return &out, nil
}

func newSync(t *testing.T, f *fixture, remote SyncRemote) SyncService {
	t.Helper()
	prefs, err := infra.NewPrefStore(t.TempDir())
	require.NoError(t, err)
	return NewSyncService(SyncDeps{
		Queue: f.syncQueue, Products: f.products, Variants: f.variants,
		Categories: repository.NewCategoryRepository(f.db), Suppliers: repository.NewSupplierRepository(f.db),
		Customers: repository.NewCustomerRepository(f.db), Sales: f.sales,
		Expenses: repository.NewExpenseRepository(f.db), Notifications: f.notifications,
		Remote: remote, Prefs: prefs, DeviceID: "device-1", BatchSize: 50, MaxRetries: 3,
	})
}

func TestSync_PushMarksSynced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{
		Name: "Te verde", Price: decimal.NewFromInt(900), Cost: decimal.NewFromInt(400), Stock: 5,
	})
	require.NoError(t, err)

	remote := &fakeRemote{pull: dto.SyncPullResponse{ServerTime: "2026-02-01T00:00:00Z"}}
	svc := newSync(t, f, remote)

	res, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(remote.pushed), res.Pushed)
	assert.Positive(t, res.Pushed)

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.Pending)
	require.NotNil(t, status.LastSyncAt)
	assert.Equal(t, "2026-02-01T00:00:00Z", *status.LastSyncAt)

	p, err := f.products.FindByID(ctx, uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusSynced, p.SyncStatus)

	// the next pull resumes from the stored server time
	_, err = svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01T00:00:00Z", remote.since.Format(time.RFC3339))
}

func TestSync_RejectedEntriesFailAtCeiling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{Name: "Cafe", Price: decimal.NewFromInt(100)})
	require.NoError(t, err)

	svc := newSync(t, f, &fakeRemote{rejectAll: true})

	for i := 0; i < 2; i++ {
		res, err := svc.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Retrying)
		assert.Zero(t, res.Failed)
	}
	res, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	pending, failed, err := f.syncQueue.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
	assert.EqualValues(t, 1, failed)

	alerts, err := f.notifications.List(ctx, dto.NotificationFilter{Channel: model.ChannelSyncStatus, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	n, err := svc.RetryFailed(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSync_OfflineCountsAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.catalog.Create(ctx, f.owner, dto.CreateProductRequest{Name: "Cacao", Price: decimal.NewFromInt(100)})
	require.NoError(t, err)

	svc := newSync(t, f, &fakeRemote{pushErr: errors.New("dial tcp: no route")})
	assert.False(t, svc.Reachable(ctx))

	res, err := svc.Sync(ctx)
	assert.ErrorIs(t, err, ErrOffline)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Retrying)
}

func TestSync_PullOverwritesLocal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	local := f.product(t, "Old name", 1000, 3)

	remote := &fakeRemote{pull: dto.SyncPullResponse{
		Products: []dto.ProductPayload{{
			ID: local.ID.String(), Name: "New name", Price: decimal.NewFromInt(1200),
			Cost: decimal.NewFromInt(600), Stock: 9, Unit: "unit", Active: true,
			UpdatedAt: "2020-01-01T00:00:00Z",
		}},
		ServerTime: "2026-02-01T00:00:00Z",
	}}
	res, err := newSync(t, f, remote).Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pulled)

	got, err := f.products.FindByID(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "New name", got.Name)
	assert.Equal(t, 9, got.Stock)
	assert.Equal(t, model.SyncStatusSynced, got.SyncStatus)
}

func TestApplyPush_ServerSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newSync(t, f, nil)

	productID := uuid.New()
	productPayload, _ := json.Marshal(dto.ProductPayload{
		ID: productID.String(), Name: "Remote soap", Price: decimal.NewFromInt(500),
		Cost: decimal.NewFromInt(200), Stock: 4, Active: true, UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	saleID := uuid.New()
	salePayload, _ := json.Marshal(dto.SaleResponse{
		ID: saleID.String(), InvoiceNumber: "INV-20260101-0900", UserID: f.clerk.UserID.String(),
		Subtotal: decimal.NewFromInt(500), Total: decimal.NewFromInt(500), PaymentMethod: model.PaymentCash,
		AmountReceived: decimal.NewFromInt(500), Status: model.SaleCompleted,
		CreatedAt: "2026-01-01T10:00:00Z",
		Items: []dto.SaleItemResponse{{
			ProductID: productID.String(), ProductName: "Remote soap", Quantity: 1,
			UnitPrice: decimal.NewFromInt(500), PurchasePrice: decimal.NewFromInt(200), Subtotal: decimal.NewFromInt(500),
		}},
	})

	req := dto.SyncPushRequest{DeviceID: "tablet", Entries: []dto.SyncEntry{
		{ID: "e1", EntityType: model.EntityProduct, Operation: model.SyncCreate, Payload: productPayload},
		{ID: "e2", EntityType: model.EntitySale, Operation: model.SyncCreate, Payload: salePayload},
		{ID: "e3", EntityType: "unknown", Operation: model.SyncCreate, Payload: json.RawMessage(`{}`)},
	}}
	out, err := svc.ApplyPush(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, out.Accepted)
	require.Len(t, out.Rejected, 1)
	assert.Equal(t, "e3", out.Rejected[0].ID)

	// re-sending the sale is accepted and stored once
	out, err = svc.ApplyPush(ctx, dto.SyncPushRequest{DeviceID: "tablet", Entries: req.Entries[1:2]})
	require.NoError(t, err)
	assert.Equal(t, []string{"e2"}, out.Accepted)
	var n int64
	require.NoError(t, f.db.Model(&model.Sale{}).Where("id = ?", saleID).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	pulled, err := svc.PullSince(ctx, time.Time{})
	require.NoError(t, err)
	var names []string
	for _, p := range pulled.Products {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "Remote soap")
}

func salePushEntry(t *testing.T, entryID string, saleID uuid.UUID, invoice string, user uuid.UUID, productID uuid.UUID) dto.SyncEntry {
	t.Helper()
	payload, err := json.Marshal(dto.SaleResponse{
		ID: saleID.String(), InvoiceNumber: invoice, UserID: user.String(),
		Subtotal: decimal.NewFromInt(300), Total: decimal.NewFromInt(300), PaymentMethod: model.PaymentCard,
		AmountReceived: decimal.NewFromInt(300), Status: model.SaleCompleted,
		CreatedAt: "2026-01-01T09:00:00Z",
		Items: []dto.SaleItemResponse{{
			ProductID: productID.String(), ProductName: "Bread", Quantity: 1,
			UnitPrice: decimal.NewFromInt(300), PurchasePrice: decimal.NewFromInt(150), Subtotal: decimal.NewFromInt(300),
		}},
	})
	require.NoError(t, err)
	return dto.SyncEntry{ID: entryID, EntityType: model.EntitySale, EntityID: saleID.String(), Operation: model.SyncCreate, Payload: payload}
}

func TestApplyPush_InvoiceNumbersAreScopedPerDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newSync(t, f, nil)
	bread := f.product(t, "Bread", 300, 10)

	const invoice = "INV-20260101-0001"
	saleA, saleB := uuid.New(), uuid.New()

	out, err := svc.ApplyPush(ctx, dto.SyncPushRequest{DeviceID: "tablet-A", Entries: []dto.SyncEntry{
		salePushEntry(t, "a1", saleA, invoice, f.clerk.UserID, bread.ID),
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, out.Accepted)

	out, err = svc.ApplyPush(ctx, dto.SyncPushRequest{DeviceID: "tablet-B", Entries: []dto.SyncEntry{
		salePushEntry(t, "b1", saleB, invoice, f.clerk.UserID, bread.ID),
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, out.Accepted)
	assert.Empty(t, out.Rejected)

	a, err := f.sales.FindByID(ctx, saleA)
	require.NoError(t, err)
	assert.Equal(t, "tablet-A", a.DeviceID)
	b, err := f.sales.FindByID(ctx, saleB)
	require.NoError(t, err)
	assert.Equal(t, "tablet-B", b.DeviceID)

	// the same device reusing a number under a new sale id is still refused
	out, err = svc.ApplyPush(ctx, dto.SyncPushRequest{DeviceID: "tablet-A", Entries: []dto.SyncEntry{
		salePushEntry(t, "a2", uuid.New(), invoice, f.clerk.UserID, bread.ID),
	}})
	require.NoError(t, err)
	assert.Empty(t, out.Accepted)
	require.Len(t, out.Rejected, 1)
	assert.Equal(t, "a2", out.Rejected[0].ID)
}

func TestCheckout_LocalNumberingIgnoresPushedSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newSync(t, f, nil)
	bread := f.product(t, "Bread", 300, 10)

	today := "INV-" + time.Now().UTC().Format("20060102") + "-0007"
	_, err := svc.ApplyPush(ctx, dto.SyncPushRequest{DeviceID: "tablet-A", Entries: []dto.SyncEntry{
		salePushEntry(t, "a1", uuid.New(), today, f.clerk.UserID, bread.ID),
	}})
	require.NoError(t, err)

	_, err = f.cart.AddProduct(ctx, f.owner, bread.ID, nil, 1)
	require.NoError(t, err)
	sale, err := f.checkout.Checkout(ctx, f.owner, dto.CheckoutRequest{
		PaymentMethod: model.PaymentCash, AmountReceived: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-"+time.Now().UTC().Format("20060102")+"-0001", sale.InvoiceNumber)
	assert.Empty(t, sale.DeviceID)
}
