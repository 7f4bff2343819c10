package service

import (
	"context"
	"sync"
	"testing"

	"github.com/xZoluGames/InventarioApp-sub001/internal/config"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"
	"github.com/xZoluGames/InventarioApp-sub001/internal/testutil"

	"gorm.io/gorm"
)

type recordedJob struct {
	Type    string
	Payload any
}

type fakeJobs struct {
	mu   sync.Mutex
	jobs []recordedJob
}

func (f *fakeJobs) Enqueue(_ context.Context, jobType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, recordedJob{Type: jobType, Payload: payload})
	return nil
}

func (f *fakeJobs) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.jobs))
	for i, j := range f.jobs {
		out[i] = j.Type
	}
	return out
}

// fixture wires every service over one temporary SQLite store.
type fixture struct {
	db    *gorm.DB
	cfg   *config.Config
	jobs  *fakeJobs
	owner session.Session
	clerk session.Session

	products      repository.ProductRepository
	variants      repository.VariantRepository
	movements     repository.StockMovementRepository
	syncQueue     repository.SyncQueueRepository
	sales         repository.SaleRepository
	cashRepo      repository.CashSummaryRepository
	notifications NotificationService
	settings      SettingsService

	catalog   ProductService
	cart      CartService
	checkout  SaleService
	inventory InventoryService
	expenses  ExpenseService
	cash      CashService
	reports   ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWTSecret: "test-secret", JWTExpirationHours: 1, JWTRefreshHours: 2,
		SyncMaxRetries: 3, SyncBatchSize: 50,
		ExportDir: t.TempDir(), ReceiptDir: t.TempDir(),
	}

	f := &fixture{db: db, cfg: cfg, jobs: &fakeJobs{}}
	f.owner = testutil.SessionFor(testutil.SeedUser(t, db, "owner", session.RoleOwner))
	f.clerk = testutil.SessionFor(testutil.SeedUser(t, db, "clerk", session.RoleEmployee))

	f.products = repository.NewProductRepository(db)
	f.variants = repository.NewVariantRepository(db)
	f.movements = repository.NewStockMovementRepository(db)
	f.syncQueue = repository.NewSyncQueueRepository(db)
	f.sales = repository.NewSaleRepository(db)
	f.cashRepo = repository.NewCashSummaryRepository(db)
	cartRepo := repository.NewCartRepository(db)
	priceRepo := repository.NewPriceChangeRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	f.notifications = NewNotificationService(repository.NewNotificationRepository(db), nil, "")
	f.settings = NewSettingsService(repository.NewSettingRepository(db))

	f.catalog = NewProductService(f.products, f.variants, repository.NewCategoryRepository(db),
		repository.NewSupplierRepository(db), priceRepo, f.movements, f.syncQueue)
	f.cart = NewCartService(cartRepo, f.products, f.variants)
	f.checkout = NewSaleService(SaleDeps{
		Sales: f.sales, Cart: cartRepo, Products: f.products, Variants: f.variants,
		Movements: f.movements, SyncQueue: f.syncQueue, Cash: f.cashRepo,
		Customers: repository.NewCustomerRepository(db), Settings: f.settings,
		Notifications: f.notifications, Jobs: f.jobs, ReceiptDir: cfg.ReceiptDir,
	})
	f.inventory = NewInventoryService(f.products, f.variants, f.movements, f.syncQueue, priceRepo, f.settings, f.notifications)
	f.expenses = NewExpenseService(expenseRepo, f.cashRepo, f.syncQueue)
	f.cash = NewCashService(f.cashRepo, f.notifications)
	f.reports = NewReportService(f.sales, f.products, expenseRepo, nil, cfg.ExportDir)
	return f
}

func (f *fixture) product(t *testing.T, name string, price int64, stock int) *model.Product {
	t.Helper()
	return testutil.SeedProduct(t, f.db, name, price, stock)
}

func (f *fixture) stockOf(t *testing.T, p *model.Product) int {
	t.Helper()
	got, err := f.products.FindByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return got.Stock
}
