// Package app is the composition root: it builds repositories, services,
// the job pool and the HTTP engine over one database handle.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/xZoluGames/InventarioApp-sub001/internal/config"
	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"
	"github.com/xZoluGames/InventarioApp-sub001/internal/metrics"
	"github.com/xZoluGames/InventarioApp-sub001/internal/remote"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/router"
	"github.com/xZoluGames/InventarioApp-sub001/internal/scan"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"
	"github.com/xZoluGames/InventarioApp-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type App struct {
	Engine *gin.Engine
	Auth   service.AuthService

	pool      *worker.Pool
	scheduler *worker.Scheduler
	scan      service.ScanService

	restartOnce sync.Once
	restart     chan struct{}
}

// Registry is where job metrics are registered and /metrics reads from.
// prometheus.NewRegistry() satisfies it.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// New wires every dependency. rdb and reg may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, reg Registry) (*App, error) {
	a := &App{restart: make(chan struct{})}

	// ── Infrastructure ───────────────────────────────────────────────────────
	prefs, err := infra.NewPrefStore(cfg.PrefsDir())
	if err != nil {
		return nil, fmt.Errorf("open prefs: %w", err)
	}
	deviceID, err := prefs.DeviceID()
	if err != nil {
		return nil, fmt.Errorf("device id: %w", err)
	}
	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	remoteClient := remote.NewClient(prefs, cfg.RemoteBaseURL,
		remote.Credentials{Username: cfg.RemoteUsername, Password: cfg.RemotePassword}, breaker)
	mailer := infra.NewMailer(cfg)

	var (
		queue worker.Queue
		dead  worker.DeadLetters
		lock  worker.Lock
	)
	if rdb != nil {
		queue = worker.NewRedisQueue(rdb, worker.QueueJobs)
		dead = worker.NewRedisDLQ(rdb, worker.QueueJobs)
		redisLock, err := worker.NewRedisLock(rdb, "lock:pos:")
		if err != nil {
			return nil, fmt.Errorf("scheduler lock: %w", err)
		}
		lock = redisLock
	} else {
		queue = worker.NewMemoryQueue(0)
		dead = worker.NewMemoryDLQ()
	}
	dispatcher := worker.NewDispatcher(queue)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	priceRepo := repository.NewPriceChangeRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	syncQueueRepo := repository.NewSyncQueueRepository(db)
	cartRepo := repository.NewCartRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	cashRepo := repository.NewCashSummaryRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	notificationSvc := service.NewNotificationService(repository.NewNotificationRepository(db), mailer, cfg.NotifyEmail)
	settingsSvc := service.NewSettingsService(repository.NewSettingRepository(db))
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, variantRepo, categoryRepo, supplierRepo, priceRepo, movementRepo, syncQueueRepo)
	categorySvc := service.NewCategoryService(categoryRepo, syncQueueRepo, db)
	supplierSvc := service.NewSupplierService(supplierRepo, syncQueueRepo, db)
	customerSvc := service.NewCustomerService(customerRepo, syncQueueRepo, db)
	cartSvc := service.NewCartService(cartRepo, productRepo, variantRepo)
	saleSvc := service.NewSaleService(service.SaleDeps{
		Sales: saleRepo, Cart: cartRepo, Products: productRepo, Variants: variantRepo,
		Movements: movementRepo, SyncQueue: syncQueueRepo, Cash: cashRepo,
		Customers: customerRepo, Settings: settingsSvc, Notifications: notificationSvc,
		Jobs: dispatcher, ReceiptDir: cfg.ReceiptDir,
	})
	inventorySvc := service.NewInventoryService(productRepo, variantRepo, movementRepo, syncQueueRepo, priceRepo, settingsSvc, notificationSvc)
	expenseSvc := service.NewExpenseService(expenseRepo, cashRepo, syncQueueRepo)
	cashSvc := service.NewCashService(cashRepo, notificationSvc)
	reportSvc := service.NewReportService(saleRepo, productRepo, expenseRepo, mailer, cfg.ExportDir)
	syncSvc := service.NewSyncService(service.SyncDeps{
		Queue: syncQueueRepo, Products: productRepo, Variants: variantRepo,
		Categories: categoryRepo, Suppliers: supplierRepo, Customers: customerRepo,
		Sales: saleRepo, Expenses: expenseRepo, Notifications: notificationSvc,
		Remote: remoteClient, Prefs: prefs, DeviceID: deviceID,
		BatchSize: cfg.SyncBatchSize, MaxRetries: cfg.SyncMaxRetries,
	})
	backupSvc := service.NewBackupService(db, prefs, remoteClient, service.BackupOptions{
		Dir:        cfg.BackupDir,
		Keep:       cfg.BackupKeep,
		AppVersion: cfg.AppVersion,
		DBPath:     cfg.SQLitePath(),
		SQLite:     cfg.IsSQLite(),
		CloseStore: func() error { return infra.CloseDatabase(db) },
		Restart:    a.requestRestart,
	})
	a.scan = service.NewScanService(productSvc, cartSvc, scan.NewImageDecoder(), cfg.ScanDebounce)
	a.Auth = authSvc

	// ── Workers ──────────────────────────────────────────────────────────────
	var registerer prometheus.Registerer
	var gatherer prometheus.Gatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	a.pool = worker.NewPool(worker.PoolConfig{
		Queue:       queue,
		DeadLetters: dead,
		Metrics:     metrics.NewJobMetrics(registerer),
		Notifier:    notificationSvc,
		Size:        cfg.WorkerPoolSize,
	})
	worker.RegisterJobs(a.pool, worker.JobServices{
		Sync:      syncSvc,
		SyncQueue: syncQueueRepo,
		Backup:    backupSvc,
		Inventory: inventorySvc,
		Sales:     saleSvc,
	})

	schedules := []worker.Schedule{
		{Job: service.JobSync, Interval: cfg.SyncInterval},
		{Job: service.JobLowStock, Interval: cfg.LowStockInterval},
	}
	// Archives only exist for the SQLite store.
	if cfg.IsSQLite() {
		schedules = append(schedules, worker.Schedule{Job: service.JobBackup, Interval: cfg.BackupInterval})
	}
	a.scheduler = worker.NewScheduler(dispatcher, lock, schedules...)

	// ── HTTP ─────────────────────────────────────────────────────────────────
	a.Engine = router.New(cfg, router.Deps{
		DB:            db,
		Redis:         rdb,
		Gatherer:      gatherer,
		RemoteState:   remoteClient.BreakerState,
		Auth:          authSvc,
		Products:      productSvc,
		Categories:    categorySvc,
		Suppliers:     supplierSvc,
		Customers:     customerSvc,
		Cart:          cartSvc,
		Sales:         saleSvc,
		Inventory:     inventorySvc,
		Expenses:      expenseSvc,
		Cash:          cashSvc,
		Reports:       reportSvc,
		Notifications: notificationSvc,
		Settings:      settingsSvc,
		Sync:          syncSvc,
		Backups:       backupSvc,
		Scan:          a.scan,
		Jobs:          dispatcher,
		DeadLetters:   a.pool.DeadLetters(),
	})

	log.Info().Str("device_id", deviceID).Bool("redis", rdb != nil).Msg("app: wired")
	return a, nil
}

// Start launches the background goroutines; they stop when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	a.pool.Start(ctx)
	a.scheduler.Start(ctx)
	go a.scan.Run(ctx)
}

// Wait blocks until the pool and scheduler have exited.
func (a *App) Wait() {
	a.scheduler.Wait()
	a.pool.Wait()
}

// RestartRequested is closed after a restore replaced the store.
func (a *App) RestartRequested() <-chan struct{} { return a.restart }

func (a *App) requestRestart() {
	a.restartOnce.Do(func() { close(a.restart) })
}
