package router

import (
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/config"
	"github.com/xZoluGames/InventarioApp-sub001/internal/handler"
	"github.com/xZoluGames/InventarioApp-sub001/internal/middleware"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"
	"github.com/xZoluGames/InventarioApp-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the already-wired services the routes dispatch to.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client // nil when running without Redis
	Gatherer prometheus.Gatherer
	// RemoteState reports the remote circuit breaker for /health.
	RemoteState func() string

	Auth          service.AuthService
	Products      service.ProductService
	Categories    service.CategoryService
	Suppliers     service.SupplierService
	Customers     service.CustomerService
	Cart          service.CartService
	Sales         service.SaleService
	Inventory     service.InventoryService
	Expenses      service.ExpenseService
	Cash          service.CashService
	Reports       service.ReportService
	Notifications service.NotificationService
	Settings      service.SettingsService
	Sync          service.SyncService
	Backups       service.BackupService
	Scan          service.ScanService
	Jobs          service.JobEnqueuer
	DeadLetters   worker.DeadLetters
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger("/health", "/metrics"))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimit > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimit, time.Minute))
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(d.Auth)
	productsH := handler.NewProductsHandler(d.Products)
	categoriesH := handler.NewCategoriesHandler(d.Categories)
	suppliersH := handler.NewSuppliersHandler(d.Suppliers)
	customersH := handler.NewCustomersHandler(d.Customers)
	cartH := handler.NewCartHandler(d.Cart)
	salesH := handler.NewSalesHandler(d.Sales)
	inventoryH := handler.NewInventoryHandler(d.Inventory)
	ledgerH := handler.NewLedgerHandler(d.Expenses, d.Cash)
	reportsH := handler.NewReportsHandler(d.Reports)
	notificationsH := handler.NewNotificationsHandler(d.Notifications)
	settingsH := handler.NewSettingsHandler(d.Settings)
	syncH := handler.NewSyncHandler(d.Sync)
	backupsH := handler.NewBackupsHandler(d.Backups)
	scanH := handler.NewScanHandler(d.Scan)
	jobsH := handler.NewJobsHandler(d.Jobs, d.DeadLetters)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, cfg.AppVersion, d.RemoteState))
	if cfg.MetricsEnabled && d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	owner := middleware.RequireRole(session.RoleOwner)
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.GET("/auth/me", authH.Me)

		users := v1.Group("/users", owner)
		{
			users.GET("", authH.ListUsers)
			users.POST("", authH.CreateUser)
			users.PUT("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
			users.PATCH("/:id/reactivate", authH.ReactivateUser)
		}

		// Catalog: everyone reads, the owner writes.
		v1.GET("/products", productsH.List)
		v1.GET("/products/barcode/:code", productsH.GetByBarcode)
		v1.GET("/products/identifier/:identifier", productsH.GetByIdentifier)
		v1.GET("/products/:id", productsH.Get)
		v1.GET("/products/:id/price-history", productsH.PriceHistory)
		v1.GET("/products/:id/variants", productsH.ListVariants)
		prods := v1.Group("/products", owner)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
			prods.POST("/:id/variants", productsH.AddVariant)
		}
		variants := v1.Group("/variants", owner)
		{
			variants.PUT("/:variantId", productsH.UpdateVariant)
			variants.DELETE("/:variantId", productsH.DeactivateVariant)
		}

		v1.GET("/categories", categoriesH.List)
		cats := v1.Group("/categories", owner)
		{
			cats.POST("", categoriesH.Create)
			cats.PUT("/:id", categoriesH.Update)
			cats.DELETE("/:id", categoriesH.Deactivate)
		}

		v1.GET("/suppliers", suppliersH.List)
		v1.GET("/suppliers/:id", suppliersH.Get)
		sups := v1.Group("/suppliers", owner)
		{
			sups.POST("", suppliersH.Create)
			sups.PUT("/:id", suppliersH.Update)
			sups.DELETE("/:id", suppliersH.Deactivate)
		}

		customers := v1.Group("/customers")
		{
			customers.GET("", customersH.Search)
			customers.POST("", customersH.Create)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
			customers.DELETE("/:id", customersH.Deactivate)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", cartH.Get)
			cart.POST("/items", cartH.Add)
			cart.PATCH("/items/:itemId", cartH.UpdateQuantity)
			cart.DELETE("/items/:itemId", cartH.Remove)
			cart.DELETE("", cartH.Clear)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", salesH.Checkout)
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
			sales.GET("/:id/receipt", salesH.Receipt)
			sales.POST("/:id/cancel", owner, salesH.Cancel)
		}

		scan := v1.Group("/scan")
		{
			scan.POST("", scanH.Scan)
			scan.POST("/frame", scanH.Frame)
			scan.GET("/events", scanH.Events)
		}

		inv := v1.Group("/inventory")
		{
			inv.POST("/:id/adjust", inventoryH.Adjust)
			inv.POST("/:id/receive", inventoryH.Receive)
			inv.GET("/movements", inventoryH.Movements)
			inv.GET("/low-stock", inventoryH.LowStock)
		}

		expenses := v1.Group("/expenses")
		{
			expenses.POST("", ledgerH.CreateExpense)
			expenses.GET("", ledgerH.ListExpenses)
			expenses.DELETE("/:id", ledgerH.DeleteExpense)
		}

		cash := v1.Group("/cash")
		{
			cash.GET("", ledgerH.ListDays)
			cash.GET("/today", ledgerH.Today)
			cash.GET("/:date", ledgerH.Day)
			cash.POST("/open", ledgerH.OpenDay)
			cash.POST("/close", ledgerH.CloseDay)
		}

		reports := v1.Group("/reports", owner)
		{
			reports.GET("/sales", reportsH.SalesStats)
			reports.POST("/exports", reportsH.Export)
			reports.GET("/exports", reportsH.ListExports)
			reports.GET("/exports/:name", reportsH.DownloadExport)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationsH.List)
			notifications.GET("/unread-count", notificationsH.UnreadCount)
			notifications.POST("/:id/read", notificationsH.MarkRead)
			notifications.POST("/read-all", notificationsH.MarkAllRead)
		}

		v1.GET("/settings", settingsH.Get)
		v1.PUT("/settings", owner, settingsH.Update)

		// Device side of sync plus the server side the remote client calls.
		sync := v1.Group("/sync")
		{
			sync.GET("/status", syncH.Status)
			sync.POST("/run", syncH.SyncNow)
			sync.POST("/retry-failed", syncH.RetryFailed)
			sync.PUT("/remote", owner, syncH.SetRemote)
			sync.POST("/push", syncH.Push)
			sync.GET("/pull", syncH.Pull)
		}

		// /v1/backups receives archives from devices; /v1/backups/local
		// manages the archives of this installation.
		backups := v1.Group("/backups", owner)
		{
			backups.POST("", backupsH.Receive)
			backups.GET("", backupsH.ListReceived)
			backups.GET("/received/:name", backupsH.DownloadReceived)

			local := backups.Group("/local")
			{
				local.POST("", backupsH.Create)
				local.GET("", backupsH.List)
				local.GET("/:name", backupsH.Download)
				local.DELETE("/:name", backupsH.Delete)
				local.POST("/restore", backupsH.Restore)
				local.POST("/:name/upload", backupsH.Upload)
			}
		}

		jobs := v1.Group("/jobs", owner)
		{
			jobs.GET("/dead-letters", jobsH.DeadLetters)
			jobs.POST("/:type", jobsH.Trigger)
		}
	}

	return r
}
