package router

import (
	"errors"

	"go-pos-inventory/internal/cache"
	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/handler"
	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/internal/ws"
	"go-pos-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const appName = "POS Inventory v1.0"

// New wires repositories, services and handlers and returns the Fiber app.
// Dependency graph: Handler <- Service <- Repository <- DB/Redis
func New(cfg *config.Config, db *gorm.DB, reports cache.ReportCache, hub *ws.Hub) *fiber.App {
	if reports == nil {
		reports = cache.Noop{}
	}

	// Repositories
	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)

	// Services
	issuer := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTTTL())
	authService := service.NewAuthService(userRepo, issuer, cfg.AllowRegistration)
	userService := service.NewUserService(userRepo, hub)
	invService := service.NewInventoryService(productRepo, db, hub)
	saleService := service.NewSaleService(productRepo, saleRepo, db, reports, hub)
	reportService := service.NewReportService(userRepo, productRepo, saleRepo, reports, service.ReportOptions{
		LowStockThreshold: cfg.LowStockThreshold,
		RecentSalesLimit:  cfg.RecentSalesLimit,
	})

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	invHandler := handler.NewInventoryHandler(invService)
	saleHandler := handler.NewSaleHandler(saleService)
	reportHandler := handler.NewReportHandler(reportService, cfg.StoreName)

	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	if cfg.RequestLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	app.Get("/health", handler.Health(db, reports))

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)

	// ============ PROTECTED ROUTES ============
	requireAuth := middleware.RequireAuth(authService)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	cashierOnly := middleware.RequireRole(model.RoleCashier)

	auth.Post("/logout", requireAuth, authHandler.Logout)
	auth.Post("/password", requireAuth, authHandler.ChangePassword)
	auth.Get("/me", requireAuth, authHandler.Me)

	protected := api.Group("", requireAuth)

	protected.Get("/dashboard", reportHandler.GetDashboard)

	// Account Directory
	protected.Get("/users", adminOnly, userHandler.GetUsers)
	protected.Post("/users", adminOnly, userHandler.CreateUser)
	protected.Put("/users/:id/approve", adminOnly, userHandler.ApproveUser)
	protected.Put("/users/:id/reject", adminOnly, userHandler.RejectUser)
	protected.Delete("/users/:id", adminOnly, userHandler.DeleteUser)

	// Inventory Ledger
	protected.Get("/inventory", adminOnly, invHandler.GetInventory)
	protected.Post("/products", adminOnly, invHandler.CreateProduct)
	protected.Get("/products/:id", adminOnly, invHandler.GetProduct)
	protected.Put("/products/:id", adminOnly, invHandler.UpdateProduct)
	protected.Delete("/products/:id", adminOnly, invHandler.DeleteProduct)

	// Sale Recorder
	protected.Get("/sales/products", cashierOnly, invHandler.GetSaleProducts)
	protected.Post("/sales", cashierOnly, saleHandler.CreateSale)
	protected.Get("/sales/history", adminOnly, reportHandler.GetSalesHistory)

	// Report Aggregator
	protected.Get("/reports", adminOnly, reportHandler.GetReports)
	protected.Get("/reports/trend", adminOnly, reportHandler.GetSalesTrend)
	protected.Get("/reports/valuation", adminOnly, reportHandler.GetStockValuation)
	protected.Get("/reports/valuation.pdf", adminOnly, reportHandler.GetStockValuationPDF)

	// WebSocket Route
	app.Use("/ws", ws.Upgrade)
	app.Get("/ws", hub.Handler())

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Page not found"})
	})

	return app
}

// errorHandler keeps Fiber's own status codes and hides everything else.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
