// Package server assembles the fiber app and its routes.
package server

import (
	"strings"
	"time"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/auth"
	"procurement-backend/internal/config"
	"procurement-backend/internal/dashboard"
	"procurement-backend/internal/erp"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/inventory"
	"procurement-backend/internal/invoice"
	"procurement-backend/internal/models"
	"procurement-backend/internal/order"
	"procurement-backend/internal/project"
	"procurement-backend/internal/quality"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/supplier"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators built in main. Locker, Cache and Archive may be nil.
type Deps struct {
	Config    *config.Config
	Store     repository.Store
	Logger    *logrus.Logger
	Publisher erp.Publisher
	Locker    erp.Locker
	Cache     *dashboard.ReportCache
	Archive   dashboard.Archiver
	// AccessLog disables the request log line when false.
	AccessLog bool
}

func New(d Deps) *fiber.App {
	cfg, store, log := d.Config, d.Store, d.Logger

	app := fiber.New(fiber.Config{
		ErrorHandler: httpx.ErrorHandler(log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
			Output: log.Writer(),
		}))
	}

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	authH := auth.NewHandler(cfg, store, log)
	projectH := project.NewHandler(project.NewService(store, log), log)
	supplierH := supplier.NewHandler(supplier.NewService(store, log, cfg.DefaultPhoneRegion), log)
	productH := inventory.NewHandler(inventory.NewService(store, log), log)
	orderH := order.NewHandler(order.NewService(store, log), log)
	syncer := erp.NewSyncer(store, d.Publisher, d.Locker, log).WithServiceName(d.Config.ServiceName)
	invoiceH := invoice.NewHandler(invoice.NewService(store, syncer, log), log)
	qualityH := quality.NewHandler(quality.NewService(store, log), log)
	dashboardH := dashboard.NewHandler(dashboard.NewService(store, d.Cache, d.Archive, log).WithServiceName(d.Config.ServiceName), log)

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public auth
	api.Post("/auth/register", authH.Register())
	api.Post("/auth/register-admin", authH.RegisterAdmin())
	api.Post("/auth/login", authH.Login())

	protected := api.Group("", auth.JWTMiddleware(cfg), dashboard.InvalidateReportsOnWrite(d.Cache, log))
	adminOnly := auth.RequireRole(models.RoleAdmin)

	protected.Get("/auth/me", authH.Me())
	protected.Post("/admin/users", adminOnly, authH.CreateUser())

	protected.Get("/projects", projectH.List())
	protected.Get("/projects/:id", projectH.Get())
	protected.Post("/projects", projectH.Create())
	protected.Patch("/projects/:id/status", projectH.ChangeStatus())

	protected.Get("/suppliers", supplierH.List())
	protected.Get("/suppliers/:id", supplierH.Get())
	protected.Post("/suppliers", supplierH.Create())
	protected.Put("/suppliers/:id", supplierH.Update())
	protected.Patch("/suppliers/:id/status", adminOnly, supplierH.ChangeStatus())

	protected.Get("/products", productH.List())
	protected.Get("/products/:id", productH.Get())
	protected.Post("/products", productH.Create())
	protected.Post("/products/import", productH.Import())
	protected.Patch("/products/:id/stock", productH.AdjustStock())

	protected.Get("/orders", orderH.List())
	protected.Get("/orders/:id", orderH.Get())
	protected.Post("/orders", orderH.Create())
	protected.Put("/orders/:id/items", orderH.ReplaceItems())
	protected.Patch("/orders/:id/status", orderH.ChangeStatus())

	protected.Get("/invoices", invoiceH.List())
	protected.Get("/invoices/:id", invoiceH.Get())
	protected.Post("/invoices", invoiceH.Create())
	protected.Patch("/invoices/:id/status", invoiceH.ChangeStatus())
	protected.Post("/invoices/:id/mark-paid", invoiceH.MarkAsPaid())
	protected.Post("/invoices/:id/sync", invoiceH.Sync())

	protected.Get("/receptions", qualityH.ListReceptions())
	protected.Post("/receptions", qualityH.CreateReception())
	protected.Get("/quality-checks", qualityH.ListChecks())
	protected.Post("/quality-checks", auth.RequireRole(models.RoleInspector, models.RoleAdmin), qualityH.CreateCheck())

	protected.Get("/dashboard", dashboardH.Overview())
	protected.Get("/reports", dashboardH.Report())
	protected.Get("/reports/export", dashboardH.Export())
	protected.Post("/reports/archive", adminOnly, dashboardH.Archive())

	protected.Get("/erp-logs", erp.ListLogsHandler(store, log))
	protected.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler(store, log))

	return app
}
